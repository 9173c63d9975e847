package ports

import (
	"context"
	"errors"
)

var ErrFaultNotFound = errors.New("fault record not found")

// FaultRecord is the persisted shape of a fault report. Timestamps are UTC
// text: FaultTime in RFC3339 (fixed width, so SQL range filters compare
// chronologically), CreatedAt in RFC3339Nano.
type FaultRecord struct {
	FaultID           uint64
	ReporterName      string
	FaultTime         string
	VehicleID         string
	Category          string
	Status            string
	Description       string
	Solution          *string
	ResolutionLog     *string
	ResponsiblePerson string
	CreatedAt         string
}

// FaultFilter narrows list queries. Zero values mean "no constraint".
// Reporter and Responsible match as substrings; Status matches exactly.
type FaultFilter struct {
	Reporter      string
	Responsible   string
	VehicleID     string
	Status        string
	FaultTimeFrom string
	FaultTimeTo   string
	Limit         int
	Offset        int
}

// FaultChanges is a partial update. Nil pointers leave the column untouched.
// The mutable set is enforced above this layer; the repository applies
// whatever it is handed.
type FaultChanges struct {
	Status            *string
	Solution          *string
	ResolutionLog     *string
	ResponsiblePerson *string
	Category          *string
	Description       *string
}

type GroupCount struct {
	Key   string
	Count int64
}

// StatsQuery asks for fault counts grouped by a dimension, optionally
// windowed on fault_time.
type StatsQuery struct {
	GroupBy       string
	FaultTimeFrom string
	FaultTimeTo   string
}

type FaultReadRepository interface {
	ListFaults(ctx context.Context, filter FaultFilter) ([]FaultRecord, error)
	CountFaults(ctx context.Context, filter FaultFilter) (int64, error)
	GetFault(ctx context.Context, faultID uint64) (FaultRecord, error)
	GroupFaultCounts(ctx context.Context, query StatsQuery) ([]GroupCount, error)
}

type FaultRepository interface {
	FaultReadRepository
	CreateFault(ctx context.Context, record FaultRecord) (FaultRecord, error)
	UpdateFault(ctx context.Context, faultID uint64, changes FaultChanges) error
}
