package fault

import (
	"fmt"
	"strings"
	"time"
)

// Draft is a fault report as submitted, before the store assigns identity
// and creation time.
type Draft struct {
	ReporterName      string
	FaultTime         time.Time
	VehicleID         string
	Category          string
	Description       string
	Solution          string
	ResponsiblePerson string
}

// Validate enforces the required-field invariants. Solution is the only
// optional submission field.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.ReporterName) == "" {
		return fmt.Errorf("%w: reporter_name", ErrMissingField)
	}
	if d.FaultTime.IsZero() {
		return fmt.Errorf("%w: fault_time", ErrMissingField)
	}
	if strings.TrimSpace(d.VehicleID) == "" {
		return fmt.Errorf("%w: vehicle_id", ErrMissingField)
	}
	if strings.TrimSpace(d.Category) == "" {
		return fmt.Errorf("%w: category", ErrMissingField)
	}
	if strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("%w: description", ErrMissingField)
	}
	if strings.TrimSpace(d.ResponsiblePerson) == "" {
		return fmt.Errorf("%w: responsible_person", ErrMissingField)
	}
	return nil
}

var updatableFields = map[string]struct{}{
	"status":             {},
	"solution":           {},
	"resolution_log":     {},
	"responsible_person": {},
	"category":           {},
	"description":        {},
}

var immutableFields = map[string]struct{}{
	"id":            {},
	"created_at":    {},
	"reporter_name": {},
	"fault_time":    {},
	"vehicle_id":    {},
}

// CheckUpdatable rejects updates to fields outside the mutable set.
// Identity and creation-time fields are immutable once a record exists.
func CheckUpdatable(field string) error {
	name := strings.ToLower(strings.TrimSpace(field))
	if _, ok := updatableFields[name]; ok {
		return nil
	}
	if _, ok := immutableFields[name]; ok {
		return fmt.Errorf("%w: %s", ErrImmutableField, name)
	}
	return fmt.Errorf("%w: %q", ErrUnknownField, field)
}
