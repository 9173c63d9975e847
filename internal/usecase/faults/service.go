package faults

import (
	"context"

	"agvfaults/internal/domain/fault"
	"agvfaults/internal/ports"
)

type Service struct {
	repo       ports.FaultRepository
	uow        ports.UnitOfWork
	cache      ports.Cache
	classifier *fault.Classifier
}

// NewService wires fault usecases with repository, transaction boundary and
// optional cache. A nil classifier falls back to the built-in keyword rules.
func NewService(repo ports.FaultRepository, uow ports.UnitOfWork, cache ports.Cache, classifier *fault.Classifier) *Service {
	if classifier == nil {
		classifier = fault.NewClassifier()
	}
	return &Service{
		repo:       repo,
		uow:        uow,
		cache:      cache,
		classifier: classifier,
	}
}

// FaultItem is the outward-facing shape of a fault record. Optional columns
// come back as empty strings.
type FaultItem struct {
	FaultID           uint64
	ReporterName      string
	FaultTime         string
	VehicleID         string
	Category          string
	Status            string
	StatusLabel       string
	Description       string
	Solution          string
	ResolutionLog     string
	ResponsiblePerson string
	CreatedAt         string
}

func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, key, value, 0)
}

func mapItem(record ports.FaultRecord) FaultItem {
	return FaultItem{
		FaultID:           record.FaultID,
		ReporterName:      record.ReporterName,
		FaultTime:         record.FaultTime,
		VehicleID:         record.VehicleID,
		Category:          record.Category,
		Status:            record.Status,
		StatusLabel:       fault.Status(record.Status).LocaleLabel(),
		Description:       record.Description,
		Solution:          derefString(record.Solution),
		ResolutionLog:     derefString(record.ResolutionLog),
		ResponsiblePerson: record.ResponsiblePerson,
		CreatedAt:         record.CreatedAt,
	}
}
