package faults

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agvfaults/internal/domain/fault"
	"agvfaults/internal/errs"
	"agvfaults/internal/ports"
)

type ReportFaultInput struct {
	ReporterName      string
	FaultTime         string
	VehicleID         string
	Category          string
	Description       string
	Solution          string
	ResponsiblePerson string
}

// ReportFault validates a submitted report and persists it with status
// pending. Every field of the draft is required here; only the quick-report
// path fills the category in for the caller.
func (s *Service) ReportFault(ctx context.Context, input ReportFaultInput) (FaultItem, error) {
	if ctx == nil {
		return FaultItem{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return FaultItem{}, errs.Wrap(err, "check context")
	}

	if strings.TrimSpace(input.FaultTime) == "" {
		return FaultItem{}, fmt.Errorf("%w: fault_time", fault.ErrMissingField)
	}
	faultTime, err := fault.ParseFaultTime(input.FaultTime)
	if err != nil {
		return FaultItem{}, err
	}

	draft := fault.Draft{
		ReporterName:      strings.TrimSpace(input.ReporterName),
		FaultTime:         faultTime,
		VehicleID:         strings.TrimSpace(input.VehicleID),
		Category:          strings.TrimSpace(input.Category),
		Description:       strings.TrimSpace(input.Description),
		Solution:          strings.TrimSpace(input.Solution),
		ResponsiblePerson: strings.TrimSpace(input.ResponsiblePerson),
	}

	return s.createFromDraft(ctx, draft)
}

func (s *Service) createFromDraft(ctx context.Context, draft fault.Draft) (FaultItem, error) {
	if s.repo == nil {
		return FaultItem{}, errors.New("fault repository is required")
	}
	if s.uow == nil {
		return FaultItem{}, errors.New("fault unit of work is required")
	}

	if err := draft.Validate(); err != nil {
		return FaultItem{}, err
	}

	record := ports.FaultRecord{
		ReporterName:      draft.ReporterName,
		FaultTime:         draft.FaultTime.UTC().Format(time.RFC3339),
		VehicleID:         draft.VehicleID,
		Category:          draft.Category,
		Status:            string(fault.StatusPending),
		Description:       draft.Description,
		Solution:          optionalString(draft.Solution),
		ResponsiblePerson: draft.ResponsiblePerson,
		CreatedAt:         nowUTCString(),
	}

	var created ports.FaultRecord
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.CreateFault(txCtx, record)
		return err
	}); err != nil {
		return FaultItem{}, err
	}

	s.setCacheBestEffort(ctx, cacheFaultStatusKey(created.FaultID), created.Status)
	s.invalidateStatsSnapshots(ctx)
	return mapItem(created), nil
}
