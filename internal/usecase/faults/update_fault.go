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

// UpdateFaultInput is a partial update. Nil pointers and an empty Status
// leave the field unchanged. ResolutionNote appends to the resolution log;
// the log itself is never overwritten.
type UpdateFaultInput struct {
	Status            string
	Solution          *string
	ResolutionNote    string
	ResponsiblePerson *string
	Category          *string
	Description       *string
}

func (input UpdateFaultInput) empty() bool {
	return input.Status == "" &&
		input.Solution == nil &&
		strings.TrimSpace(input.ResolutionNote) == "" &&
		input.ResponsiblePerson == nil &&
		input.Category == nil &&
		input.Description == nil
}

// UpdateFault applies a partial update to the mutable fields of a record.
func (s *Service) UpdateFault(ctx context.Context, faultID uint64, input UpdateFaultInput) (FaultItem, error) {
	if ctx == nil {
		return FaultItem{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return FaultItem{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return FaultItem{}, errors.New("fault repository is required")
	}
	if s.uow == nil {
		return FaultItem{}, errors.New("fault unit of work is required")
	}

	if input.empty() {
		return FaultItem{}, errors.New("no updatable fields provided")
	}

	changes := ports.FaultChanges{}

	if input.Status != "" {
		parsed, err := fault.ParseStatus(input.Status)
		if err != nil {
			return FaultItem{}, err
		}
		status := string(parsed)
		changes.Status = &status
	}
	if input.Solution != nil {
		solution := strings.TrimSpace(*input.Solution)
		changes.Solution = &solution
	}
	if input.ResponsiblePerson != nil {
		responsible := strings.TrimSpace(*input.ResponsiblePerson)
		if responsible == "" {
			return FaultItem{}, fmt.Errorf("%w: responsible_person", fault.ErrMissingField)
		}
		changes.ResponsiblePerson = &responsible
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return FaultItem{}, fmt.Errorf("%w: category", fault.ErrMissingField)
		}
		changes.Category = &category
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return FaultItem{}, fmt.Errorf("%w: description", fault.ErrMissingField)
		}
		changes.Description = &description
	}

	var updated ports.FaultRecord
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetFault(txCtx, faultID)
		if err != nil {
			return err
		}

		if note := strings.TrimSpace(input.ResolutionNote); note != "" {
			log := appendResolutionNote(derefString(existing.ResolutionLog), note)
			changes.ResolutionLog = &log
		}

		if err := s.repo.UpdateFault(txCtx, faultID, changes); err != nil {
			return err
		}

		updated, err = s.repo.GetFault(txCtx, faultID)
		return err
	}); err != nil {
		if errors.Is(err, ports.ErrFaultNotFound) {
			return FaultItem{}, errs.Wrapf(err, "fault %d", faultID)
		}
		return FaultItem{}, err
	}

	s.setCacheBestEffort(ctx, cacheFaultStatusKey(faultID), updated.Status)
	s.invalidateStatsSnapshots(ctx)
	return mapItem(updated), nil
}

// UpdateFaultFields applies a named-field update, the shape HTTP PATCH and
// the update command speak. Immutable or unknown names are rejected before
// anything is written.
func (s *Service) UpdateFaultFields(ctx context.Context, faultID uint64, fields map[string]string) (FaultItem, error) {
	if len(fields) == 0 {
		return FaultItem{}, errors.New("no updatable fields provided")
	}

	var input UpdateFaultInput
	for name, value := range fields {
		if err := fault.CheckUpdatable(name); err != nil {
			return FaultItem{}, err
		}

		value := value
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "status":
			input.Status = value
		case "solution":
			input.Solution = &value
		case "resolution_log":
			input.ResolutionNote = value
		case "responsible_person":
			input.ResponsiblePerson = &value
		case "category":
			input.Category = &value
		case "description":
			input.Description = &value
		}
	}

	return s.UpdateFault(ctx, faultID, input)
}

func appendResolutionNote(existing string, note string) string {
	entry := "[" + time.Now().UTC().Format(time.RFC3339) + "] " + note
	if existing == "" {
		return entry
	}
	return existing + "\n" + entry
}
