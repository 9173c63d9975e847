package faults

import (
	"context"
	"errors"

	"agvfaults/internal/domain/fault"
	"agvfaults/internal/errs"
)

// IngestQuickReport parses a raw quick-report message and persists the
// resulting draft. The parser supplies no category, so classification always
// runs on the description.
func (s *Service) IngestQuickReport(ctx context.Context, rawText string) (FaultItem, error) {
	if ctx == nil {
		return FaultItem{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return FaultItem{}, errs.Wrap(err, "check context")
	}

	draft, err := fault.ParseQuickReport(rawText)
	if err != nil {
		return FaultItem{}, err
	}
	draft.Category = s.classifier.Infer(draft.Description)

	return s.createFromDraft(ctx, draft)
}
