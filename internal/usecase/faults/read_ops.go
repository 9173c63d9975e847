package faults

import (
	"context"
	"errors"
	"strings"

	"agvfaults/internal/domain/fault"
	"agvfaults/internal/errs"
	"agvfaults/internal/ports"
)

// allowedPerPage mirrors the page-size whitelist of the reporting UI this
// store replaced.
var allowedPerPage = map[int]struct{}{4: {}, 5: {}, 10: {}, 20: {}, 50: {}}

const defaultPerPage = 20

type ListFaultsInput struct {
	Reporter    string
	Responsible string
	VehicleID   string
	Status      string
	From        string
	To          string
	Page        int
	PerPage     int
}

type FaultPage struct {
	Items      []FaultItem
	Page       int
	PerPage    int
	TotalPages int
	TotalCount int64
}

// GetFault returns a single record by id.
func (s *Service) GetFault(ctx context.Context, faultID uint64) (FaultItem, error) {
	if ctx == nil {
		return FaultItem{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return FaultItem{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return FaultItem{}, errors.New("fault repository is required")
	}

	record, err := s.repo.GetFault(ctx, faultID)
	if err != nil {
		if errors.Is(err, ports.ErrFaultNotFound) {
			return FaultItem{}, errs.Wrapf(err, "fault %d", faultID)
		}
		return FaultItem{}, err
	}
	return mapItem(record), nil
}

// ListFaults returns one page of matching records in insertion order.
// The page is clamped into range, so a stale page number still returns the
// last page rather than an empty one.
func (s *Service) ListFaults(ctx context.Context, input ListFaultsInput) (FaultPage, error) {
	if ctx == nil {
		return FaultPage{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return FaultPage{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return FaultPage{}, errors.New("fault repository is required")
	}

	status := strings.TrimSpace(input.Status)
	if status != "" {
		parsed, err := fault.ParseStatus(status)
		if err != nil {
			return FaultPage{}, err
		}
		status = string(parsed)
	}

	from, to, err := parseWindow(input.From, input.To)
	if err != nil {
		return FaultPage{}, err
	}

	filter := ports.FaultFilter{
		Reporter:      strings.TrimSpace(input.Reporter),
		Responsible:   strings.TrimSpace(input.Responsible),
		VehicleID:     strings.TrimSpace(input.VehicleID),
		Status:        status,
		FaultTimeFrom: from,
		FaultTimeTo:   to,
	}

	totalCount, err := s.repo.CountFaults(ctx, filter)
	if err != nil {
		return FaultPage{}, err
	}

	perPage := input.PerPage
	if _, ok := allowedPerPage[perPage]; !ok {
		perPage = defaultPerPage
	}

	totalPages := int((totalCount + int64(perPage) - 1) / int64(perPage))
	page := input.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	filter.Limit = perPage
	filter.Offset = (page - 1) * perPage

	records, err := s.repo.ListFaults(ctx, filter)
	if err != nil {
		return FaultPage{}, err
	}

	items := make([]FaultItem, 0, len(records))
	for _, record := range records {
		items = append(items, mapItem(record))
	}

	return FaultPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		TotalCount: totalCount,
	}, nil
}
