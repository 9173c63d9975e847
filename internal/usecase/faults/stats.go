package faults

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"agvfaults/internal/bootstrap/logging"
	"agvfaults/internal/errs"
	"agvfaults/internal/ports"
)

// statsDimensions is the whitelist of grouping columns. "date" groups by the
// calendar day of fault_time.
var statsDimensions = map[string]struct{}{
	"category":           {},
	"status":             {},
	"vehicle_id":         {},
	"reporter_name":      {},
	"responsible_person": {},
	"date":               {},
}

const defaultStatsDimension = "category"

type StatsInput struct {
	GroupBy string
	From    string
	To      string
}

type StatsResult struct {
	GroupBy string
	Rows    []ports.GroupCount
	Total   int64
}

// FaultStats returns counts grouped by the requested dimension. An unknown
// dimension falls back to category rather than failing, matching how the
// reporting surface this replaced treated bad input.
func (s *Service) FaultStats(ctx context.Context, input StatsInput) (StatsResult, error) {
	if ctx == nil {
		return StatsResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return StatsResult{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return StatsResult{}, errors.New("fault repository is required")
	}

	groupBy := strings.ToLower(strings.TrimSpace(input.GroupBy))
	if _, ok := statsDimensions[groupBy]; !ok {
		if groupBy != "" {
			logging.Warn(ctx, "unknown stats dimension, using default",
				slog.String("group_by", input.GroupBy),
				slog.String("default", defaultStatsDimension),
			)
		}
		groupBy = defaultStatsDimension
	}

	from, to, err := parseWindow(input.From, input.To)
	if err != nil {
		return StatsResult{}, err
	}

	// Unwindowed queries are served from the snapshot cache; create and
	// update invalidate the snapshots, so a hit is current.
	windowed := from != "" || to != ""
	if !windowed {
		if rows, ok := s.cachedStatsSnapshot(ctx, groupBy); ok {
			return newStatsResult(groupBy, rows), nil
		}
	}

	rows, err := s.repo.GroupFaultCounts(ctx, ports.StatsQuery{
		GroupBy:       groupBy,
		FaultTimeFrom: from,
		FaultTimeTo:   to,
	})
	if err != nil {
		return StatsResult{}, err
	}

	if !windowed {
		if snapshot, err := json.Marshal(rows); err == nil {
			s.setCacheBestEffort(ctx, cacheStatsSnapshotKey(groupBy), string(snapshot))
		}
	}

	return newStatsResult(groupBy, rows), nil
}

func newStatsResult(groupBy string, rows []ports.GroupCount) StatsResult {
	var total int64
	for _, row := range rows {
		total += row.Count
	}
	return StatsResult{
		GroupBy: groupBy,
		Rows:    rows,
		Total:   total,
	}
}

func (s *Service) cachedStatsSnapshot(ctx context.Context, groupBy string) ([]ports.GroupCount, bool) {
	if s.cache == nil {
		return nil, false
	}
	value, found, err := s.cache.Get(ctx, cacheStatsSnapshotKey(groupBy))
	if err != nil || !found {
		return nil, false
	}
	var rows []ports.GroupCount
	if err := json.Unmarshal([]byte(value), &rows); err != nil {
		return nil, false
	}
	return rows, true
}

// invalidateStatsSnapshots drops every cached grouping after a write.
func (s *Service) invalidateStatsSnapshots(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for dimension := range statsDimensions {
		_ = s.cache.Delete(ctx, cacheStatsSnapshotKey(dimension))
	}
}
