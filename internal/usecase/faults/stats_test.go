package faults

import (
	"context"
	"testing"
)

func TestFaultStatsByVehicle(t *testing.T) {
	svc, _ := setupService(t)
	seedFaults(t, svc, 6)

	result, err := svc.FaultStats(context.Background(), StatsInput{GroupBy: "vehicle_id"})
	if err != nil {
		t.Fatalf("FaultStats() error = %v", err)
	}

	if result.GroupBy != "vehicle_id" {
		t.Fatalf("group_by = %q", result.GroupBy)
	}
	if result.Total != 6 {
		t.Fatalf("total = %d, want 6", result.Total)
	}
	if len(result.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(result.Rows))
	}
	for _, row := range result.Rows {
		if row.Count != 2 {
			t.Fatalf("count for %q = %d, want 2", row.Key, row.Count)
		}
	}
}

func TestFaultStatsByDateOrdersAscending(t *testing.T) {
	svc, _ := setupService(t)
	seedFaults(t, svc, 4)

	result, err := svc.FaultStats(context.Background(), StatsInput{GroupBy: "date"})
	if err != nil {
		t.Fatalf("FaultStats() error = %v", err)
	}
	if len(result.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(result.Rows))
	}
	for i := 1; i < len(result.Rows); i++ {
		if result.Rows[i-1].Key >= result.Rows[i].Key {
			t.Fatalf("date rows not ascending: %q >= %q", result.Rows[i-1].Key, result.Rows[i].Key)
		}
	}
	if result.Rows[0].Key != "2024-03-01" {
		t.Fatalf("first day = %q", result.Rows[0].Key)
	}
}

func TestFaultStatsUnknownDimensionFallsBack(t *testing.T) {
	svc, cache := setupService(t)
	seedFaults(t, svc, 2)

	result, err := svc.FaultStats(context.Background(), StatsInput{GroupBy: "severity"})
	if err != nil {
		t.Fatalf("FaultStats() error = %v", err)
	}
	if result.GroupBy != defaultStatsDimension {
		t.Fatalf("group_by = %q, want fallback to %q", result.GroupBy, defaultStatsDimension)
	}
	if _, ok := cache.data["stats_snapshot:category"]; !ok {
		t.Fatalf("stats snapshot not cached")
	}
}

func TestFaultStatsServesCachedSnapshot(t *testing.T) {
	svc, cache := setupService(t)
	seedFaults(t, svc, 2)

	first, err := svc.FaultStats(context.Background(), StatsInput{GroupBy: "status"})
	if err != nil {
		t.Fatalf("FaultStats() error = %v", err)
	}
	if first.Total != 2 {
		t.Fatalf("total = %d, want 2", first.Total)
	}

	// A second unwindowed query must come from the snapshot, not the table.
	cache.data["stats_snapshot:status"] = `[{"Key":"pending","Count":9}]`

	second, err := svc.FaultStats(context.Background(), StatsInput{GroupBy: "status"})
	if err != nil {
		t.Fatalf("FaultStats() error = %v", err)
	}
	if second.Total != 9 || len(second.Rows) != 1 || second.Rows[0].Key != "pending" {
		t.Fatalf("cached stats = %+v, want the snapshot rows", second)
	}
}

func TestWritesInvalidateStatsSnapshots(t *testing.T) {
	svc, cache := setupService(t)
	ctx := context.Background()
	seedFaults(t, svc, 2)

	if _, err := svc.FaultStats(ctx, StatsInput{GroupBy: "status"}); err != nil {
		t.Fatalf("FaultStats() error = %v", err)
	}
	if _, ok := cache.data["stats_snapshot:status"]; !ok {
		t.Fatalf("stats snapshot not cached")
	}

	if _, err := svc.ReportFault(ctx, validReport()); err != nil {
		t.Fatalf("ReportFault() error = %v", err)
	}
	if _, ok := cache.data["stats_snapshot:status"]; ok {
		t.Fatalf("stats snapshot survived a create")
	}

	afterCreate, err := svc.FaultStats(ctx, StatsInput{GroupBy: "status"})
	if err != nil {
		t.Fatalf("FaultStats() error = %v", err)
	}
	if afterCreate.Total != 3 {
		t.Fatalf("total after create = %d, want 3", afterCreate.Total)
	}

	if _, err := svc.UpdateFault(ctx, 1, UpdateFaultInput{Status: "resolved"}); err != nil {
		t.Fatalf("UpdateFault() error = %v", err)
	}
	if _, ok := cache.data["stats_snapshot:status"]; ok {
		t.Fatalf("stats snapshot survived an update")
	}

	afterUpdate, err := svc.FaultStats(ctx, StatsInput{GroupBy: "status"})
	if err != nil {
		t.Fatalf("FaultStats() error = %v", err)
	}
	counts := make(map[string]int64, len(afterUpdate.Rows))
	for _, row := range afterUpdate.Rows {
		counts[row.Key] = row.Count
	}
	if counts["resolved"] != 1 || counts["pending"] != 2 {
		t.Fatalf("status counts after update = %v", counts)
	}
}

func TestFaultStatsWindow(t *testing.T) {
	svc, _ := setupService(t)
	seedFaults(t, svc, 6)

	result, err := svc.FaultStats(context.Background(), StatsInput{
		GroupBy: "status",
		From:    "2024-03-03",
		To:      "2024-03-05",
	})
	if err != nil {
		t.Fatalf("FaultStats() error = %v", err)
	}
	if result.Total != 3 {
		t.Fatalf("windowed total = %d, want 3", result.Total)
	}
}
