package faults

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"agvfaults/internal/domain/fault"
	"agvfaults/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "agvfaults/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "agvfaults/internal/infrastructure/persistence/sqlite/uow"
	"agvfaults/internal/ports"
)

type testCache struct {
	data map[string]string
}

func newTestCache() *testCache {
	return &testCache{
		data: make(map[string]string),
	}
}

func (c *testCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *testCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *testCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func setupService(t *testing.T) (*Service, *testCache) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "faults.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.Fault{}, &model.FaultKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	cache := newTestCache()
	repo := sqliterepo.NewFaultRepository(db)
	uow := sqliteuow.NewUnitOfWork(db)
	return NewService(repo, uow, cache, nil), cache
}

func validReport() ReportFaultInput {
	return ReportFaultInput{
		ReporterName:      "Li Wei",
		FaultTime:         "2024-03-01T08:00:00Z",
		VehicleID:         "AGV-07",
		Category:          "sensor",
		Description:       "LIDAR dropout",
		ResponsiblePerson: "Wang Fang",
	}
}

func TestReportFaultThenGetRoundTrips(t *testing.T) {
	svc, cache := setupService(t)
	ctx := context.Background()

	created, err := svc.ReportFault(ctx, validReport())
	if err != nil {
		t.Fatalf("ReportFault() error = %v", err)
	}

	if created.FaultID != 1 {
		t.Fatalf("ReportFault() id = %d, want 1", created.FaultID)
	}
	if created.Status != string(fault.StatusPending) {
		t.Fatalf("ReportFault() status = %q, want pending", created.Status)
	}
	if created.Solution != "" || created.ResolutionLog != "" {
		t.Fatalf("ReportFault() optional fields should start empty, got solution=%q log=%q", created.Solution, created.ResolutionLog)
	}
	if created.CreatedAt == "" {
		t.Fatalf("ReportFault() created_at not assigned")
	}

	got, err := svc.GetFault(ctx, created.FaultID)
	if err != nil {
		t.Fatalf("GetFault() error = %v", err)
	}
	if got != created {
		t.Fatalf("GetFault() = %+v, want %+v", got, created)
	}

	if status, ok := cache.data["fault_status:1"]; !ok || status != "pending" {
		t.Fatalf("cache fault_status:1 = %q, %v", status, ok)
	}
}

func TestReportFaultRequiredFields(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*ReportFaultInput)
	}{
		{"reporter_name", func(in *ReportFaultInput) { in.ReporterName = " " }},
		{"fault_time", func(in *ReportFaultInput) { in.FaultTime = "" }},
		{"vehicle_id", func(in *ReportFaultInput) { in.VehicleID = "" }},
		{"category", func(in *ReportFaultInput) { in.Category = "" }},
		{"description", func(in *ReportFaultInput) { in.Description = "" }},
		{"responsible_person", func(in *ReportFaultInput) { in.ResponsiblePerson = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validReport()
			tc.mutate(&input)

			_, err := svc.ReportFault(ctx, input)
			if !errors.Is(err, fault.ErrMissingField) {
				t.Fatalf("ReportFault() error = %v, want ErrMissingField", err)
			}
			if !strings.Contains(err.Error(), tc.name) {
				t.Fatalf("ReportFault() error %q does not name field %s", err, tc.name)
			}
		})
	}
}

func TestReportFaultEmptyCategoryNotInferred(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	// A keyword-bearing description must not paper over the missing category;
	// classification belongs to the quick-report path only.
	input := validReport()
	input.Category = ""
	input.Description = "车辆充电超时报警"

	_, err := svc.ReportFault(ctx, input)
	if !errors.Is(err, fault.ErrMissingField) {
		t.Fatalf("ReportFault() error = %v, want ErrMissingField", err)
	}
	if !strings.Contains(err.Error(), "category") {
		t.Fatalf("ReportFault() error %q does not name category", err)
	}
}

func TestGetFaultNotFound(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.GetFault(context.Background(), 999)
	if !errors.Is(err, ports.ErrFaultNotFound) {
		t.Fatalf("GetFault() error = %v, want ErrFaultNotFound", err)
	}
}

func TestUpdateFaultStatusAndSolution(t *testing.T) {
	svc, cache := setupService(t)
	ctx := context.Background()

	created, err := svc.ReportFault(ctx, validReport())
	if err != nil {
		t.Fatalf("ReportFault() error = %v", err)
	}

	solution := "Replace sensor cable"
	updated, err := svc.UpdateFault(ctx, created.FaultID, UpdateFaultInput{
		Status:   "in-progress",
		Solution: &solution,
	})
	if err != nil {
		t.Fatalf("UpdateFault() error = %v", err)
	}

	if updated.Status != "in-progress" {
		t.Fatalf("UpdateFault() status = %q", updated.Status)
	}
	if updated.Solution != "Replace sensor cable" {
		t.Fatalf("UpdateFault() solution = %q", updated.Solution)
	}
	if updated.Description != created.Description {
		t.Fatalf("UpdateFault() description changed: %q", updated.Description)
	}
	if updated.FaultID != created.FaultID || updated.CreatedAt != created.CreatedAt {
		t.Fatalf("UpdateFault() touched immutable fields: id=%d created_at=%q", updated.FaultID, updated.CreatedAt)
	}

	if status := cache.data["fault_status:1"]; status != "in-progress" {
		t.Fatalf("cache fault_status:1 = %q", status)
	}
}

func TestUpdateFaultAcceptsLocaleStatusLabel(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.ReportFault(ctx, validReport())
	if err != nil {
		t.Fatalf("ReportFault() error = %v", err)
	}

	updated, err := svc.UpdateFault(ctx, created.FaultID, UpdateFaultInput{Status: "已修复"})
	if err != nil {
		t.Fatalf("UpdateFault() error = %v", err)
	}
	if updated.Status != string(fault.StatusResolved) {
		t.Fatalf("UpdateFault() status = %q, want resolved", updated.Status)
	}
	if updated.StatusLabel != "已修复" {
		t.Fatalf("UpdateFault() status label = %q", updated.StatusLabel)
	}
}

func TestUpdateFaultRejectsUnknownStatus(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.ReportFault(ctx, validReport())
	if err != nil {
		t.Fatalf("ReportFault() error = %v", err)
	}

	_, err = svc.UpdateFault(ctx, created.FaultID, UpdateFaultInput{Status: "archived"})
	if !errors.Is(err, fault.ErrInvalidStatus) {
		t.Fatalf("UpdateFault() error = %v, want ErrInvalidStatus", err)
	}
}

func TestUpdateFaultNotFound(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.UpdateFault(context.Background(), 42, UpdateFaultInput{Status: "resolved"})
	if !errors.Is(err, ports.ErrFaultNotFound) {
		t.Fatalf("UpdateFault() error = %v, want ErrFaultNotFound", err)
	}
}

func TestUpdateFaultFieldsRejectsImmutable(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.ReportFault(ctx, validReport())
	if err != nil {
		t.Fatalf("ReportFault() error = %v", err)
	}

	for _, field := range []string{"id", "created_at", "reporter_name", "fault_time", "vehicle_id"} {
		_, err := svc.UpdateFaultFields(ctx, created.FaultID, map[string]string{field: "tampered"})
		if !errors.Is(err, fault.ErrImmutableField) {
			t.Fatalf("UpdateFaultFields(%s) error = %v, want ErrImmutableField", field, err)
		}
	}

	_, err = svc.UpdateFaultFields(ctx, created.FaultID, map[string]string{"severity": "high"})
	if !errors.Is(err, fault.ErrUnknownField) {
		t.Fatalf("UpdateFaultFields(severity) error = %v, want ErrUnknownField", err)
	}

	got, err := svc.GetFault(ctx, created.FaultID)
	if err != nil {
		t.Fatalf("GetFault() error = %v", err)
	}
	if got != created {
		t.Fatalf("rejected updates must not write: %+v != %+v", got, created)
	}
}

func TestResolutionLogIsAppendOnly(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.ReportFault(ctx, validReport())
	if err != nil {
		t.Fatalf("ReportFault() error = %v", err)
	}

	first, err := svc.UpdateFault(ctx, created.FaultID, UpdateFaultInput{ResolutionNote: "dispatched technician"})
	if err != nil {
		t.Fatalf("UpdateFault() first note error = %v", err)
	}
	second, err := svc.UpdateFault(ctx, created.FaultID, UpdateFaultInput{ResolutionNote: "cable replaced"})
	if err != nil {
		t.Fatalf("UpdateFault() second note error = %v", err)
	}

	if !strings.Contains(first.ResolutionLog, "dispatched technician") {
		t.Fatalf("first log = %q", first.ResolutionLog)
	}
	lines := strings.Split(second.ResolutionLog, "\n")
	if len(lines) != 2 {
		t.Fatalf("resolution log lines = %d, want 2: %q", len(lines), second.ResolutionLog)
	}
	if !strings.Contains(lines[0], "dispatched technician") || !strings.Contains(lines[1], "cable replaced") {
		t.Fatalf("resolution log out of order: %q", second.ResolutionLog)
	}
}

func TestUpdateFaultRequiresAtLeastOneField(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.ReportFault(ctx, validReport())
	if err != nil {
		t.Fatalf("ReportFault() error = %v", err)
	}

	if _, err := svc.UpdateFault(ctx, created.FaultID, UpdateFaultInput{}); err == nil {
		t.Fatalf("UpdateFault() with no fields should fail")
	}
}
