package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"agvfaults/internal/errs"
	"agvfaults/internal/infrastructure/persistence/sqlite/model"
	"agvfaults/internal/ports"
)

type FaultRepository struct {
	db *gorm.DB
}

func NewFaultRepository(db *gorm.DB) *FaultRepository {
	return &FaultRepository{db: db}
}

func (r *FaultRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func applyFilter(query *gorm.DB, filter ports.FaultFilter) *gorm.DB {
	if reporter := strings.TrimSpace(filter.Reporter); reporter != "" {
		query = query.Where("reporter_name LIKE ?", "%"+reporter+"%")
	}
	if responsible := strings.TrimSpace(filter.Responsible); responsible != "" {
		query = query.Where("responsible_person LIKE ?", "%"+responsible+"%")
	}
	if vehicleID := strings.TrimSpace(filter.VehicleID); vehicleID != "" {
		query = query.Where("vehicle_id LIKE ?", "%"+vehicleID+"%")
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.FaultTimeFrom != "" {
		query = query.Where("fault_time >= ?", filter.FaultTimeFrom)
	}
	if filter.FaultTimeTo != "" {
		query = query.Where("fault_time <= ?", filter.FaultTimeTo)
	}
	return query
}

func (r *FaultRepository) ListFaults(ctx context.Context, filter ports.FaultFilter) ([]ports.FaultRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := applyFilter(db.Model(&model.Fault{}), filter).Order("id asc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []model.Fault
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query faults")
	}

	items := make([]ports.FaultRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapFault(row))
	}
	return items, nil
}

func (r *FaultRepository) CountFaults(ctx context.Context, filter ports.FaultFilter) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := applyFilter(db.Model(&model.Fault{}), filter).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count faults")
	}
	return count, nil
}

func (r *FaultRepository) GetFault(ctx context.Context, faultID uint64) (ports.FaultRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.FaultRecord{}, err
	}

	var row model.Fault
	if err := db.Where("id = ?", faultID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.FaultRecord{}, ports.ErrFaultNotFound
		}
		return ports.FaultRecord{}, errs.Wrap(err, "query fault by id")
	}
	return mapFault(row), nil
}

func (r *FaultRepository) CreateFault(ctx context.Context, record ports.FaultRecord) (ports.FaultRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.FaultRecord{}, err
	}

	row := model.Fault{
		ReporterName:      record.ReporterName,
		FaultTime:         record.FaultTime,
		VehicleID:         record.VehicleID,
		Category:          record.Category,
		Status:            record.Status,
		Description:       record.Description,
		Solution:          record.Solution,
		ResolutionLog:     record.ResolutionLog,
		ResponsiblePerson: record.ResponsiblePerson,
		CreatedAt:         record.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.FaultRecord{}, errs.Wrap(err, "insert fault")
	}
	return mapFault(row), nil
}

func (r *FaultRepository) UpdateFault(ctx context.Context, faultID uint64, changes ports.FaultChanges) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	assignments := map[string]any{}
	if changes.Status != nil {
		assignments["status"] = *changes.Status
	}
	if changes.Solution != nil {
		assignments["solution"] = *changes.Solution
	}
	if changes.ResolutionLog != nil {
		assignments["resolution_log"] = *changes.ResolutionLog
	}
	if changes.ResponsiblePerson != nil {
		assignments["responsible_person"] = *changes.ResponsiblePerson
	}
	if changes.Category != nil {
		assignments["category"] = *changes.Category
	}
	if changes.Description != nil {
		assignments["description"] = *changes.Description
	}

	if len(assignments) == 0 {
		_, err := r.GetFault(ctx, faultID)
		return err
	}

	result := db.Model(&model.Fault{}).Where("id = ?", faultID).Updates(assignments)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update fault")
	}
	if result.RowsAffected == 0 {
		return ports.ErrFaultNotFound
	}
	return nil
}

var groupByColumns = map[string]string{
	"category":           "category",
	"status":             "status",
	"vehicle_id":         "vehicle_id",
	"reporter_name":      "reporter_name",
	"responsible_person": "responsible_person",
	"date":               "DATE(fault_time)",
}

func (r *FaultRepository) GroupFaultCounts(ctx context.Context, query ports.StatsQuery) ([]ports.GroupCount, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	column, ok := groupByColumns[query.GroupBy]
	if !ok {
		return nil, fmt.Errorf("unsupported group-by dimension %q", query.GroupBy)
	}

	stmt := db.Model(&model.Fault{}).
		Select(column + " AS group_key, COUNT(*) AS group_count").
		Group(column)
	if query.FaultTimeFrom != "" {
		stmt = stmt.Where("fault_time >= ?", query.FaultTimeFrom)
	}
	if query.FaultTimeTo != "" {
		stmt = stmt.Where("fault_time <= ?", query.FaultTimeTo)
	}
	if query.GroupBy == "date" {
		stmt = stmt.Order("group_key asc")
	} else {
		stmt = stmt.Order("group_count desc, group_key asc")
	}

	var rows []struct {
		GroupKey   string
		GroupCount int64
	}
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "group fault counts")
	}

	items := make([]ports.GroupCount, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.GroupCount{Key: row.GroupKey, Count: row.GroupCount})
	}
	return items, nil
}

func mapFault(row model.Fault) ports.FaultRecord {
	return ports.FaultRecord{
		FaultID:           row.FaultID,
		ReporterName:      row.ReporterName,
		FaultTime:         row.FaultTime,
		VehicleID:         row.VehicleID,
		Category:          row.Category,
		Status:            row.Status,
		Description:       row.Description,
		Solution:          row.Solution,
		ResolutionLog:     row.ResolutionLog,
		ResponsiblePerson: row.ResponsiblePerson,
		CreatedAt:         row.CreatedAt,
	}
}
