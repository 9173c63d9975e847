package faults

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"sort"
	"strconv"

	"agvfaults/internal/errs"
	"agvfaults/internal/ports"
)

type ExportInput struct {
	From string
	To   string
	// BOM prepends a UTF-8 byte order mark so spreadsheet tools pick up the
	// CJK columns correctly.
	BOM bool
}

// csvHeader keeps the column titles of the legacy export file so downstream
// spreadsheets keep working.
var csvHeader = []string{"ID", "发现人员", "故障时间", "车辆信息", "错误类别", "解决状态", "报警描述", "解决办法", "处理记录", "责任人"}

// ExportCSV streams all matching records as CSV, newest fault first.
func (s *Service) ExportCSV(ctx context.Context, input ExportInput, w io.Writer) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("fault repository is required")
	}
	if w == nil {
		return errors.New("writer is required")
	}

	from, to, err := parseWindow(input.From, input.To)
	if err != nil {
		return err
	}

	records, err := s.repo.ListFaults(ctx, ports.FaultFilter{
		FaultTimeFrom: from,
		FaultTimeTo:   to,
	})
	if err != nil {
		return err
	}

	// Stored fault times are fixed-width RFC3339 UTC, so string order is
	// chronological.
	sort.Slice(records, func(i, j int) bool {
		return records[i].FaultTime > records[j].FaultTime
	})

	if input.BOM {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return errs.Wrap(err, "write byte order mark")
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return errs.Wrap(err, "write csv header")
	}

	for _, record := range records {
		item := mapItem(record)
		row := []string{
			strconv.FormatUint(item.FaultID, 10),
			item.ReporterName,
			item.FaultTime,
			item.VehicleID,
			item.Category,
			item.StatusLabel,
			item.Description,
			item.Solution,
			item.ResolutionLog,
			item.ResponsiblePerson,
		}
		if err := writer.Write(row); err != nil {
			return errs.Wrap(err, "write csv row")
		}
	}

	writer.Flush()
	return errs.Wrap(writer.Error(), "flush csv")
}
