package faults

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
)

func TestExportCSVNewestFirst(t *testing.T) {
	svc, _ := setupService(t)
	seedFaults(t, svc, 3)

	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), ExportInput{}, &buf); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("csv rows = %d, want header + 3", len(rows))
	}
	if rows[0][1] != "发现人员" {
		t.Fatalf("header = %v", rows[0])
	}
	// Newest fault time first: seeded days 01..03.
	if !strings.HasPrefix(rows[1][2], "2024-03-03") || !strings.HasPrefix(rows[3][2], "2024-03-01") {
		t.Fatalf("export order wrong: %v", rows)
	}
	if rows[1][5] != "待修复" {
		t.Fatalf("status column = %q, want locale label", rows[1][5])
	}
}

func TestExportCSVWindowAndBOM(t *testing.T) {
	svc, _ := setupService(t)
	seedFaults(t, svc, 3)

	var buf bytes.Buffer
	err := svc.ExportCSV(context.Background(), ExportInput{From: "2024-03-02", To: "2024-03-02", BOM: true}, &buf)
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	raw := buf.Bytes()
	if !bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatalf("missing byte order mark")
	}

	rows, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("csv rows = %d, want header + 1", len(rows))
	}
}

func TestExportCSVRejectsInvertedWindow(t *testing.T) {
	svc, _ := setupService(t)

	var buf bytes.Buffer
	err := svc.ExportCSV(context.Background(), ExportInput{From: "2024-03-05", To: "2024-03-01"}, &buf)
	if err == nil {
		t.Fatalf("ExportCSV() with inverted window should fail")
	}
}
