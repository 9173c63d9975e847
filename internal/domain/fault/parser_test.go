package fault

import (
	"errors"
	"testing"
	"time"
)

func TestParseQuickReport(t *testing.T) {
	raw := "发现人员: Li Wei\n" +
		"时间：2025年10月29日15：53\n" +
		"车辆信息：AGV-12\n" +
		"报警描述: 任务执行失败，货架未对准\n" +
		"解决办法：\n" +
		"责任人：￳@Zhang San￰"

	draft, err := ParseQuickReport(raw)
	if err != nil {
		t.Fatalf("ParseQuickReport() error = %v", err)
	}

	if draft.ReporterName != "Li Wei" {
		t.Fatalf("reporter = %q", draft.ReporterName)
	}
	if draft.VehicleID != "AGV-12" {
		t.Fatalf("vehicle = %q", draft.VehicleID)
	}
	if draft.ResponsiblePerson != "Zhang San" {
		t.Fatalf("responsible = %q", draft.ResponsiblePerson)
	}
	if draft.Solution != "" {
		t.Fatalf("solution = %q, want empty", draft.Solution)
	}
	if draft.Category != "" {
		t.Fatalf("category = %q, parser must not classify", draft.Category)
	}

	want := time.Date(2025, 10, 29, 15, 53, 0, 0, time.UTC)
	if !draft.FaultTime.Equal(want) {
		t.Fatalf("fault_time = %v, want %v", draft.FaultTime, want)
	}
}

func TestParseQuickReportMixedColons(t *testing.T) {
	raw := "发现人员:Chen\n时间:2024-03-01T08:00\n车辆信息:AGV-01\n报警描述:避障异常\n责任人:Chen"

	draft, err := ParseQuickReport(raw)
	if err != nil {
		t.Fatalf("ParseQuickReport() error = %v", err)
	}
	if draft.FaultTime != time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) {
		t.Fatalf("fault_time = %v", draft.FaultTime)
	}
}

func TestParseQuickReportMissingField(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"reporter_name", "时间:2024-03-01T08:00\n车辆信息:AGV-01\n报警描述:避障异常\n责任人:Chen"},
		{"fault_time", "发现人员:Chen\n车辆信息:AGV-01\n报警描述:避障异常\n责任人:Chen"},
		{"vehicle_id", "发现人员:Chen\n时间:2024-03-01T08:00\n报警描述:避障异常\n责任人:Chen"},
		{"description", "发现人员:Chen\n时间:2024-03-01T08:00\n车辆信息:AGV-01\n责任人:Chen"},
		{"responsible_person", "发现人员:Chen\n时间:2024-03-01T08:00\n车辆信息:AGV-01\n报警描述:避障异常"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseQuickReport(tc.raw)
			if !errors.Is(err, ErrReportFieldMissing) {
				t.Fatalf("ParseQuickReport() error = %v, want ErrReportFieldMissing", err)
			}
		})
	}
}

func TestParseQuickReportResponsibleScrubKeepsMentionOnly(t *testing.T) {
	raw := "发现人员:Chen\n时间:2024-03-01T08:00\n车辆信息:AGV-01\n报警描述:避障异常\n责任人:￳￰"

	_, err := ParseQuickReport(raw)
	if !errors.Is(err, ErrReportFieldMissing) {
		t.Fatalf("scrubbed-to-empty responsible should be missing, got %v", err)
	}
}

func TestParseQuickReportResponsibleStripsStackedMentions(t *testing.T) {
	raw := "发现人员:Chen\n时间:2024-03-01T08:00\n车辆信息:AGV-01\n报警描述:避障异常\n责任人:@@@张三"

	draft, err := ParseQuickReport(raw)
	if err != nil {
		t.Fatalf("ParseQuickReport() error = %v", err)
	}
	if draft.ResponsiblePerson != "张三" {
		t.Fatalf("responsible = %q, want 张三", draft.ResponsiblePerson)
	}
}

func TestParseFaultTimeLayouts(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2025年10月29日15：53", time.Date(2025, 10, 29, 15, 53, 0, 0, time.UTC)},
		{"2025年3月1日8:05", time.Date(2025, 3, 1, 8, 5, 0, 0, time.UTC)},
		{"2024-03-01T08:00", time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)},
		{"2024-03-01T08:00:00Z", time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, err := ParseFaultTime(tc.raw)
		if err != nil {
			t.Fatalf("ParseFaultTime(%q) error = %v", tc.raw, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("ParseFaultTime(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}

	if _, err := ParseFaultTime("yesterday evening"); !errors.Is(err, ErrReportTimeFormat) {
		t.Fatalf("ParseFaultTime() error = %v, want ErrReportTimeFormat", err)
	}
}
