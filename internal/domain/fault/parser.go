package fault

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Quick reports arrive as copy-pasted chat messages with one labeled field
// per line. Both full-width and half-width colons occur in the wild.
var reportLinePattern = regexp.MustCompile(`(?m)^(发现人员|时间|车辆信息|报警描述|解决办法|责任人)[:：]\s*(.*)`)

// Responsible person values picked up from chat clients carry mojibake from
// mention markup. Keep CJK, letters, digits, whitespace and @ only.
var responsibleScrubPattern = regexp.MustCompile(`[^\p{Han}a-zA-Z0-9\s@]+`)

var faultTimeLayouts = []string{
	"2006年1月2日15:04",
	"2006-01-02T15:04",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseQuickReport extracts a Draft from raw quick-report text. Category is
// left empty; classification happens after parsing. The returned fault time
// is interpreted as UTC when the text carries no zone.
func ParseQuickReport(raw string) (Draft, error) {
	fields := make(map[string]string)
	for _, match := range reportLinePattern.FindAllStringSubmatch(raw, -1) {
		fields[match[1]] = strings.TrimSpace(match[2])
	}

	draft := Draft{
		ReporterName: fields["发现人员"],
		VehicleID:    fields["车辆信息"],
		Description:  fields["报警描述"],
		Solution:     fields["解决办法"],
	}

	responsible := responsibleScrubPattern.ReplaceAllString(fields["责任人"], " ")
	draft.ResponsiblePerson = strings.TrimLeft(strings.TrimSpace(responsible), "@")

	for field, value := range map[string]string{
		"reporter_name":      draft.ReporterName,
		"vehicle_id":         draft.VehicleID,
		"description":        draft.Description,
		"responsible_person": draft.ResponsiblePerson,
	} {
		if value == "" {
			return Draft{}, fmt.Errorf("%w: %s", ErrReportFieldMissing, field)
		}
	}

	rawTime := fields["时间"]
	if rawTime == "" {
		return Draft{}, fmt.Errorf("%w: fault_time", ErrReportFieldMissing)
	}
	faultTime, err := ParseFaultTime(rawTime)
	if err != nil {
		return Draft{}, err
	}
	draft.FaultTime = faultTime

	return draft, nil
}

// ParseFaultTime accepts the chat layout (2025年10月29日15：53), the HTML
// datetime-local layout, and RFC3339 variants.
func ParseFaultTime(raw string) (time.Time, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), "：", ":")
	if normalized == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrReportTimeFormat)
	}

	for _, layout := range faultTimeLayouts {
		parsed, err := time.ParseInLocation(layout, normalized, time.UTC)
		if err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrReportTimeFormat, raw)
}
