package fault

import (
	"fmt"
	"strings"
)

// Status is the triage state of a fault report. The set is closed: the
// backing schema stores plain text, so the application layer is the only
// place the enumeration is enforced.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
)

// localeLabels carries the operator-facing rendering used by the source
// deployment. The canonical tokens are what gets persisted.
var localeLabels = map[Status]string{
	StatusPending:    "待修复",
	StatusInProgress: "处理中",
	StatusResolved:   "已修复",
}

var statusAliases = map[string]Status{
	string(StatusPending):    StatusPending,
	string(StatusInProgress): StatusInProgress,
	string(StatusResolved):   StatusResolved,
	"待修复":                    StatusPending,
	"处理中":                    StatusInProgress,
	"已修复":                    StatusResolved,
}

// ParseStatus accepts a canonical token or its locale label.
func ParseStatus(raw string) (Status, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidStatus)
	}

	status, ok := statusAliases[strings.ToLower(trimmed)]
	if !ok {
		// Locale labels are not lowercased by ToLower; retry verbatim.
		status, ok = statusAliases[trimmed]
	}
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return status, nil
}

func (s Status) Valid() bool {
	_, ok := localeLabels[s]
	return ok
}

// LocaleLabel returns the source-locale rendering, or the token itself for
// an unknown status.
func (s Status) LocaleLabel() string {
	if label, ok := localeLabels[s]; ok {
		return label
	}
	return string(s)
}

// Statuses lists the closed enumeration in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusResolved}
}
