package faults

import (
	"fmt"
	"strings"
	"time"

	"agvfaults/internal/domain/fault"
)

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func cacheFaultStatusKey(faultID uint64) string {
	return fmt.Sprintf("fault_status:%d", faultID)
}

func cacheStatsSnapshotKey(groupBy string) string {
	return "stats_snapshot:" + groupBy
}

// parseWindowBound normalizes a fault-time window bound to stored RFC3339
// form. Date-only values expand to the start or end of that day.
func parseWindowBound(raw string, endOfDay bool) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}

	if day, err := time.ParseInLocation("2006-01-02", trimmed, time.UTC); err == nil {
		if endOfDay {
			day = day.Add(24*time.Hour - time.Second)
		}
		return day.UTC().Format(time.RFC3339), nil
	}

	parsed, err := fault.ParseFaultTime(trimmed)
	if err != nil {
		return "", err
	}
	return parsed.UTC().Format(time.RFC3339), nil
}

func parseWindow(fromRaw string, toRaw string) (string, string, error) {
	from, err := parseWindowBound(fromRaw, false)
	if err != nil {
		return "", "", err
	}
	to, err := parseWindowBound(toRaw, true)
	if err != nil {
		return "", "", err
	}
	if from != "" && to != "" && from > to {
		return "", "", fmt.Errorf("invalid time window: %q is after %q", fromRaw, toRaw)
	}
	return from, to, nil
}
