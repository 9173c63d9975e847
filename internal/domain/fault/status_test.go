package fault

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"pending", StatusPending},
		{" In-Progress ", StatusInProgress},
		{"resolved", StatusResolved},
		{"待修复", StatusPending},
		{"处理中", StatusInProgress},
		{"已修复", StatusResolved},
	}

	for _, tc := range cases {
		got, err := ParseStatus(tc.raw)
		if err != nil {
			t.Fatalf("ParseStatus(%q) error = %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"", "archived", "done", "state:doing"} {
		if _, err := ParseStatus(raw); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("ParseStatus(%q) error = %v, want ErrInvalidStatus", raw, err)
		}
	}
}

func TestStatusLocaleLabel(t *testing.T) {
	if StatusPending.LocaleLabel() != "待修复" {
		t.Fatalf("pending label = %q", StatusPending.LocaleLabel())
	}
	if Status("archived").LocaleLabel() != "archived" {
		t.Fatalf("unknown status should echo the token")
	}
	if Status("archived").Valid() {
		t.Fatalf("archived must not be a valid status")
	}
}
