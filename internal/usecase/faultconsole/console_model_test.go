package faultconsole

import (
	"testing"

	"agvfaults/internal/domain/fault"
	"agvfaults/internal/usecase/faults"
)

func TestNextStatus(t *testing.T) {
	testCases := []struct {
		name    string
		current fault.Status
		want    fault.Status
		wantOK  bool
	}{
		{name: "pending advances", current: fault.StatusPending, want: fault.StatusInProgress, wantOK: true},
		{name: "in progress advances", current: fault.StatusInProgress, want: fault.StatusResolved, wantOK: true},
		{name: "resolved is terminal", current: fault.StatusResolved, want: fault.StatusResolved, wantOK: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got, ok := nextStatus(testCase.current)
			if got != testCase.want || ok != testCase.wantOK {
				t.Fatalf("nextStatus(%q) = (%q, %v), want (%q, %v)", testCase.current, got, ok, testCase.want, testCase.wantOK)
			}
		})
	}
}

func TestNextStatusFilterCycles(t *testing.T) {
	order := []string{"", "pending", "in-progress", "resolved", ""}
	current := ""
	for i := 1; i < len(order); i++ {
		current = nextStatusFilter(current)
		if current != order[i] {
			t.Fatalf("step %d: filter = %q, want %q", i, current, order[i])
		}
	}

	if got := nextStatusFilter("bogus"); got != "" {
		t.Fatalf("nextStatusFilter(bogus) = %q, want empty", got)
	}
}

func TestFaultsLoadedClampsSelection(t *testing.T) {
	model := &consoleModel{selectedIndex: 5}

	updated, _ := model.Update(faultsLoadedMsg{page: faults.FaultPage{
		Items: []faults.FaultItem{
			{FaultID: 1, Status: "pending"},
			{FaultID: 2, Status: "pending"},
		},
		TotalCount: 2,
	}})

	got := updated.(*consoleModel)
	if got.selectedIndex != 1 {
		t.Fatalf("selectedIndex = %d, want 1", got.selectedIndex)
	}
	selected, ok := got.selectedFault()
	if !ok || selected.FaultID != 2 {
		t.Fatalf("selectedFault() = (%+v, %v), want fault 2", selected, ok)
	}
}

func TestFaultsLoadedEmptyResetsSelection(t *testing.T) {
	model := &consoleModel{selectedIndex: 3}

	updated, _ := model.Update(faultsLoadedMsg{page: faults.FaultPage{}})

	got := updated.(*consoleModel)
	if got.selectedIndex != 0 {
		t.Fatalf("selectedIndex = %d, want 0", got.selectedIndex)
	}
	if _, ok := got.selectedFault(); ok {
		t.Fatal("selectedFault() ok on empty page")
	}
}
