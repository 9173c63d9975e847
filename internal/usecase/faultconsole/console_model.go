package faultconsole

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agvfaults/internal/domain/fault"
	"agvfaults/internal/usecase/faults"
)

const consolePageSize = 10

type Options struct {
	StatusFilter    string
	VehicleFilter   string
	RefreshInterval time.Duration
}

type consoleModel struct {
	ctx             context.Context
	service         *faults.Service
	statusFilter    string
	vehicleFilter   string
	refreshInterval time.Duration

	page          faults.FaultPage
	selectedIndex int
	status        string
}

type faultsLoadedMsg struct {
	page faults.FaultPage
	err  error
}

type tickMsg struct{}

type actionDoneMsg struct {
	action  string
	faultID uint64
	err     error
}

func NewConsoleModel(ctx context.Context, service *faults.Service, options Options) tea.Model {
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &consoleModel{
		ctx:             ctx,
		service:         service,
		statusFilter:    strings.TrimSpace(options.StatusFilter),
		vehicleFilter:   strings.TrimSpace(options.VehicleFilter),
		refreshInterval: interval,
		status:          "初始化中",
	}
}

func (m *consoleModel) Init() tea.Cmd {
	return tea.Batch(m.loadFaultsCmd(), m.tickCmd())
}

func (m *consoleModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadFaultsCmd(), m.tickCmd())
	case faultsLoadedMsg:
		if msg.err != nil {
			m.status = "刷新失败: " + msg.err.Error()
			return m, nil
		}
		m.page = msg.page
		if len(m.page.Items) == 0 {
			m.selectedIndex = 0
			m.status = "没有匹配的故障记录"
			return m, nil
		}
		if m.selectedIndex < 0 {
			m.selectedIndex = 0
		}
		if m.selectedIndex >= len(m.page.Items) {
			m.selectedIndex = len(m.page.Items) - 1
		}
		m.status = fmt.Sprintf("已刷新，共 %d 条", m.page.TotalCount)
		return m, nil
	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s 失败: %v", msg.action, msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("%s 完成: #%d", msg.action, msg.faultID)
		return m, m.loadFaultsCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "手动刷新中"
			return m, m.loadFaultsCmd()
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.page.Items)-1 {
				m.selectedIndex++
			}
			return m, nil
		case "f":
			m.statusFilter = nextStatusFilter(m.statusFilter)
			m.selectedIndex = 0
			return m, m.loadFaultsCmd()
		case "s":
			return m, m.advanceStatusCmd()
		}
	}
	return m, nil
}

func (m *consoleModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("AGV Fault Console"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"status=%s vehicle=%s refresh=%s",
		firstNonEmpty(m.statusFilter, "all"),
		firstNonEmpty(m.vehicleFilter, "-"),
		m.refreshInterval,
	)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Faults"))
	builder.WriteString("\n")
	if len(m.page.Items) == 0 {
		builder.WriteString(dimStyle.Render("- no faults"))
		builder.WriteString("\n\n")
	} else {
		for index, item := range m.page.Items {
			line := fmt.Sprintf("#%d [%s] %s %s %s", item.FaultID, item.StatusLabel, item.VehicleID, item.FaultTime, item.Description)
			if index == m.selectedIndex {
				builder.WriteString(selectedStyle.Render("> " + line))
			} else {
				builder.WriteString("  " + line)
			}
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Detail"))
	builder.WriteString("\n")
	if selected, ok := m.selectedFault(); ok {
		builder.WriteString(fmt.Sprintf("ID: %d\n", selected.FaultID))
		builder.WriteString(fmt.Sprintf("Vehicle: %s\n", selected.VehicleID))
		builder.WriteString(fmt.Sprintf("Category: %s\n", selected.Category))
		builder.WriteString(fmt.Sprintf("Status: %s (%s)\n", selected.Status, selected.StatusLabel))
		builder.WriteString(fmt.Sprintf("Reporter: %s\n", selected.ReporterName))
		builder.WriteString(fmt.Sprintf("Responsible: %s\n", selected.ResponsiblePerson))
		builder.WriteString(fmt.Sprintf("Description: %s\n", selected.Description))
		if selected.Solution != "" {
			builder.WriteString(fmt.Sprintf("Solution: %s\n", selected.Solution))
		}
		if selected.ResolutionLog != "" {
			builder.WriteString("Resolution Log:\n")
			for _, line := range strings.Split(selected.ResolutionLog, "\n") {
				builder.WriteString("  " + line + "\n")
			}
		}
		builder.WriteString("\n")
	} else {
		builder.WriteString(dimStyle.Render("- no detail"))
		builder.WriteString("\n\n")
	}

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n\n")

	builder.WriteString(dimStyle.Render("Keys: ↑/k ↓/j 移动  g 刷新  f 状态筛选  s 推进状态  q 退出"))
	return builder.String()
}

func (m *consoleModel) selectedFault() (faults.FaultItem, bool) {
	if len(m.page.Items) == 0 || m.selectedIndex < 0 || m.selectedIndex >= len(m.page.Items) {
		return faults.FaultItem{}, false
	}
	return m.page.Items[m.selectedIndex], true
}

func (m *consoleModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *consoleModel) loadFaultsCmd() tea.Cmd {
	return func() tea.Msg {
		page, err := m.service.ListFaults(m.ctx, faults.ListFaultsInput{
			Status:    m.statusFilter,
			VehicleID: m.vehicleFilter,
			PerPage:   consolePageSize,
		})
		if err != nil {
			return faultsLoadedMsg{err: err}
		}
		return faultsLoadedMsg{page: page}
	}
}

func (m *consoleModel) advanceStatusCmd() tea.Cmd {
	selected, ok := m.selectedFault()
	if !ok {
		return nil
	}

	next, ok := nextStatus(fault.Status(selected.Status))
	if !ok {
		m.status = fmt.Sprintf("#%d 已是终态", selected.FaultID)
		return nil
	}

	return func() tea.Msg {
		_, err := m.service.UpdateFault(m.ctx, selected.FaultID, faults.UpdateFaultInput{
			Status: string(next),
		})
		return actionDoneMsg{action: "推进状态", faultID: selected.FaultID, err: err}
	}
}

func nextStatus(current fault.Status) (fault.Status, bool) {
	switch current {
	case fault.StatusPending:
		return fault.StatusInProgress, true
	case fault.StatusInProgress:
		return fault.StatusResolved, true
	default:
		return current, false
	}
}

func nextStatusFilter(current string) string {
	order := []string{"", string(fault.StatusPending), string(fault.StatusInProgress), string(fault.StatusResolved)}
	for i, status := range order {
		if status == current {
			return order[(i+1)%len(order)]
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
