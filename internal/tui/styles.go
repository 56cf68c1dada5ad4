package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2).Width(36)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

	statusRunning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	statusPaused  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	statusDone    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))

	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
	tableHeadStyle  = cellStyle.Foreground(lipgloss.Color("86")).Bold(true)
	tableBorder     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tableFirstStyle = cellStyle.Foreground(lipgloss.Color("245"))
)

func stat(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}
