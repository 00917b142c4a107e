package tui

import "github.com/charmbracelet/lipgloss"

var (
	appStyle        = lipgloss.NewStyle().Padding(1, 2)
	titleStyle      = lipgloss.NewStyle().Bold(true)
	helpStyle       = lipgloss.NewStyle().Faint(true)
	errorStyle      = lipgloss.NewStyle().Bold(true)
	overlayBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
	onlineStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	offlineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	pendingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)
