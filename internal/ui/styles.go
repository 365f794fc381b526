package ui

import "github.com/charmbracelet/lipgloss"

// Lipgloss Styles
var (
	docStyle      = lipgloss.NewStyle().Margin(1, 2)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptStyle   = lipgloss.NewStyle().MarginTop(1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	cellStyle     = lipgloss.NewStyle().Width(4).Align(lipgloss.Center)
	markedStyle   = cellStyle.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#CD0000")).Bold(true)
	freeStyle     = cellStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("228")).Bold(true)
	winStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	lastCallStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CD0000")).Bold(true)
)

var winCellStyle = cellStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("46")).Bold(true)
