package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	tabStyle      = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("245"))
	activeTab     = tabStyle.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(true)
	avatarStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("63")).Padding(0, 1)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	focusedPane   = paneStyle.BorderForeground(lipgloss.Color("63"))
	placeholderFg = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	buttonStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("238"))
	buttonDone    = buttonStyle.Background(lipgloss.Color("29"))
)
