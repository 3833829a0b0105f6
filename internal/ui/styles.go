package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Header / chrome
	styleAccent = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true) // blue
	styleDim    = lipgloss.NewStyle().Faint(true)
	styleHelp   = lipgloss.NewStyle().Faint(true)
	styleSep    = lipgloss.NewStyle().Faint(true)
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow

	// Table
	styleColHeader = lipgloss.NewStyle().Bold(true)
	styleRule      = lipgloss.NewStyle().Faint(true)

	// Row kinds
	styleSyn   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleFin   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // cyan
	styleReset = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
)
