package main

import "github.com/charmbracelet/lipgloss"

// Styles for command output. lipgloss drops the colours when stdout is not
// a terminal.
type outputStyles struct {
	OK      lipgloss.Style
	Header  lipgloss.Style
	Hunk    lipgloss.Style
	Added   lipgloss.Style
	Removed lipgloss.Style
}

var styles = outputStyles{
	OK:      lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true),
	Header:  lipgloss.NewStyle().Bold(true),
	Hunk:    lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3")),
	Added:   lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")),
	Removed: lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
}
