package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for the watch UI
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - good status
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors, stale data
	WarningColor = lipgloss.Color("#FFA500") // Orange - warnings
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

var (
	// TitleStyle is for the watch header line
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			PaddingLeft(2)

	// AddrStyle is for the stream address under the title
	AddrStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(2)

	// FieldKeyStyle is for sample field names
	FieldKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(16).
			PaddingLeft(2)

	// FieldValueStyle is for sample field values
	FieldValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// StatusGoodStyle is for healthy status flags
	StatusGoodStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// StatusBadStyle is for missing or unhealthy status
	StatusBadStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// FooterStyle is for the key hints line
	FooterStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(2)

	// ErrStyle is for connection error text
	ErrStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			PaddingLeft(2)
)

// HeaderBorderStyle returns the border style for the watch header
func HeaderBorderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2)
}

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// IsTerminal reports whether stdout is attached to a TTY.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
