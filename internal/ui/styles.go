package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	PrimaryColor = lipgloss.Color("#7D56F4") // borders, dividers, section titles
	SuccessColor = lipgloss.Color("#43BF6D")
	ErrorColor   = lipgloss.Color("#FF5555")
	WarningColor = lipgloss.Color("#FFA500")
	MutedColor   = lipgloss.Color("#626262")
	TextColor    = lipgloss.Color("#FFFFFF")
)

// Output is never drawn narrower than MinTerminalWidth or wider than
// MaxContentWidth, whatever the terminal reports.
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

// Header box
var (
	HeaderTitleStyle      = lipgloss.NewStyle().Foreground(TextColor).Bold(true).PaddingLeft(2)
	HeaderCommandStyle    = lipgloss.NewStyle().Foreground(MutedColor).PaddingLeft(2)
	HeaderParamKeyStyle   = lipgloss.NewStyle().Foreground(MutedColor).PaddingLeft(2)
	HeaderParamValueStyle = lipgloss.NewStyle().Foreground(TextColor)
)

// Step list
var (
	StepCompleteStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	StepRunningStyle  = lipgloss.NewStyle().Foreground(WarningColor)
	StepPendingStyle  = lipgloss.NewStyle().Foreground(MutedColor)
	StepNoteStyle     = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)
)

// Result boxes
var (
	SuccessTitleStyle         = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	WarningTitleStyle         = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	ErrorTitleStyle           = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
	ErrorMessageStyle         = lipgloss.NewStyle().Foreground(ErrorColor)
	TroubleshootingTitleStyle = lipgloss.NewStyle().Foreground(MutedColor).Bold(true)
	TroubleshootingItemStyle  = lipgloss.NewStyle().Foreground(MutedColor)

	// ResultKeyStyle pads keys so values line up in one column
	ResultKeyStyle   = lipgloss.NewStyle().Foreground(MutedColor).Width(15)
	ResultValueStyle = lipgloss.NewStyle().Foreground(TextColor)
)

// Status panels. A flag is a status register bit; fault bits are errors
// when set.
var (
	SectionTitleStyle = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	FlagOnStyle       = lipgloss.NewStyle().Foreground(SuccessColor)
	FlagFaultStyle    = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
	FlagOffStyle      = lipgloss.NewStyle().Foreground(MutedColor)
)

const (
	StepMarkerComplete = "✓"
	StepMarkerRunning  = "●"
	StepMarkerPending  = "·"
	StepMarkerSkipped  = "⊘"
	SuccessMarker      = "✓"
	WarningMarker      = "⚠"
	FailureMarker      = "✗"
)

func clampWidth(width int) int {
	return min(max(width, MinTerminalWidth), MaxContentWidth)
}

// GetTerminalWidth returns the stdout width clamped to the content range.
// MinTerminalWidth is used when stdout is not a terminal.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth
	}
	return clampWidth(width)
}

// GetTerminalSize is GetTerminalWidth plus the height, 24 rows when unknown
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, 24
	}
	return clampWidth(width), height
}

// PanelBoxStyle is the rounded border drawn around status panels
func PanelBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(width-4).
		Padding(0, 1)
}

func RenderHorizontalDivider(width int, char string) string {
	return lipgloss.NewStyle().Foreground(PrimaryColor).Render(strings.Repeat(char, width))
}

func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
