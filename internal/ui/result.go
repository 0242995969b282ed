package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ResultType selects the banner and border color of a Result
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// resultKind is the banner drawn for each ResultType
type resultKind struct {
	marker string
	word   string
	color  lipgloss.Color
	title  lipgloss.Style
}

var resultKinds = map[ResultType]resultKind{
	ResultSuccess: {SuccessMarker, "SUCCESS", SuccessColor, SuccessTitleStyle},
	ResultFailure: {FailureMarker, "FAILED", ErrorColor, ErrorTitleStyle},
	ResultWarning: {WarningMarker, "WARNING", WarningColor, WarningTitleStyle},
}

// Result is the boxed summary printed when a command finishes. Failures
// show the error and troubleshooting tips, the other kinds show Details.
type Result struct {
	Type            ResultType
	Title           string
	Details         map[string]string
	Error           error
	Troubleshooting []string
	Width           int
}

func NewSuccessResult(title string, details map[string]string) *Result {
	return &Result{Type: ResultSuccess, Title: title, Details: details, Width: GetTerminalWidth()}
}

func NewWarningResult(title string, details map[string]string) *Result {
	return &Result{Type: ResultWarning, Title: title, Details: details, Width: GetTerminalWidth()}
}

func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// Render draws the result in a double border colored by its type.
// Unknown types draw as success.
func (r *Result) Render() string {
	width := max(r.Width, MinTerminalWidth)
	kind, ok := resultKinds[r.Type]
	if !ok {
		kind = resultKinds[ResultSuccess]
	}

	lines := []string{"", kind.title.Render(fmt.Sprintf("   %s  %s  ─  %s", kind.marker, kind.word, r.Title)), ""}
	if r.Type == ResultFailure {
		if r.Error != nil {
			lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()), "")
		}
		if len(r.Troubleshooting) > 0 {
			lines = append(lines, r.renderTips(width), "")
		}
	} else {
		for _, key := range sortedKeys(r.Details) {
			lines = append(lines, ResultKeyStyle.Render("   "+key+":")+" "+ResultValueStyle.Render(r.Details[key]))
		}
		lines = append(lines, "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(kind.color).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

// renderTips draws the troubleshooting list in an inset box
func (r *Result) renderTips(width int) string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range r.Troubleshooting {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(max(width-12, 40)).
		Padding(0, 1).
		MarginLeft(3).
		Render(strings.Join(lines, "\n"))
}

func (r *Result) String() string {
	return r.Render()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
