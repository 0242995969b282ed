package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Row is one key/value line of a panel section
type Row struct {
	Key   string
	Value string
}

// Section groups rows under a title
type Section struct {
	Title string
	Rows  []Row
}

// Panel is a bordered block of titled key/value sections, used for device
// status and version reports
type Panel struct {
	Title    string
	Sections []Section
	Width    int
}

// NewPanel creates an empty panel
func NewPanel(title string) *Panel {
	return &Panel{Title: title, Width: GetTerminalWidth()}
}

// SetWidth sets the terminal width for responsive rendering
func (p *Panel) SetWidth(width int) *Panel {
	p.Width = width
	return p
}

// AddSection appends a section and returns it for filling
func (p *Panel) AddSection(title string) *Section {
	p.Sections = append(p.Sections, Section{Title: title})
	return &p.Sections[len(p.Sections)-1]
}

// Add appends a row
func (s *Section) Add(key, value string) *Section {
	s.Rows = append(s.Rows, Row{Key: key, Value: value})
	return s
}

// Flag renders a status bit. A fault bit is highlighted when set.
func Flag(set bool, fault bool) string {
	switch {
	case set && fault:
		return FlagFaultStyle.Render(FailureMarker + " yes")
	case set:
		return FlagOnStyle.Render(SuccessMarker + " yes")
	default:
		return FlagOffStyle.Render(StepMarkerPending + " no")
	}
}

// Render returns the styled panel as a string
func (p *Panel) Render() string {
	width := p.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var blocks []string
	if p.Title != "" {
		blocks = append(blocks, HeaderTitleStyle.Render(strings.ToUpper(p.Title)))
	}

	for _, sec := range p.Sections {
		lines := []string{"", SectionTitleStyle.Render("  " + sec.Title)}
		for _, row := range sec.Rows {
			key := ResultKeyStyle.Width(22).Render("    " + row.Key + ":")
			lines = append(lines, key+" "+ResultValueStyle.Render(row.Value))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	return PanelBoxStyle(width).Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

// String implements fmt.Stringer
func (p *Panel) String() string {
	return p.Render()
}
