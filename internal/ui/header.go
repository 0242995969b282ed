package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header is the box printed above a Runner operation: the title in capitals,
// the command line that started it, then its parameters sorted by key.
type Header struct {
	Title   string
	Command string
	Params  map[string]string
	Width   int
}

func NewHeader(title, command string, params map[string]string) *Header {
	return &Header{Title: title, Command: command, Params: params, Width: GetTerminalWidth()}
}

func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

func (h *Header) Render() string {
	width := max(h.Width, MinTerminalWidth)

	parts := []string{
		HeaderTitleStyle.Render(strings.ToUpper(h.Title)),
		HeaderCommandStyle.Render(h.Command),
	}
	if len(h.Params) > 0 {
		// border and padding take six columns
		parts = append(parts, RenderHorizontalDivider(max(width-6, 10), "─"))
		for _, key := range sortedKeys(h.Params) {
			parts = append(parts, HeaderParamKeyStyle.Render(key+":")+" "+HeaderParamValueStyle.Render(h.Params[key]))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (h *Header) String() string {
	return h.Render()
}
