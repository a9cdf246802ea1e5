package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/curvesale/internal/ui/style"
)

// HelpBar renders enabled key bindings as "key desc • key desc".
type HelpBar struct {
	bindings []key.Binding
	width    int
}

// NewHelpBar creates a new help bar component
func NewHelpBar() *HelpBar {
	return &HelpBar{width: 80}
}

// SetKeyBindings sets the key bindings to display
func (h *HelpBar) SetKeyBindings(bindings []key.Binding) *HelpBar {
	h.bindings = bindings
	return h
}

// SetWidth sets the help bar width
func (h *HelpBar) SetWidth(width int) *HelpBar {
	h.width = width
	return h
}

// View renders the help bar
func (h *HelpBar) View() string {
	p := style.DefaultPalette()
	keyStyle := lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(p.TextMuted)

	items := make([]string, 0, len(h.bindings))
	for _, b := range h.bindings {
		if !b.Enabled() {
			continue
		}
		help := b.Help()
		items = append(items, keyStyle.Render(help.Key)+" "+descStyle.Render(help.Desc))
	}
	if len(items) == 0 {
		return ""
	}

	sep := descStyle.Render(" • ")
	lines := []string{items[0]}
	for _, item := range items[1:] {
		last := len(lines) - 1
		if h.width > 0 && lipgloss.Width(lines[last]+sep+item) > h.width-2 {
			lines = append(lines, item)
			continue
		}
		lines[last] += sep + item
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}
