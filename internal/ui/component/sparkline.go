package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/curvesale/internal/ui/style"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline draws the last width samples of a series, e.g. the curve price
// after every trade.
type Sparkline struct {
	data  []uint64
	width int
	color lipgloss.Color
}

// NewSparkline creates a new sparkline component
func NewSparkline(width int) *Sparkline {
	return &Sparkline{width: width, color: style.DefaultPalette().Primary}
}

// Add appends a sample, keeping only the last width samples.
func (s *Sparkline) Add(v uint64) {
	s.data = append(s.data, v)
	if len(s.data) > s.width {
		s.data = s.data[len(s.data)-s.width:]
	}
}

// Last returns the newest sample.
func (s *Sparkline) Last() (uint64, bool) {
	if len(s.data) == 0 {
		return 0, false
	}
	return s.data[len(s.data)-1], true
}

// Len returns the number of samples held.
func (s *Sparkline) Len() int {
	return len(s.data)
}

// View renders the sparkline
func (s *Sparkline) View() string {
	if len(s.data) == 0 {
		return lipgloss.NewStyle().Foreground(style.DefaultPalette().TextMuted).
			Render(strings.Repeat("▁", s.width))
	}

	lo, hi := s.data[0], s.data[0]
	for _, v := range s.data {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var b strings.Builder
	for _, v := range s.data {
		idx := len(sparkChars) / 2
		if hi > lo {
			idx = int((v - lo) * uint64(len(sparkChars)-1) / (hi - lo))
		}
		b.WriteRune(sparkChars[idx])
	}
	for i := len(s.data); i < s.width; i++ {
		b.WriteRune(' ')
	}

	line := lipgloss.NewStyle().Foreground(s.color).Render(b.String())
	return line + " " + s.trend()
}

func (s *Sparkline) trend() string {
	p := style.DefaultPalette()
	if len(s.data) < 2 {
		return lipgloss.NewStyle().Foreground(p.TextMuted).Render("→")
	}
	cur, prev := s.data[len(s.data)-1], s.data[len(s.data)-2]
	switch {
	case cur > prev:
		return lipgloss.NewStyle().Foreground(p.Buy).Render("↗")
	case cur < prev:
		return lipgloss.NewStyle().Foreground(p.Sell).Render("↘")
	default:
		return lipgloss.NewStyle().Foreground(p.TextMuted).Render("→")
	}
}
