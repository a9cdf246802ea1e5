package style

import "github.com/charmbracelet/lipgloss"

var (
	Cyan    = lipgloss.Color("#00E5FF")
	Magenta = lipgloss.Color("#FF1B6B")
	Yellow  = lipgloss.Color("#FFB500")
	Green   = lipgloss.Color("#2AFFAA")
	Red     = lipgloss.Color("#FF5555")
	Blue    = lipgloss.Color("#3B82F6")
	Purple  = lipgloss.Color("#8B5CF6")

	Base03 = lipgloss.Color("#1B1D23") // фон
	Base01 = lipgloss.Color("#6C7280") // приглушённый текст
	Base2  = lipgloss.Color("#ECEFF4") // основной текст
	Base1  = lipgloss.Color("#B4BCC8") // вторичный текст
)

// Palette maps roles of the dashboard to colors.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Background    lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color

	// Sale specific
	Buy     lipgloss.Color
	Sell    lipgloss.Color
	Admin   lipgloss.Color
	Migrate lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		Background:    Base03,
		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,

		Buy:     Green,
		Sell:    Red,
		Admin:   Purple,
		Migrate: Magenta,
	}
}

// Panel is the bordered box every dashboard section is drawn in.
func Panel(title string, width int) (lipgloss.Style, string) {
	p := DefaultPalette()
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.TextMuted).
		Padding(0, 1)
	if width > 4 {
		box = box.Width(width - 2)
	}
	head := lipgloss.NewStyle().Foreground(p.Primary).Bold(true).Render(title)
	return box, head
}
