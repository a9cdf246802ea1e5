package component

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/curvesale/internal/ui/style"
)

// MigrationGauge shows how far the raise is toward the migration window.
type MigrationGauge struct {
	bar      progress.Model
	percent  float64
	policy   string
	migrated bool
}

// NewMigrationGauge creates a gauge labelled with the policy name.
func NewMigrationGauge(policy string, width int) *MigrationGauge {
	p := style.DefaultPalette()
	bar := progress.New(
		progress.WithGradient(string(p.Primary), string(p.Migrate)),
		progress.WithoutPercentage(),
	)
	g := &MigrationGauge{bar: bar, policy: policy}
	g.SetWidth(width)
	return g
}

// SetProgress sets the fraction in [0, 1].
func (g *MigrationGauge) SetProgress(v float64, migrated bool) {
	g.percent = min(max(v, 0), 1)
	g.migrated = migrated
}

// Percent returns the current fraction.
func (g *MigrationGauge) Percent() float64 {
	return g.percent
}

func (g *MigrationGauge) SetWidth(width int) {
	// room for the label
	g.bar.Width = max(width-24, 10)
}

// View renders the gauge
func (g *MigrationGauge) View() string {
	p := style.DefaultPalette()
	label := fmt.Sprintf("%5.1f%% %s window", g.percent*100, g.policy)
	labelStyle := lipgloss.NewStyle().Foreground(p.TextSecondary)
	switch {
	case g.migrated:
		label = "migrated"
		labelStyle = labelStyle.Foreground(p.Migrate).Bold(true)
	case g.percent >= 1:
		labelStyle = labelStyle.Foreground(p.Migrate).Bold(true)
	}
	return g.bar.ViewAs(g.percent) + " " + labelStyle.Render(label)
}
