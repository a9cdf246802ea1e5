package component

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/logger"
	"github.com/rovshanmuradov/curvesale/internal/ui/style"
)

// StatusHeader is the one-line banner with mint, admin, run state and sale
// phase.
type StatusHeader struct {
	version   string
	mint      string
	admin     string
	pending   string
	paused    bool
	status    ledger.CurveStatus
	ready     bool
	refreshed time.Time
	width     int
}

// NewStatusHeader creates a new status header component
func NewStatusHeader(version string) *StatusHeader {
	return &StatusHeader{version: version, mint: "-", admin: "-"}
}

// SetState copies the header fields out of a snapshot.
func (sh *StatusHeader) SetState(st *ledger.State, ready bool, at time.Time) {
	sh.refreshed = at
	sh.ready = ready
	if st == nil || st.Mint == nil {
		sh.mint, sh.admin, sh.pending = "-", "-", ""
		return
	}
	sh.mint = logger.ShortenAddress(st.Mint.Mint.String())
	sh.admin = logger.ShortenAddress(st.Admin.Admin.String())
	sh.pending = ""
	if p, ok := st.Admin.PendingAdmin(); ok {
		sh.pending = logger.ShortenAddress(p.String())
	}
	sh.paused = st.Admin.IsPaused()
	sh.status = st.Supply.Status
}

// SetWidth sets the component width for responsive layout
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
}

// View renders the status header
func (sh *StatusHeader) View() string {
	p := style.DefaultPalette()
	title := lipgloss.NewStyle().Foreground(p.Primary).Bold(true).Render("curvesale " + sh.version)
	muted := lipgloss.NewStyle().Foreground(p.TextSecondary)

	run := lipgloss.NewStyle().Foreground(p.Success).Bold(true).Render("● running")
	if sh.paused {
		run = lipgloss.NewStyle().Foreground(p.Warning).Bold(true).Render("⏸ paused")
	}

	phase := lipgloss.NewStyle().Foreground(p.Info).Render(sh.status.String())
	switch {
	case sh.status == ledger.StatusMigrated:
		phase = lipgloss.NewStyle().Foreground(p.Migrate).Bold(true).Render("migrated")
	case sh.ready:
		phase = lipgloss.NewStyle().Foreground(p.Migrate).Bold(true).Render("ready to migrate")
	}

	admin := "admin " + sh.admin
	if sh.pending != "" {
		admin += " → " + sh.pending
	}

	parts := []string{
		title,
		muted.Render("mint " + sh.mint),
		lipgloss.NewStyle().Foreground(p.Admin).Render(admin),
		run,
		phase,
	}
	if !sh.refreshed.IsZero() {
		parts = append(parts, muted.Render(fmt.Sprintf("@ %s", sh.refreshed.Format("15:04:05"))))
	}

	content := parts[0]
	for _, part := range parts[1:] {
		content = lipgloss.JoinHorizontal(lipgloss.Left, content, " | ", part)
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(0, 2)
	if sh.width > 4 {
		box = box.Width(sh.width - 2)
	}
	return box.Render(content)
}
