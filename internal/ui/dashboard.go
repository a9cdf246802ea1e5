// Package ui is the terminal dashboard of a running sale.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/curvesale/internal/batch"
	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/logger"
	"github.com/rovshanmuradov/curvesale/internal/migration"
	"github.com/rovshanmuradov/curvesale/internal/storage/models"
	"github.com/rovshanmuradov/curvesale/internal/ui/component"
	"github.com/rovshanmuradov/curvesale/internal/ui/style"
)

const (
	defaultRefresh = 2 * time.Second
	trailPage      = 50
	feedHeight     = 12
)

// Source is the program view the dashboard polls.
type Source interface {
	Reload(ctx context.Context) error
	Snapshot() *ledger.State
	MigrationReady(ctx context.Context) bool
}

// Trail reads persisted audit entries, newest first.
type Trail interface {
	AuditTrail(ctx context.Context, eventType events.EventType, limit, offset int) ([]models.AuditEntry, error)
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithTrail feeds the event panel from the audit table, which also shows
// operations made by other processes.
func WithTrail(t Trail) Option {
	return func(d *Dashboard) { d.trail = t }
}

// WithEventFeed feeds the event panel from the in-process bus.
func WithEventFeed(f *EventFeed) Option {
	return func(d *Dashboard) { d.events = f }
}

// WithLogBuffer enables the log panel.
func WithLogBuffer(b *logger.Buffer) Option {
	return func(d *Dashboard) { d.logs = b }
}

// WithRefresh sets the polling interval.
func WithRefresh(every time.Duration) Option {
	return func(d *Dashboard) { d.every = every }
}

// Dashboard is the bubbletea model.
type Dashboard struct {
	source Source
	policy migration.Policy
	trail  Trail
	events *EventFeed
	logs   *logger.Buffer
	every  time.Duration

	keys   KeyMap
	header *component.StatusHeader
	gauge  *component.MigrationGauge
	spark  *component.Sparkline
	feed   *component.EventFeed
	help   *component.HelpBar

	state      *ledger.State
	lastSupply uint64
	lastEntry  uint
	showLogs   bool
	showHelp   bool
	err        error
	width      int
	height     int
}

// NewDashboard builds the model.
func NewDashboard(source Source, policy migration.Policy, version string, opts ...Option) *Dashboard {
	name := "-"
	if policy != nil {
		name = policy.Name()
	}
	d := &Dashboard{
		source: source,
		policy: policy,
		every:  defaultRefresh,
		keys:   DefaultKeyMap(),
		header: component.NewStatusHeader(version),
		gauge:  component.NewMigrationGauge(name, 80),
		spark:  component.NewSparkline(40),
		feed:   component.NewEventFeed(200),
		help:   component.NewHelpBar(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.help.SetKeyBindings(d.keys.ShortHelp())
	return d
}

func (d *Dashboard) Init() tea.Cmd {
	cmds := []tea.Cmd{d.refresh(), tick(d.every)}
	if d.events != nil {
		cmds = append(cmds, d.events.Listen())
	}
	return tea.Batch(cmds...)
}

func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width, d.height = msg.Width, msg.Height
		d.header.SetWidth(msg.Width)
		d.gauge.SetWidth(msg.Width)
		d.help.SetWidth(msg.Width)
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, d.keys.Quit):
			return d, tea.Quit
		case key.Matches(msg, d.keys.Refresh):
			return d, d.refresh()
		case key.Matches(msg, d.keys.ToggleLogs):
			d.showLogs = !d.showLogs
		case key.Matches(msg, d.keys.Filter):
			d.feed.ToggleReads()
		case key.Matches(msg, d.keys.Clear):
			d.feed.Clear()
		case key.Matches(msg, d.keys.Help):
			d.showHelp = !d.showHelp
			if d.showHelp {
				d.help.SetKeyBindings(d.keys.FullHelp())
			} else {
				d.help.SetKeyBindings(d.keys.ShortHelp())
			}
		}
		return d, nil

	case TickMsg:
		return d, tea.Batch(d.refresh(), tick(d.every))

	case StateMsg:
		d.applyState(msg)
		return d, nil

	case EventMsg:
		d.feed.Add(msg.Event)
		if d.events == nil {
			return d, nil
		}
		return d, d.events.Listen()

	case ErrorMsg:
		d.err = msg.Err
		return d, nil
	}
	return d, nil
}

func (d *Dashboard) applyState(msg StateMsg) {
	d.err = nil
	d.state = msg.State
	d.header.SetState(msg.State, msg.Ready, msg.At)
	d.gauge.SetProgress(msg.Progress, msg.State.Supply.IsMigrated())

	if st := msg.State; st.Curve != nil {
		supply := st.Supply.TotalSoldSupply
		if d.spark.Len() == 0 || supply != d.lastSupply {
			d.spark.Add(st.Curve.Price(supply))
			d.lastSupply = supply
		}
	}

	// Entries arrive newest first.
	for i := len(msg.Entries) - 1; i >= 0; i-- {
		e := msg.Entries[i]
		if e.ID <= d.lastEntry {
			continue
		}
		d.feed.AddEntry(e)
		d.lastEntry = e.ID
	}
}

// refresh reloads the committed state and collects new audit entries.
func (d *Dashboard) refresh() tea.Cmd {
	source, policy, trail, after := d.source, d.policy, d.trail, d.lastEntry
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := source.Reload(ctx); err != nil {
			return ErrorMsg{Err: err}
		}
		st := source.Snapshot()
		msg := StateMsg{State: st, At: time.Now()}
		if policy != nil {
			msg.Progress = migration.Progress(policy, st.Supply)
		}
		if st.Curve != nil && !st.Supply.IsMigrated() {
			msg.Ready = source.MigrationReady(ctx)
		}
		if trail != nil {
			entries, err := trail.AuditTrail(ctx, "", trailPage, 0)
			if err != nil {
				return ErrorMsg{Err: err}
			}
			for _, e := range entries {
				if e.ID > after {
					msg.Entries = append(msg.Entries, e)
				}
			}
		}
		return msg
	}
}

func (d *Dashboard) View() string {
	p := style.DefaultPalette()
	sections := []string{d.header.View()}

	if d.err != nil {
		sections = append(sections, lipgloss.NewStyle().Foreground(p.Error).Bold(true).
			Render("refresh failed: "+d.err.Error()))
	}

	sections = append(sections, d.statsView(), d.gaugeView())

	if d.showLogs {
		box, title := style.Panel("Logs", d.width)
		sections = append(sections, box.Render(title+"\n"+component.LogView(d.logs, feedHeight)))
	} else {
		box, title := style.Panel("Events", d.width)
		sections = append(sections, box.Render(title+"\n"+d.feed.View(feedHeight)))
	}

	sections = append(sections, d.help.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (d *Dashboard) statsView() string {
	box, title := style.Panel("Sale", d.width)
	st := d.state
	if st == nil {
		return box.Render(title + "\nloading...")
	}
	if st.Mint == nil {
		return box.Render(title + "\nmint not initialized")
	}
	if st.Curve == nil {
		return box.Render(title + "\nbonding curve not initialized")
	}

	label := lipgloss.NewStyle().Foreground(style.DefaultPalette().TextMuted).Width(12)
	row := func(k, v string) string { return label.Render(k) + v }
	price := st.Curve.Price(st.Supply.TotalSoldSupply)
	rows := []string{
		title,
		row("price", fmt.Sprintf("%d  %s", price, d.spark.View())),
		row("sold", fmt.Sprintf("%d", st.Supply.TotalSoldSupply)),
		row("airdropped", fmt.Sprintf("%d", st.Airdrop.TotalAirdropped)),
		row("remaining", fmt.Sprintf("%d of %d", st.Remaining(), st.Curve.TotalSupply())),
		row("raised", batch.LamportsToSol(st.Supply.TotalRaised)+" SOL"),
		row("referrals", fmt.Sprintf("%d", len(st.Referrals))),
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (d *Dashboard) gaugeView() string {
	box, title := style.Panel("Migration", d.width)
	body := d.gauge.View()
	if st := d.state; st != nil && st.Migration != nil {
		body += "\npool " + st.Migration.Pool.String()
	}
	return box.Render(title + "\n" + body)
}
