package component

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/curvesale/internal/audit"
	"github.com/rovshanmuradov/curvesale/internal/batch"
	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/rovshanmuradov/curvesale/internal/logger"
	"github.com/rovshanmuradov/curvesale/internal/storage/models"
	"github.com/rovshanmuradov/curvesale/internal/ui/style"
	"github.com/tidwall/gjson"
)

// FeedLine is one rendered row of the feed.
type FeedLine struct {
	At     time.Time
	Kind   string
	Text   string
	IsRead bool
	color  lipgloss.Color
}

// EventFeed keeps the newest events, newest last.
type EventFeed struct {
	lines     []FeedLine
	capacity  int
	hideReads bool
}

// NewEventFeed creates a feed keeping up to capacity lines.
func NewEventFeed(capacity int) *EventFeed {
	if capacity <= 0 {
		capacity = 200
	}
	return &EventFeed{capacity: capacity}
}

// Add renders and appends an event.
func (f *EventFeed) Add(e events.Event) {
	f.push(Describe(e))
}

// AddEntry appends a persisted audit entry, which may come from another
// process sharing the store.
func (f *EventFeed) AddEntry(entry models.AuditEntry) {
	f.push(DescribeEntry(entry))
}

func (f *EventFeed) push(line FeedLine) {
	f.lines = append(f.lines, line)
	if len(f.lines) > f.capacity {
		f.lines = f.lines[len(f.lines)-f.capacity:]
	}
}

// ToggleReads hides or shows price and quote reads.
func (f *EventFeed) ToggleReads() bool {
	f.hideReads = !f.hideReads
	return f.hideReads
}

func (f *EventFeed) Clear() {
	f.lines = nil
}

// Visible returns the lines that pass the filter, newest last.
func (f *EventFeed) Visible() []FeedLine {
	out := make([]FeedLine, 0, len(f.lines))
	for _, l := range f.lines {
		if f.hideReads && l.IsRead {
			continue
		}
		out = append(out, l)
	}
	return out
}

// View renders the newest height lines.
func (f *EventFeed) View(height int) string {
	lines := f.Visible()
	if len(lines) == 0 {
		return lipgloss.NewStyle().Foreground(style.DefaultPalette().TextMuted).Render("no events yet")
	}
	if height > 0 && len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	muted := lipgloss.NewStyle().Foreground(style.DefaultPalette().TextMuted)
	rows := make([]string, len(lines))
	for i, l := range lines {
		kind := lipgloss.NewStyle().Foreground(l.color).Width(26).Render(l.Kind)
		rows[i] = muted.Render(l.At.Format("15:04:05")) + " " + kind + " " + l.Text
	}
	return strings.Join(rows, "\n")
}

// Describe turns an event into a feed line.
func Describe(e events.Event) FeedLine {
	p := style.DefaultPalette()
	line := FeedLine{At: e.Timestamp(), Kind: string(e.Type()), color: p.Info}
	short := logger.ShortenAddress

	switch ev := e.(type) {
	case *events.PurchaseEvent:
		line.color = p.Buy
		line.Text = fmt.Sprintf("%s bought %d for %s SOL @ %d", short(ev.Buyer.String()), ev.TokenAmount, batch.LamportsToSol(ev.SolAmount), ev.Price)
	case *events.SaleEvent:
		line.color = p.Sell
		line.Text = fmt.Sprintf("%s sold %d for %s SOL @ %d", short(ev.Seller.String()), ev.TokenAmount, batch.LamportsToSol(ev.SolAmount), ev.Price)
	case *events.PriceEvent:
		line.IsRead, line.color = true, p.TextMuted
		line.Text = fmt.Sprintf("price %d at supply %d", ev.Price, ev.Supply)
	case *events.TokenCalculationEvent:
		line.IsRead, line.color = true, p.TextMuted
		line.Text = fmt.Sprintf("%s SOL -> %d tokens @ %d", batch.LamportsToSol(ev.SolAmount), ev.TokenAmount, ev.Price)
	case *events.MigrationReadyEvent, *events.MigrationCompletedEvent:
		line.color = p.Migrate
		line.Text = rowText(e)
	case *events.AdminTransferInitiatedEvent, *events.AdminTransferCompletedEvent, *events.PauseChangedEvent:
		line.color = p.Admin
		line.Text = rowText(e)
	default:
		line.Text = rowText(e)
	}
	return line
}

// DescribeEntry renders an audit entry from its JSON payload.
func DescribeEntry(entry models.AuditEntry) FeedLine {
	p := style.DefaultPalette()
	kind := events.EventType(entry.EventType)
	line := FeedLine{At: entry.OccurredAt.Local(), Kind: entry.EventType, color: p.Info}
	switch kind {
	case events.PurchaseRecorded:
		line.color = p.Buy
	case events.SaleRecorded:
		line.color = p.Sell
	case events.PriceCalculated, events.TokensCalculated:
		line.IsRead, line.color = true, p.TextMuted
	case events.MigrationReady, events.MigrationCompleted:
		line.color = p.Migrate
	case events.AdminTransferInitiated, events.AdminTransferCompleted, events.PauseChanged:
		line.color = p.Admin
	}

	var parts []string
	gjson.Parse(entry.Payload).ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if k == "type" || k == "time" {
			return true
		}
		v := value.String()
		if value.Type == gjson.String && len(v) >= 32 {
			v = logger.ShortenAddress(v)
		}
		parts = append(parts, k+"="+v)
		return true
	})
	line.Text = strings.Join(parts, " ")
	return line
}

// rowText compacts the journal row of an event.
func rowText(e events.Event) string {
	row := audit.Row(e)
	if row == nil {
		return ""
	}
	// timestamp and event type are shown separately
	var parts []string
	for i, v := range row[2:] {
		if v == "" {
			continue
		}
		if i < 2 {
			v = logger.ShortenAddress(v)
		}
		parts = append(parts, audit.JournalHeader[i+2]+"="+v)
	}
	return strings.Join(parts, " ")
}

// LogView renders the newest log buffer entries.
func LogView(buf *logger.Buffer, height int) string {
	p := style.DefaultPalette()
	if buf == nil {
		return lipgloss.NewStyle().Foreground(p.TextMuted).Render("log capture disabled")
	}
	entries := buf.Recent(height)
	if len(entries) == 0 {
		return lipgloss.NewStyle().Foreground(p.TextMuted).Render("no log entries")
	}
	rows := make([]string, len(entries))
	for i, e := range entries {
		color := p.Info
		switch e.Level {
		case "warn":
			color = p.Warning
		case "error", "dpanic", "panic", "fatal":
			color = p.Error
		case "debug":
			color = p.TextMuted
		}
		level := lipgloss.NewStyle().Foreground(color).Bold(true).Width(5).Render(strings.ToUpper(e.Level))
		rows[i] = fmt.Sprintf("%s %s %s %s", e.Timestamp.Format("15:04:05"), level, e.Logger, e.Message)
	}
	return strings.Join(rows, "\n")
}
