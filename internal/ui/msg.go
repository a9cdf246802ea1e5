package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/storage/models"
)

// EventMsg carries one committed program event into the dashboard.
type EventMsg struct {
	Event events.Event
}

// StateMsg carries a fresh snapshot of the program state and the audit
// entries recorded since the previous refresh.
type StateMsg struct {
	State    *ledger.State
	Progress float64
	Ready    bool
	Entries  []models.AuditEntry
	At       time.Time
}

// TickMsg drives periodic refreshes.
type TickMsg time.Time

// ErrorMsg reports a failed refresh.
type ErrorMsg struct {
	Err error
}

// EventFeed is a bus handler that hands events to the dashboard. A full feed
// drops events; the next state refresh still shows their effect.
type EventFeed struct {
	ch chan tea.Msg
}

// NewEventFeed creates a feed buffering up to size events.
func NewEventFeed(size int) *EventFeed {
	if size <= 0 {
		size = 256
	}
	return &EventFeed{ch: make(chan tea.Msg, size)}
}

func (f *EventFeed) Handle(_ context.Context, event events.Event) error {
	select {
	case f.ch <- EventMsg{Event: event}:
	default:
	}
	return nil
}

// Listen returns a command that waits for the next event.
func (f *EventFeed) Listen() tea.Cmd {
	return func() tea.Msg {
		return <-f.ch
	}
}

func tick(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
