package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/curvesale/internal/curve"
	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/migration"
	"github.com/rovshanmuradov/curvesale/internal/storage/models"
)

type fakeSource struct {
	state   *ledger.State
	ready   bool
	err     error
	reloads int
}

func (f *fakeSource) Reload(context.Context) error {
	f.reloads++
	return f.err
}

func (f *fakeSource) Snapshot() *ledger.State { return f.state }
func (f *fakeSource) MigrationReady(context.Context) bool { return f.ready }

type fakeTrail struct {
	entries []models.AuditEntry
}

func (f *fakeTrail) AuditTrail(_ context.Context, _ events.EventType, limit, _ int) ([]models.AuditEntry, error) {
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func saleState(t *testing.T) *ledger.State {
	t.Helper()
	cfg, err := curve.NewConfig([]uint64{1000, 2000}, 1_000_000_000_000_000_000)
	require.NoError(t, err)

	st := ledger.NewState()
	st.Mint = &ledger.MintConfig{
		Mint:     solana.NewWallet().PublicKey(),
		Treasury: solana.NewWallet().PublicKey(),
		Reserve:  solana.NewWallet().PublicKey(),
	}
	st.Admin.Admin = solana.NewWallet().PublicKey()
	st.Curve = cfg
	st.Supply.TotalSoldSupply = 1_000_000_000_000_000
	st.Supply.TotalRaised = 1_000_000_000
	return st
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func entry(id uint, typ events.EventType, payload string) models.AuditEntry {
	e := models.AuditEntry{EventType: string(typ), OccurredAt: time.Now(), Payload: payload}
	e.ID = id
	return e
}

func TestDashboardRefreshRendersState(t *testing.T) {
	src := &fakeSource{state: saleState(t), ready: false}
	policy := migration.SolWindow{Min: 2_000_000_000, Max: 10_000_000_000}
	d := NewDashboard(src, policy, "test")

	msg := d.refresh()()
	state, ok := msg.(StateMsg)
	require.True(t, ok, "got %T", msg)
	assert.InDelta(t, 0.5, state.Progress, 1e-9)
	assert.False(t, state.Ready)
	assert.Equal(t, 1, src.reloads)

	d.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	d.Update(state)

	view := d.View()
	assert.Contains(t, view, "1002")
	assert.Contains(t, view, "1 SOL")
	assert.Contains(t, view, "50.0% sol window")
	assert.Contains(t, view, "running")
}

func TestDashboardShowsUninitializedSale(t *testing.T) {
	src := &fakeSource{state: ledger.NewState()}
	d := NewDashboard(src, migration.SolWindow{Min: 1, Max: 2}, "test")

	assert.Contains(t, d.View(), "loading...")
	d.Update(d.refresh()())
	assert.Contains(t, d.View(), "mint not initialized")
}

func TestDashboardReportsReloadFailure(t *testing.T) {
	src := &fakeSource{state: saleState(t), err: errors.New("database is locked")}
	d := NewDashboard(src, migration.SolWindow{Min: 1, Max: 2}, "test")

	msg := d.refresh()()
	_, ok := msg.(ErrorMsg)
	require.True(t, ok)
	d.Update(msg)
	assert.Contains(t, d.View(), "refresh failed: database is locked")

	src.err = nil
	d.Update(d.refresh()())
	assert.NotContains(t, d.View(), "refresh failed")
}

func TestDashboardTrailEntriesAreAddedOnce(t *testing.T) {
	src := &fakeSource{state: saleState(t)}
	trail := &fakeTrail{entries: []models.AuditEntry{
		entry(2, events.SaleRecorded, `{"type":"SaleRecorded","token_amount":5,"price":1001}`),
		entry(1, events.PurchaseRecorded, `{"type":"PurchaseRecorded","token_amount":7,"price":1000}`),
	}}
	d := NewDashboard(src, migration.SolWindow{Min: 1, Max: 2}, "test", WithTrail(trail))

	d.Update(d.refresh()())
	lines := d.feed.Visible()
	require.Len(t, lines, 2)
	assert.Equal(t, string(events.PurchaseRecorded), lines[0].Kind)
	assert.Equal(t, string(events.SaleRecorded), lines[1].Kind)
	assert.Contains(t, lines[1].Text, "token_amount=5")

	// повторный refresh не дублирует записи
	d.Update(d.refresh()())
	assert.Len(t, d.feed.Visible(), 2)

	trail.entries = append([]models.AuditEntry{
		entry(3, events.PriceCalculated, `{"type":"PriceCalculated","supply":1,"price":1000}`),
	}, trail.entries...)
	d.Update(d.refresh()())
	assert.Len(t, d.feed.Visible(), 3)

	d.Update(keyMsg("f"))
	assert.Len(t, d.feed.Visible(), 2)
}

func TestDashboardEventFeed(t *testing.T) {
	src := &fakeSource{state: saleState(t)}
	feed := NewEventFeed(4)
	d := NewDashboard(src, migration.SolWindow{Min: 1, Max: 2}, "test", WithEventFeed(feed))

	buyer := solana.NewWallet().PublicKey()
	ev := &events.SaleEvent{
		BaseEvent:   events.NewBase(events.SaleRecorded, time.Now()),
		Seller:      buyer,
		TokenAmount: 100,
		SolAmount:   1_500_000_000,
		Price:       1001,
	}
	require.NoError(t, feed.Handle(context.Background(), ev))

	msg := feed.Listen()()
	_, cmd := d.Update(msg)
	assert.NotNil(t, cmd, "feed keeps listening")

	view := d.View()
	assert.Contains(t, view, "sold 100 for 1.5 SOL @ 1001")

	d.Update(keyMsg("c"))
	assert.Contains(t, d.View(), "no events yet")
}

func TestEventFeedDropsWhenFull(t *testing.T) {
	feed := NewEventFeed(1)
	ev := &events.PriceEvent{BaseEvent: events.NewBase(events.PriceCalculated, time.Now())}
	require.NoError(t, feed.Handle(context.Background(), ev))
	require.NoError(t, feed.Handle(context.Background(), ev))
	assert.Len(t, feed.ch, 1)
}

func TestDashboardKeys(t *testing.T) {
	src := &fakeSource{state: saleState(t)}
	d := NewDashboard(src, migration.SolWindow{Min: 1, Max: 2}, "test")

	d.Update(keyMsg("l"))
	assert.Contains(t, d.View(), "log capture disabled")
	d.Update(keyMsg("l"))
	assert.Contains(t, d.View(), "no events yet")

	d.Update(keyMsg("?"))
	assert.Contains(t, d.View(), "clear feed")

	_, cmd := d.Update(keyMsg("r"))
	require.NotNil(t, cmd)
	_, ok := cmd().(StateMsg)
	assert.True(t, ok)

	_, cmd = d.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestDashboardMigrationReady(t *testing.T) {
	st := saleState(t)
	src := &fakeSource{state: st, ready: true}
	d := NewDashboard(src, migration.SolWindow{Min: 1, Max: 2_000_000_000}, "test")

	d.Update(d.refresh()())
	assert.Contains(t, d.View(), "ready to migrate")
	assert.InDelta(t, 1.0, d.gauge.Percent(), 1e-9)
}
