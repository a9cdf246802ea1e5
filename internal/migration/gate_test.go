package migration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/curvesale/internal/curve"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/oracle"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvisioner struct {
	err   error
	calls []ledger.MigrationRecord
}

func (s *stubProvisioner) Provision(_ context.Context, rec ledger.MigrationRecord) (ledger.Venue, error) {
	s.calls = append(s.calls, rec)
	if s.err != nil {
		return ledger.Venue{}, s.err
	}
	return ledger.Venue{Pool: solana.NewWallet().PublicKey(), FeeKey: solana.NewWallet().PublicKey()}, nil
}

func newState(t *testing.T, raised uint64) *ledger.State {
	t.Helper()
	cfg, err := curve.NewConfig([]uint64{100, 200}, types.DefaultTotalSupply)
	require.NoError(t, err)
	st := ledger.NewState()
	st.Mint = &ledger.MintConfig{Mint: solana.NewWallet().PublicKey()}
	st.Curve = cfg
	st.Supply.TotalRaised = raised
	st.Supply.TotalSoldSupply = 5_000_000_000
	return st
}

func TestSolWindowBoundaries(t *testing.T) {
	w := DefaultSolWindow()
	ctx := context.Background()

	tests := []struct {
		raised uint64
		ok     bool
	}{
		{types.DefaultMinRaise - 1, false},
		{types.DefaultMinRaise, true},
		{61_500 * types.LamportsPerSol, true},
		{types.DefaultMaxRaise, true},
		{types.DefaultMaxRaise + 1, false},
	}
	for _, tt := range tests {
		err := w.Check(ctx, ledger.SupplyLedger{TotalRaised: tt.raised})
		if tt.ok {
			assert.NoError(t, err, "raised %d", tt.raised)
		} else {
			assert.ErrorIs(t, err, types.ErrMigrationThresholdNotReached, "raised %d", tt.raised)
		}
	}
}

func TestMigrateOnceThenAlreadyMigrated(t *testing.T) {
	prov := &stubProvisioner{}
	g := NewGate(nil, prov)
	st := newState(t, 61_000*types.LamportsPerSol)
	admin := solana.NewWallet().PublicKey()
	now := time.Unix(1_700_000_000, 0)

	assert.True(t, g.Probe(context.Background(), st))
	rec, err := g.Migrate(context.Background(), st, admin, now)
	require.NoError(t, err)

	assert.Equal(t, st.Supply.TotalRaised, rec.TotalRaised)
	assert.Equal(t, st.Supply.TotalSoldSupply, rec.TotalSoldSupply)
	assert.Equal(t, now.Unix(), rec.Timestamp)
	assert.Equal(t, admin, rec.Admin)
	assert.False(t, rec.Pool.IsZero())
	assert.True(t, st.Supply.IsMigrated())
	require.Len(t, prov.calls, 1)

	_, err = g.Migrate(context.Background(), st, admin, now)
	assert.ErrorIs(t, err, types.ErrAlreadyMigrated)
	assert.False(t, g.Probe(context.Background(), st))
	assert.Len(t, prov.calls, 1)
}

func TestMigrateAlreadyMigratedWinsOverThreshold(t *testing.T) {
	g := NewGate(nil, &stubProvisioner{})
	st := newState(t, 0)
	st.Supply.Status = ledger.StatusMigrated

	err := g.CheckConditions(context.Background(), st)
	assert.ErrorIs(t, err, types.ErrAlreadyMigrated)
}

func TestMigrateBelowThreshold(t *testing.T) {
	prov := &stubProvisioner{}
	g := NewGate(nil, prov)
	st := newState(t, 59_999*types.LamportsPerSol)

	_, err := g.Migrate(context.Background(), st, solana.NewWallet().PublicKey(), time.Now())
	assert.ErrorIs(t, err, types.ErrMigrationThresholdNotReached)
	assert.False(t, st.Supply.IsMigrated())
	assert.Empty(t, prov.calls)
}

func TestMigrateProvisionerFailure(t *testing.T) {
	prov := &stubProvisioner{err: errors.New("rpc down")}
	g := NewGate(nil, prov)
	st := newState(t, 61_000*types.LamportsPerSol)

	_, err := g.Migrate(context.Background(), st, solana.NewWallet().PublicKey(), time.Now())
	assert.ErrorIs(t, err, types.ErrPoolProvisioningFailed)
	assert.Nil(t, st.Migration)
}

func TestUsdWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	o := oracle.NewManual()
	w := NewUsdWindow(o)
	w.Clock = func() time.Time { return now }
	ctx := context.Background()

	supply := ledger.SupplyLedger{TotalRaised: 1_000 * types.LamportsPerSol, TotalSoldSupply: 2_000_000_000}

	// No quote at all.
	assert.ErrorIs(t, w.Check(ctx, supply), types.ErrMigrationConditionsNotMet)

	// 1000 SOL at 150 USD = 150k USD.
	o.Set(oracle.PairSolUsd, decimal.NewFromInt(150), now.Add(-301*time.Second))
	assert.ErrorIs(t, w.Check(ctx, supply), types.ErrStalePrice)

	o.Set(oracle.PairSolUsd, decimal.NewFromInt(150), now.Add(-10*time.Second))
	assert.NoError(t, w.Check(ctx, supply))

	o.Set(oracle.PairSolUsd, decimal.NewFromInt(50), now)
	assert.ErrorIs(t, w.Check(ctx, supply), types.ErrMigrationConditionsNotMet)

	o.Set(oracle.PairSolUsd, decimal.NewFromInt(1_001), now)
	assert.ErrorIs(t, w.Check(ctx, supply), types.ErrMigrationConditionsNotMet)

	o.Set(oracle.PairSolUsd, decimal.NewFromInt(150), now)
	supply.TotalSoldSupply = types.DefaultSupplyThreshold - 1
	assert.ErrorIs(t, w.Check(ctx, supply), types.ErrMigrationConditionsNotMet)
}

func TestRaisedUSD(t *testing.T) {
	usd := RaisedUSD(1_500_000_000, decimal.RequireFromString("20.5"))
	assert.Equal(t, "30.75", usd.String())
}

func TestProgress(t *testing.T) {
	sol := SolWindow{Min: 1_000, Max: 2_000}
	assert.Equal(t, 0.0, Progress(sol, ledger.SupplyLedger{}))
	assert.InDelta(t, 0.25, Progress(sol, ledger.SupplyLedger{TotalRaised: 250}), 1e-9)
	assert.Equal(t, 1.0, Progress(sol, ledger.SupplyLedger{TotalRaised: 5_000}))
	assert.Equal(t, 1.0, Progress(sol, ledger.SupplyLedger{Status: ledger.StatusMigrated}))

	usd := NewUsdWindow(oracle.NewManual())
	usd.SupplyThreshold = 400
	assert.InDelta(t, 0.5, Progress(usd, ledger.SupplyLedger{TotalSoldSupply: 200}), 1e-9)
	assert.Equal(t, 0.0, Progress(nil, ledger.SupplyLedger{TotalRaised: 1}))
}
