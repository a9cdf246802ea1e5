// internal/migration/policy.go
package migration

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/oracle"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/shopspring/decimal"
)

// Policy decides whether the raised funds allow migration.
type Policy interface {
	Check(ctx context.Context, supply ledger.SupplyLedger) error
	Name() string
}

// SolWindow requires the raised lamports to sit inside [Min, Max].
type SolWindow struct {
	Min uint64
	Max uint64
}

// DefaultSolWindow is the 60k to 63k SOL window.
func DefaultSolWindow() SolWindow {
	return SolWindow{Min: types.DefaultMinRaise, Max: types.DefaultMaxRaise}
}

func (w SolWindow) Name() string { return "sol" }

func (w SolWindow) Check(_ context.Context, supply ledger.SupplyLedger) error {
	if supply.TotalRaised < w.Min || supply.TotalRaised > w.Max {
		return fmt.Errorf("%w: raised %d lamports, window [%d, %d]",
			types.ErrMigrationThresholdNotReached, supply.TotalRaised, w.Min, w.Max)
	}
	return nil
}

// UsdWindow prices the raised value through an oracle and also requires a
// minimum sold supply.
type UsdWindow struct {
	Oracle          oracle.PriceOracle
	Pair            string
	MinUSD          decimal.Decimal
	MaxUSD          decimal.Decimal
	SupplyThreshold uint64
	MaxStaleness    time.Duration
	Clock           func() time.Time
}

// NewUsdWindow builds the oracle policy with the protocol defaults.
func NewUsdWindow(o oracle.PriceOracle) *UsdWindow {
	return &UsdWindow{
		Oracle:          o,
		Pair:            oracle.PairSolUsd,
		MinUSD:          decimal.NewFromInt(types.DefaultUsdMinRaise),
		MaxUSD:          decimal.NewFromInt(types.DefaultUsdMaxRaise),
		SupplyThreshold: types.DefaultSupplyThreshold,
		MaxStaleness:    time.Duration(types.DefaultMaxStalenessSeconds) * time.Second,
		Clock:           time.Now,
	}
}

func (w *UsdWindow) Name() string { return "usd" }

// RaisedUSD converts lamports to USD at the quoted SOL price.
func RaisedUSD(lamports uint64, price decimal.Decimal) decimal.Decimal {
	sol := decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9)
	return sol.Mul(price)
}

func (w *UsdWindow) Check(ctx context.Context, supply ledger.SupplyLedger) error {
	q, err := w.Oracle.Latest(ctx, w.Pair)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrMigrationConditionsNotMet, err)
	}
	if err := oracle.CheckFresh(q, w.Clock(), w.MaxStaleness); err != nil {
		return err
	}

	usd := RaisedUSD(supply.TotalRaised, q.Price)
	if usd.LessThan(w.MinUSD) || usd.GreaterThan(w.MaxUSD) {
		return fmt.Errorf("%w: raised %s USD, window [%s, %s]",
			types.ErrMigrationConditionsNotMet, usd.StringFixed(2), w.MinUSD, w.MaxUSD)
	}
	if supply.TotalSoldSupply < w.SupplyThreshold {
		return fmt.Errorf("%w: sold supply %d below %d",
			types.ErrMigrationConditionsNotMet, supply.TotalSoldSupply, w.SupplyThreshold)
	}
	return nil
}

// Progress is the fraction of the way to the lower edge of the window, capped
// at 1. The USD window is measured by sold supply so it needs no oracle call.
func Progress(p Policy, supply ledger.SupplyLedger) float64 {
	if supply.IsMigrated() {
		return 1
	}
	var done, target uint64
	switch w := p.(type) {
	case SolWindow:
		done, target = supply.TotalRaised, w.Min
	case *UsdWindow:
		done, target = supply.TotalSoldSupply, w.SupplyThreshold
	default:
		return 0
	}
	if target == 0 || done >= target {
		return 1
	}
	return float64(done) / float64(target)
}
