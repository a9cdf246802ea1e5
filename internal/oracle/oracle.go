// internal/oracle/oracle.go
package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/shopspring/decimal"
)

// PairSolUsd is the pair the migration policy prices raised value in.
const PairSolUsd = "SOL/USD"

// Quote is a price observation with the time the source published it.
type Quote struct {
	Price       decimal.Decimal
	PublishTime time.Time
	Source      string
}

// PriceOracle supplies the latest quote for a pair.
type PriceOracle interface {
	Latest(ctx context.Context, pair string) (Quote, error)
}

// CheckFresh rejects a quote published more than maxStaleness before now.
func CheckFresh(q Quote, now time.Time, maxStaleness time.Duration) error {
	age := now.Sub(q.PublishTime)
	if age > maxStaleness {
		return fmt.Errorf("%w: %s quote is %s old (max %s)", types.ErrStalePrice, q.Source, age.Truncate(time.Second), maxStaleness)
	}
	return nil
}
