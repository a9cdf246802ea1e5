// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/rovshanmuradov/curvesale/internal/host"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/types"
)

// Store is a host backend that also exposes its balances for inspection.
type Store interface {
	host.Host

	// Fund credits lamports to owner outside any program operation.
	Fund(ctx context.Context, owner types.Identity, amount uint64) error
	Balance(ctx context.Context, owner types.Identity) (uint64, error)
	TokenBalance(ctx context.Context, owner types.Identity) (uint64, error)
	// TokenSupply is the sum of all token balances.
	TokenSupply(ctx context.Context) (uint64, error)
	// Records returns the committed program records.
	Records(ctx context.Context) ([]ledger.Record, error)

	Close() error
}
