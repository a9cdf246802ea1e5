// internal/host/host.go
package host

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/types"
)

var (
	// ErrInsufficientFunds is returned when a transfer source lacks lamports.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientTokens is returned when a burn exceeds the holder balance.
	ErrInsufficientTokens = errors.New("insufficient token balance")
)

// ValueTransfer moves native value between accounts.
type ValueTransfer interface {
	Transfer(ctx context.Context, from, to types.Identity, amount uint64) error
	Balance(ctx context.Context, owner types.Identity) (uint64, error)
}

// TokenMint issues and destroys sale tokens.
type TokenMint interface {
	MintTo(ctx context.Context, to types.Identity, amount uint64) error
	Burn(ctx context.Context, from types.Identity, amount uint64) error
	TokenBalance(ctx context.Context, owner types.Identity) (uint64, error)
}

// Tx is one all-or-nothing unit of host work.
type Tx interface {
	ValueTransfer
	TokenMint
	SaveState(ctx context.Context, st *ledger.State) error
}

// Host runs transactions and loads the last committed state.
type Host interface {
	// Atomic commits every effect of fn, or none of them if fn returns an error.
	Atomic(ctx context.Context, fn func(tx Tx) error) error
	LoadState(ctx context.Context) (*ledger.State, error)
}
