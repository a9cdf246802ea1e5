// internal/provisioner/raydium.go
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"go.uber.org/zap"
)

// Submitter lands a set of instructions as one transaction.
type Submitter interface {
	Submit(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error)
}

var (
	// ErrInvalidVenue marks configuration problems that retrying cannot fix.
	ErrInvalidVenue = errors.New("invalid venue configuration")
	// ErrSendUnconfirmed means a signed transaction was handed to the node and
	// the send failed. The transaction may still land, so it is never re-sent.
	ErrSendUnconfirmed = errors.New("signed transaction sent, outcome unknown")
)

// RaydiumConfig names the programs and accounts the pool is created with.
type RaydiumConfig struct {
	AmmProgram    solana.PublicKey
	FeeKeyProgram solana.PublicKey
	Accounts      PoolAccounts
	NFTMint       solana.PublicKey
	PoolFeeBps    uint64
	LockPeriod    uint64
	MaxElapsed    time.Duration
}

// Raydium provisions a permanently locked pool plus a fee-key record.
type Raydium struct {
	cfg    RaydiumConfig
	addrs  *types.Addresses
	submit Submitter
	logger *zap.Logger
}

// NewRaydium builds the provisioner. Missing fee and lock settings take the
// protocol defaults.
func NewRaydium(cfg RaydiumConfig, addrs *types.Addresses, submit Submitter, logger *zap.Logger) *Raydium {
	if cfg.PoolFeeBps == 0 {
		cfg.PoolFeeBps = types.DefaultPoolFeeBps
	}
	if cfg.LockPeriod == 0 {
		cfg.LockPeriod = types.PermanentLock
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = 30 * time.Second
	}
	return &Raydium{cfg: cfg, addrs: addrs, submit: submit, logger: logger.Named("raydium")}
}

// Instructions builds the pool and fee-key instructions for a migration.
func (r *Raydium) Instructions(rec ledger.MigrationRecord) ([]solana.Instruction, ledger.Venue, error) {
	if r.cfg.AmmProgram.IsZero() || r.cfg.FeeKeyProgram.IsZero() {
		return nil, ledger.Venue{}, fmt.Errorf("%w: amm and fee-key programs are required", ErrInvalidVenue)
	}
	if rec.Mint.IsZero() || rec.Admin.IsZero() {
		return nil, ledger.Venue{}, fmt.Errorf("%w: migration record lacks mint or admin", ErrInvalidVenue)
	}

	pool, err := r.addrs.RaydiumPool(rec.Mint)
	if err != nil {
		return nil, ledger.Venue{}, err
	}
	feeKey, err := r.addrs.FeeKey(pool)
	if err != nil {
		return nil, ledger.Venue{}, err
	}
	authority, err := r.addrs.Config()
	if err != nil {
		return nil, ledger.Venue{}, err
	}

	acc := r.cfg.Accounts
	acc.Authority = authority
	acc.Mint = rec.Mint
	if acc.WrappedSol.IsZero() {
		acc.WrappedSol = solana.SolMint
	}

	poolData, err := PoolInstructionData(rec.TotalSoldSupply, rec.TotalRaised, r.cfg.PoolFeeBps, r.cfg.LockPeriod)
	if err != nil {
		return nil, ledger.Venue{}, err
	}
	feeData, err := FeeKeyInstructionData(types.FeeKeyShareBps)
	if err != nil {
		return nil, ledger.Venue{}, err
	}
	poolIx := newCreatePoolInstruction(r.cfg.AmmProgram, acc, poolData)
	feeIx := newCreateFeeKeyInstruction(r.cfg.FeeKeyProgram, r.cfg.NFTMint, rec.Admin, pool, feeData)

	return []solana.Instruction{poolIx, feeIx}, ledger.Venue{Pool: pool, FeeKey: feeKey}, nil
}

// Provision submits the migration instructions. Failures before the signed
// transaction reaches the node are retried; a failed send is not.
func (r *Raydium) Provision(ctx context.Context, rec ledger.MigrationRecord) (ledger.Venue, error) {
	ixs, venue, err := r.Instructions(rec)
	if err != nil {
		return ledger.Venue{}, err
	}

	attempt := 0
	operation := func() (solana.Signature, error) {
		attempt++
		sig, err := r.submit.Submit(ctx, ixs)
		if err == nil {
			return sig, nil
		}
		// повтор со свежим blockhash мог бы создать пул дважды
		if errors.Is(err, ErrInvalidVenue) || errors.Is(err, ErrSendUnconfirmed) || errors.Is(err, context.Canceled) {
			return solana.Signature{}, backoff.Permanent(err)
		}
		r.logger.Warn("Pool submission failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))
		return solana.Signature{}, err
	}

	sig, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(r.cfg.MaxElapsed),
	)
	if err != nil {
		return ledger.Venue{}, fmt.Errorf("failed to create pool: %w", err)
	}

	venue.Signature = sig
	r.logger.Info("Pool created",
		zap.String("pool", venue.Pool.String()),
		zap.String("fee_key", venue.FeeKey.String()),
		zap.String("signature", sig.String()),
		zap.Uint64("token_amount", rec.TotalSoldSupply),
		zap.Uint64("sol_amount", rec.TotalRaised))
	return venue, nil
}
