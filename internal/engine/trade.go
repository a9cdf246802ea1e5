// internal/engine/trade.go
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rovshanmuradov/curvesale/internal/admin"
	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/rovshanmuradov/curvesale/internal/host"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"go.uber.org/zap"
)

// BuyRequest buys tokens for SolAmount lamports. A non-zero MinTokensOut
// rejects fills below it.
type BuyRequest struct {
	Buyer        types.Identity
	SolAmount    uint64
	MinTokensOut uint64
}

// SellRequest sells TokenAmount base units. A non-zero MinSolOut rejects
// payouts below it.
type SellRequest struct {
	Seller      types.Identity
	TokenAmount uint64
	MinSolOut   uint64
}

// PurchaseReceipt describes a committed buy.
type PurchaseReceipt struct {
	BuyQuote
	Buyer          types.Identity
	MigrationReady bool
}

// SaleReceipt describes a committed sell.
type SaleReceipt struct {
	SaleQuote
	Seller types.Identity
}

// BuyTokens exchanges lamports for newly minted tokens at the current price.
func (p *Program) BuyTokens(ctx context.Context, req BuyRequest) (*PurchaseReceipt, error) {
	var receipt *PurchaseReceipt
	err := p.run(ctx, "buy_tokens", func(ctx context.Context, c *call) error {
		if err := c.st.RequireCurve(); err != nil {
			return err
		}
		if err := admin.New(&c.st.Admin).RequireRunning(); err != nil {
			return err
		}
		q, err := p.quoteBuy(c.st, req.Buyer, req.SolAmount, true)
		if err != nil {
			return err
		}
		if req.MinTokensOut > 0 && q.TokenAmount < req.MinTokensOut {
			return fmt.Errorf("%w: %d tokens < minimum %d", types.ErrSlippageExceeded, q.TokenAmount, req.MinTokensOut)
		}

		mint := c.st.Mint
		if err := transfer(ctx, c.tx, req.Buyer, mint.Reserve, q.NetSol); err != nil {
			return err
		}
		if q.HasReferrer {
			if err := transfer(ctx, c.tx, req.Buyer, q.Referrer, q.ReferrerShare); err != nil {
				return err
			}
		}
		if err := transfer(ctx, c.tx, req.Buyer, mint.Treasury, q.ProtocolShare); err != nil {
			return err
		}
		if err := c.tx.MintTo(ctx, req.Buyer, q.TokenAmount); err != nil {
			return fmt.Errorf("failed to mint: %w", err)
		}
		if err := c.st.Supply.RecordPurchase(q.TokenAmount, q.NetSol); err != nil {
			return err
		}

		c.emit(&events.PurchaseEvent{
			BaseEvent:     c.base(events.PurchaseRecorded),
			Buyer:         req.Buyer,
			Referrer:      q.Referrer,
			SolAmount:     q.SolAmount,
			NetSol:        q.NetSol,
			ReferrerShare: q.ReferrerShare,
			ProtocolShare: q.ProtocolShare,
			TokenAmount:   q.TokenAmount,
			Price:         q.Price,
		})
		receipt = &PurchaseReceipt{BuyQuote: q, Buyer: req.Buyer}
		return nil
	})
	if err != nil {
		return nil, err
	}

	receipt.MigrationReady = p.probeMigration(ctx)
	return receipt, nil
}

// SellTokens burns tokens and pays the seller from the reserve at the price of
// the supply before the sale.
func (p *Program) SellTokens(ctx context.Context, req SellRequest) (*SaleReceipt, error) {
	var receipt *SaleReceipt
	err := p.run(ctx, "sell_tokens", func(ctx context.Context, c *call) error {
		if err := c.st.RequireCurve(); err != nil {
			return err
		}
		// после миграции продажа закрыта навсегда, пауза вторична
		if c.st.Supply.IsMigrated() {
			return types.ErrMigrated
		}
		if err := admin.New(&c.st.Admin).RequireRunning(); err != nil {
			return err
		}
		q, err := p.quoteSale(c.st, req.TokenAmount)
		if err != nil {
			return err
		}

		reserve := c.st.Mint.Reserve
		available, err := c.tx.Balance(ctx, reserve)
		if err != nil {
			return fmt.Errorf("failed to read reserve balance: %w", err)
		}
		if q.SolAmount > available {
			return fmt.Errorf("%w: need %d lamports, reserve holds %d",
				types.ErrInsufficientReserve, q.SolAmount, available)
		}
		if req.MinSolOut > 0 && q.SolAmount < req.MinSolOut {
			return fmt.Errorf("%w: %d lamports < minimum %d", types.ErrSlippageExceeded, q.SolAmount, req.MinSolOut)
		}

		if err := c.tx.Burn(ctx, req.Seller, q.TokenAmount); err != nil {
			if errors.Is(err, host.ErrInsufficientTokens) {
				return fmt.Errorf("%w: %v", types.ErrInvalidParameter, err)
			}
			return fmt.Errorf("failed to burn: %w", err)
		}
		if err := transfer(ctx, c.tx, reserve, req.Seller, q.SolAmount); err != nil {
			return err
		}
		if err := c.st.Supply.RecordSale(q.TokenAmount, q.SolAmount); err != nil {
			return err
		}

		c.emit(&events.SaleEvent{
			BaseEvent:   c.base(events.SaleRecorded),
			Seller:      req.Seller,
			TokenAmount: q.TokenAmount,
			SolAmount:   q.SolAmount,
			Price:       q.Price,
		})
		receipt = &SaleReceipt{SaleQuote: q, Seller: req.Seller}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// transfer moves value, skipping zero amounts.
func transfer(ctx context.Context, tx host.Tx, from, to types.Identity, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := tx.Transfer(ctx, from, to, amount); err != nil {
		return fmt.Errorf("failed to transfer %d lamports to %s: %w", amount, to, err)
	}
	return nil
}

// probeMigration emits MigrationReady when the committed ledger entered the
// migration window.
func (p *Program) probeMigration(ctx context.Context) bool {
	st := p.Snapshot()
	if !p.gate.Probe(ctx, st) {
		return false
	}
	p.logger.Info("Migration window reached",
		zap.Uint64("total_raised", st.Supply.TotalRaised),
		zap.Uint64("total_sold_supply", st.Supply.TotalSoldSupply))
	p.sink.Emit(&events.MigrationReadyEvent{
		BaseEvent:       events.NewBase(events.MigrationReady, p.clock()),
		TotalRaised:     st.Supply.TotalRaised,
		TotalSoldSupply: st.Supply.TotalSoldSupply,
	})
	return true
}
