// internal/engine/quote.go
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rovshanmuradov/curvesale/internal/curve"
	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/types"
)

// BuyQuote is the full breakdown of a purchase at the current supply.
type BuyQuote struct {
	SolAmount     uint64
	Fee           uint64
	ReferrerShare uint64
	ProtocolShare uint64
	NetSol        uint64
	Price         uint64
	TokenAmount   uint64
	Referrer      types.Identity
	HasReferrer   bool
}

// SaleQuote is the breakdown of a sale at the current supply.
type SaleQuote struct {
	TokenAmount uint64
	Price       uint64
	SolAmount   uint64
}

// quoteBuy applies every purchase check that does not need the host.
func (p *Program) quoteBuy(st *ledger.State, buyer types.Identity, sol uint64, withReferral bool) (BuyQuote, error) {
	if err := st.RequireCurve(); err != nil {
		return BuyQuote{}, err
	}
	if st.Supply.IsMigrated() {
		return BuyQuote{}, types.ErrMigrated
	}
	if sol < p.params.MinPurchase {
		return BuyQuote{}, fmt.Errorf("%w: %d < %d lamports", types.ErrAmountTooSmall, sol, p.params.MinPurchase)
	}

	q := BuyQuote{SolAmount: sol}
	if withReferral {
		if rec, ok := st.Referrals[buyer]; ok {
			fee, err := curve.ReferralFee(sol, rec.FeeBps)
			if err != nil {
				return BuyQuote{}, err
			}
			q.Fee = fee
			q.Referrer = rec.Referrer
			q.HasReferrer = true
			q.ReferrerShare, q.ProtocolShare = curve.Split(fee)
		}
	}
	q.NetSol = sol - q.Fee

	q.Price = st.Curve.Price(st.Supply.TotalSoldSupply)
	tokens, err := curve.TokensForSol(q.NetSol, q.Price, p.params.Precision)
	if err != nil {
		if errors.Is(err, curve.ErrOverflow) {
			return BuyQuote{}, fmt.Errorf("%w: token amount overflows", types.ErrSupplyExceeded)
		}
		return BuyQuote{}, err
	}
	if tokens == 0 {
		return BuyQuote{}, types.ErrDustAmount
	}
	if tokens > st.Remaining() {
		return BuyQuote{}, fmt.Errorf("%w: %d tokens requested, %d remaining",
			types.ErrSupplyExceeded, tokens, st.Remaining())
	}
	q.TokenAmount = tokens
	return q, nil
}

// quoteSale applies the sale checks that do not need the host.
func (p *Program) quoteSale(st *ledger.State, tokens uint64) (SaleQuote, error) {
	if err := st.RequireCurve(); err != nil {
		return SaleQuote{}, err
	}
	if st.Supply.IsMigrated() {
		return SaleQuote{}, types.ErrMigrated
	}
	if tokens < p.params.MinSale {
		return SaleQuote{}, fmt.Errorf("%w: %d < %d tokens", types.ErrAmountTooSmall, tokens, p.params.MinSale)
	}
	if tokens > st.Supply.TotalSoldSupply {
		return SaleQuote{}, fmt.Errorf("%w: %d tokens exceed sold supply %d",
			types.ErrInvalidParameter, tokens, st.Supply.TotalSoldSupply)
	}

	// Priced at the pre-sale supply.
	price := st.Curve.Price(st.Supply.TotalSoldSupply)
	sol, err := curve.SolForTokens(tokens, price, p.params.Precision)
	if err != nil {
		return SaleQuote{}, fmt.Errorf("%w: sale value overflows", types.ErrInsufficientReserve)
	}
	if sol == 0 {
		return SaleQuote{}, types.ErrDustAmount
	}
	if sol > st.Supply.TotalRaised {
		return SaleQuote{}, fmt.Errorf("%w: sale value %d exceeds raised %d",
			types.ErrInsufficientReserve, sol, st.Supply.TotalRaised)
	}
	return SaleQuote{TokenAmount: tokens, Price: price, SolAmount: sol}, nil
}

// QuoteBuy previews a purchase by buyer, referral fee included.
func (p *Program) QuoteBuy(_ context.Context, buyer types.Identity, sol uint64) (BuyQuote, error) {
	var q BuyQuote
	err := p.view(func(st *ledger.State) error {
		var err error
		q, err = p.quoteBuy(st, buyer, sol, true)
		return err
	})
	return q, err
}

// QuoteSell previews a sale.
func (p *Program) QuoteSell(_ context.Context, tokens uint64) (SaleQuote, error) {
	var q SaleQuote
	err := p.view(func(st *ledger.State) error {
		var err error
		q, err = p.quoteSale(st, tokens)
		return err
	})
	return q, err
}

// CalculateCurrentPrice returns the unit price at the committed supply.
func (p *Program) CalculateCurrentPrice(_ context.Context) (uint64, error) {
	var price, supply uint64
	err := p.view(func(st *ledger.State) error {
		if err := st.RequireCurve(); err != nil {
			return err
		}
		supply = st.Supply.TotalSoldSupply
		price = st.Curve.Price(supply)
		return nil
	})
	if err != nil {
		return 0, err
	}
	p.sink.Emit(&events.PriceEvent{
		BaseEvent: events.NewBase(events.PriceCalculated, p.clock()),
		Supply:    supply,
		Price:     price,
	})
	return price, nil
}

// CalculateTokensForSol projects the tokens a payment would buy, ignoring
// referral fees.
func (p *Program) CalculateTokensForSol(_ context.Context, sol uint64) (uint64, error) {
	var q BuyQuote
	err := p.view(func(st *ledger.State) error {
		var err error
		q, err = p.quoteBuy(st, types.Identity{}, sol, false)
		return err
	})
	if err != nil {
		return 0, err
	}
	p.sink.Emit(&events.TokenCalculationEvent{
		BaseEvent:   events.NewBase(events.TokensCalculated, p.clock()),
		SolAmount:   sol,
		TokenAmount: q.TokenAmount,
		Price:       q.Price,
	})
	return q.TokenAmount, nil
}
