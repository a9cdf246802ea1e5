// internal/engine/params.go
package engine

import (
	"fmt"

	"github.com/rovshanmuradov/curvesale/internal/referral"
	"github.com/rovshanmuradov/curvesale/internal/types"
)

// Params are the protocol parameters the program runs with.
type Params struct {
	TotalSupply           uint64
	Precision             uint64
	MinPurchase           uint64
	MinSale               uint64
	DefaultReferralFeeBps uint64
	MaxReferralFeeBps     uint64
}

// DefaultParams returns the protocol defaults.
func DefaultParams() Params {
	return Params{
		TotalSupply:           types.DefaultTotalSupply,
		Precision:             types.DefaultPrecision,
		MinPurchase:           types.DefaultMinPurchase,
		MinSale:               types.DefaultMinSale,
		DefaultReferralFeeBps: types.DefaultReferralFeeBps,
		MaxReferralFeeBps:     types.DefaultMaxReferralFeeBps,
	}
}

// Validate checks internal consistency.
func (p Params) Validate() error {
	switch {
	case p.TotalSupply == 0:
		return fmt.Errorf("%w: total supply must be positive", types.ErrInvalidParameter)
	case p.Precision == 0:
		return fmt.Errorf("%w: precision must be positive", types.ErrInvalidParameter)
	case p.MaxReferralFeeBps > types.BpsDenominator:
		return fmt.Errorf("%w: max referral fee %d bps", types.ErrInvalidParameter, p.MaxReferralFeeBps)
	case p.DefaultReferralFeeBps > p.MaxReferralFeeBps:
		return fmt.Errorf("%w: default referral fee above max", types.ErrInvalidParameter)
	}
	return nil
}

func (p Params) referralPolicy() referral.Policy {
	return referral.Policy{DefaultFeeBps: p.DefaultReferralFeeBps, MaxFeeBps: p.MaxReferralFeeBps}
}
