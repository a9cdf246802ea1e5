// internal/referral/registry.go
package referral

import (
	"fmt"

	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/types"
)

// Policy carries the fee rates applied to referral records.
type Policy struct {
	DefaultFeeBps uint64
	MaxFeeBps     uint64
}

// DefaultPolicy returns the protocol default rates.
func DefaultPolicy() Policy {
	return Policy{
		DefaultFeeBps: types.DefaultReferralFeeBps,
		MaxFeeBps:     types.DefaultMaxReferralFeeBps,
	}
}

// Registry manages the per-user referral records of a state.
type Registry struct {
	records map[types.Identity]ledger.ReferralRecord
	policy  Policy
}

// New wraps a referral record map.
func New(records map[types.Identity]ledger.ReferralRecord, policy Policy) *Registry {
	return &Registry{records: records, policy: policy}
}

// Lookup returns the record for user, if any.
func (r *Registry) Lookup(user types.Identity) (ledger.ReferralRecord, bool) {
	rec, ok := r.records[user]
	return rec, ok
}

// Set binds user to referrer at the default fee rate. A user is bound once.
func (r *Registry) Set(user, referrer types.Identity) (ledger.ReferralRecord, error) {
	if user.Equals(referrer) {
		return ledger.ReferralRecord{}, types.ErrSelfReferral
	}
	if referrer.IsZero() {
		return ledger.ReferralRecord{}, fmt.Errorf("%w: empty referrer", types.ErrInvalidParameter)
	}
	if _, exists := r.records[user]; exists {
		return ledger.ReferralRecord{}, fmt.Errorf("%w: referral already set for %s", types.ErrInvalidParameter, user)
	}
	rec := ledger.ReferralRecord{User: user, Referrer: referrer, FeeBps: r.policy.DefaultFeeBps}
	r.records[user] = rec
	return rec, nil
}

// UpdateFee changes the fee rate of an existing record and returns the old rate.
func (r *Registry) UpdateFee(user types.Identity, bps uint64) (uint64, error) {
	if bps > r.policy.MaxFeeBps {
		return 0, fmt.Errorf("%w: %d bps > %d bps", types.ErrFeeTooHigh, bps, r.policy.MaxFeeBps)
	}
	rec, ok := r.records[user]
	if !ok {
		return 0, fmt.Errorf("%w: no referral for %s", types.ErrInvalidParameter, user)
	}
	old := rec.FeeBps
	rec.FeeBps = bps
	r.records[user] = rec
	return old, nil
}
