// internal/engine/referral_ops.go
package engine

import (
	"context"

	"github.com/rovshanmuradov/curvesale/internal/admin"
	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/rovshanmuradov/curvesale/internal/referral"
	"github.com/rovshanmuradov/curvesale/internal/types"
)

// SetReferral binds user to referrer at the default fee rate.
func (p *Program) SetReferral(ctx context.Context, user, referrer types.Identity) error {
	return p.run(ctx, "set_referral", func(_ context.Context, c *call) error {
		if err := c.st.RequireMint(); err != nil {
			return err
		}
		if err := admin.New(&c.st.Admin).RequireRunning(); err != nil {
			return err
		}
		rec, err := referral.New(c.st.Referrals, p.params.referralPolicy()).Set(user, referrer)
		if err != nil {
			return err
		}
		c.emit(&events.ReferralCreatedEvent{
			BaseEvent: c.base(events.ReferralCreated),
			User:      rec.User,
			Referrer:  rec.Referrer,
			FeeBps:    rec.FeeBps,
		})
		return nil
	})
}

// UpdateReferralFee changes a user's referral fee rate. Admin only.
func (p *Program) UpdateReferralFee(ctx context.Context, caller, user types.Identity, bps uint64) error {
	return p.run(ctx, "update_referral_fee", func(_ context.Context, c *call) error {
		if err := c.st.RequireMint(); err != nil {
			return err
		}
		if err := admin.New(&c.st.Admin).RequireAdmin(caller); err != nil {
			return err
		}
		old, err := referral.New(c.st.Referrals, p.params.referralPolicy()).UpdateFee(user, bps)
		if err != nil {
			return err
		}
		c.emit(&events.ReferralFeeUpdatedEvent{
			BaseEvent: c.base(events.ReferralFeeUpdated),
			User:      user,
			OldFeeBps: old,
			NewFeeBps: bps,
		})
		return nil
	})
}
