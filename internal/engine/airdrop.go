// internal/engine/airdrop.go
package engine

import (
	"context"
	"fmt"

	"github.com/rovshanmuradov/curvesale/internal/admin"
	"github.com/rovshanmuradov/curvesale/internal/curve"
	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/rovshanmuradov/curvesale/internal/types"
)

// AirdropTokens mints amount to recipient outside the sale. The airdrop counts
// against the same supply cap as sold tokens.
func (p *Program) AirdropTokens(ctx context.Context, caller, recipient types.Identity, amount uint64) error {
	return p.run(ctx, "airdrop_tokens", func(ctx context.Context, c *call) error {
		if err := c.st.RequireCurve(); err != nil {
			return err
		}
		auth := admin.New(&c.st.Admin)
		if err := auth.RequireAdmin(caller); err != nil {
			return err
		}
		if err := auth.RequireRunning(); err != nil {
			return err
		}
		if amount == 0 || recipient.IsZero() {
			return fmt.Errorf("%w: airdrop needs a recipient and a positive amount", types.ErrInvalidParameter)
		}
		if amount > c.st.Remaining() {
			return fmt.Errorf("%w: airdrop of %d exceeds remaining %d", types.ErrSupplyExceeded, amount, c.st.Remaining())
		}

		if err := c.tx.MintTo(ctx, recipient, amount); err != nil {
			return fmt.Errorf("failed to mint: %w", err)
		}
		total, err := curve.SafeAdd(c.st.Airdrop.TotalAirdropped, amount)
		if err != nil {
			return fmt.Errorf("%w: airdrop total overflows", types.ErrSupplyExceeded)
		}
		c.st.Airdrop.TotalAirdropped = total

		c.emit(&events.AirdropEvent{
			BaseEvent: c.base(events.AirdropRecorded),
			Recipient: recipient,
			Amount:    amount,
		})
		return nil
	})
}
