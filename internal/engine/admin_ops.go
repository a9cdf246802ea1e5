// internal/engine/admin_ops.go
package engine

import (
	"context"
	"fmt"

	"github.com/rovshanmuradov/curvesale/internal/admin"
	"github.com/rovshanmuradov/curvesale/internal/curve"
	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/types"
)

// InitializeMint configures the mint and value accounts. The caller becomes
// the admin. It can run once.
func (p *Program) InitializeMint(ctx context.Context, caller types.Identity, cfg ledger.MintConfig) error {
	return p.run(ctx, "initialize_mint", func(_ context.Context, c *call) error {
		if c.st.Mint != nil {
			return fmt.Errorf("%w: mint", types.ErrAlreadyInitialized)
		}
		if caller.IsZero() || cfg.Mint.IsZero() || cfg.Treasury.IsZero() || cfg.Reserve.IsZero() {
			return fmt.Errorf("%w: admin, mint, treasury and reserve are required", types.ErrInvalidParameter)
		}
		if cfg.Treasury.Equals(cfg.Reserve) {
			return fmt.Errorf("%w: treasury and reserve must differ", types.ErrInvalidParameter)
		}
		m := cfg
		c.st.Mint = &m
		c.st.Admin = ledger.AdminState{Admin: caller}

		c.emit(&events.MintInitializedEvent{
			BaseEvent: c.base(events.MintInitialized),
			Admin:     caller,
			Mint:      cfg.Mint,
			Treasury:  cfg.Treasury,
			Reserve:   cfg.Reserve,
		})
		return nil
	})
}

// InitializeBondingCurve installs the price schedule. Admin only, once.
func (p *Program) InitializeBondingCurve(ctx context.Context, caller types.Identity, points []uint64) error {
	return p.run(ctx, "initialize_bonding_curve", func(_ context.Context, c *call) error {
		if err := c.st.RequireMint(); err != nil {
			return err
		}
		if err := admin.New(&c.st.Admin).RequireAdmin(caller); err != nil {
			return err
		}
		if c.st.Curve != nil {
			return fmt.Errorf("%w: bonding curve", types.ErrAlreadyInitialized)
		}
		cfg, err := curve.NewConfig(points, p.params.TotalSupply)
		if err != nil {
			return err
		}
		c.st.Curve = cfg

		c.emit(&events.CurveInitializedEvent{
			BaseEvent:   c.base(events.CurveInitialized),
			Admin:       caller,
			PricePoints: cfg.Points(),
			TotalSupply: cfg.TotalSupply(),
		})
		return nil
	})
}

// TransferAdmin proposes a new admin.
func (p *Program) TransferAdmin(ctx context.Context, caller, next types.Identity) error {
	return p.run(ctx, "transfer_admin", func(_ context.Context, c *call) error {
		if err := c.st.RequireMint(); err != nil {
			return err
		}
		if err := admin.New(&c.st.Admin).Transfer(caller, next); err != nil {
			return err
		}
		c.emit(&events.AdminTransferInitiatedEvent{
			BaseEvent:     c.base(events.AdminTransferInitiated),
			CurrentAdmin:  caller,
			ProposedAdmin: next,
		})
		return nil
	})
}

// AcceptAdmin completes a pending admin transfer.
func (p *Program) AcceptAdmin(ctx context.Context, caller types.Identity) error {
	return p.run(ctx, "accept_admin", func(_ context.Context, c *call) error {
		if err := c.st.RequireMint(); err != nil {
			return err
		}
		if err := admin.New(&c.st.Admin).Accept(caller); err != nil {
			return err
		}
		c.emit(&events.AdminTransferCompletedEvent{
			BaseEvent: c.base(events.AdminTransferCompleted),
			NewAdmin:  caller,
		})
		return nil
	})
}

// SetPauseState pauses or resumes user operations. Setting the current state
// again is a silent no-op.
func (p *Program) SetPauseState(ctx context.Context, caller types.Identity, paused bool) error {
	return p.run(ctx, "set_pause_state", func(_ context.Context, c *call) error {
		if err := c.st.RequireMint(); err != nil {
			return err
		}
		changed, err := admin.New(&c.st.Admin).SetPaused(caller, paused)
		if err != nil {
			return err
		}
		if changed {
			c.emit(&events.PauseChangedEvent{
				BaseEvent: c.base(events.PauseChanged),
				Admin:     caller,
				Paused:    paused,
			})
		}
		return nil
	})
}
