// internal/engine/migrate.go
package engine

import (
	"context"

	"github.com/rovshanmuradov/curvesale/internal/admin"
	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/types"
)

// MigrateToVenue closes the sale and hands the raised liquidity to the pool
// provisioner. Admin only. A provisioner failure rolls everything back.
func (p *Program) MigrateToVenue(ctx context.Context, caller types.Identity) (*ledger.MigrationRecord, error) {
	var rec *ledger.MigrationRecord
	err := p.run(ctx, "migrate_to_venue", func(ctx context.Context, c *call) error {
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
		var err error
		rec, err = p.gate.Migrate(ctx, c.st, caller, c.now)
		if err != nil {
			return err
		}
		c.emit(&events.MigrationCompletedEvent{
			BaseEvent:       c.base(events.MigrationCompleted),
			Admin:           caller,
			TotalRaised:     rec.TotalRaised,
			TotalSoldSupply: rec.TotalSoldSupply,
			Pool:            rec.Pool,
			FeeKey:          rec.FeeKey,
			Signature:       rec.Signature.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CheckMigration reports why the committed state cannot migrate, or nil.
func (p *Program) CheckMigration(ctx context.Context) error {
	return p.gate.CheckConditions(ctx, p.Snapshot())
}
