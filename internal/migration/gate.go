// internal/migration/gate.go
package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/types"
)

// LiquidityPoolProvisioner opens the external venue the sale migrates to. It
// must report an error without side effects when provisioning fails.
type LiquidityPoolProvisioner interface {
	Provision(ctx context.Context, rec ledger.MigrationRecord) (ledger.Venue, error)
}

// Gate evaluates migration conditions and performs the one-way handoff.
type Gate struct {
	policy      Policy
	provisioner LiquidityPoolProvisioner
}

// NewGate builds a gate. A nil policy falls back to the default SOL window.
func NewGate(policy Policy, provisioner LiquidityPoolProvisioner) *Gate {
	if policy == nil {
		policy = DefaultSolWindow()
	}
	return &Gate{policy: policy, provisioner: provisioner}
}

// Policy returns the active policy.
func (g *Gate) Policy() Policy {
	return g.policy
}

// CheckConditions reports why st cannot migrate, or nil.
func (g *Gate) CheckConditions(ctx context.Context, st *ledger.State) error {
	if err := st.RequireCurve(); err != nil {
		return err
	}
	if st.Supply.IsMigrated() {
		return types.ErrAlreadyMigrated
	}
	return g.policy.Check(ctx, st.Supply)
}

// Probe reports whether st is ready to migrate. It never mutates st.
func (g *Gate) Probe(ctx context.Context, st *ledger.State) bool {
	return g.CheckConditions(ctx, st) == nil
}

// Migrate flips st to migrated, snapshots the ledger and hands it to the
// provisioner. Callers run it inside a host transaction and discard st on error.
func (g *Gate) Migrate(ctx context.Context, st *ledger.State, caller types.Identity, now time.Time) (*ledger.MigrationRecord, error) {
	if err := g.CheckConditions(ctx, st); err != nil {
		return nil, err
	}
	if g.provisioner == nil {
		return nil, fmt.Errorf("%w: no provisioner configured", types.ErrPoolProvisioningFailed)
	}
	if err := st.Supply.MarkMigrated(); err != nil {
		return nil, err
	}

	rec := ledger.MigrationRecord{
		TotalRaised:     st.Supply.TotalRaised,
		TotalSoldSupply: st.Supply.TotalSoldSupply,
		Timestamp:       now.Unix(),
		Admin:           caller,
		Mint:            st.Mint.Mint,
	}
	venue, err := g.provisioner.Provision(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrPoolProvisioningFailed, err)
	}
	rec.Venue = venue
	st.Migration = &rec
	return &rec, nil
}
