// internal/admin/admin.go
package admin

import (
	"fmt"

	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/types"
)

// Authority drives the admin handoff and pause state machine.
type Authority struct {
	state *ledger.AdminState
}

// New wraps the admin record of a state.
func New(state *ledger.AdminState) *Authority {
	return &Authority{state: state}
}

// Admin returns the current admin.
func (a *Authority) Admin() types.Identity {
	return a.state.Admin
}

// RequireAdmin fails unless caller is the current admin.
func (a *Authority) RequireAdmin(caller types.Identity) error {
	if caller.IsZero() || !caller.Equals(a.state.Admin) {
		return fmt.Errorf("%w: %s is not the admin", types.ErrUnauthorized, caller)
	}
	return nil
}

// RequireRunning fails while the protocol is paused.
func (a *Authority) RequireRunning() error {
	if a.state.IsPaused() {
		return types.ErrProtocolPaused
	}
	return nil
}

// Transfer proposes next as the new admin. A later proposal replaces an
// earlier one.
func (a *Authority) Transfer(caller, next types.Identity) error {
	if err := a.RequireAdmin(caller); err != nil {
		return err
	}
	if next.IsZero() || next.Equals(a.state.Admin) {
		return fmt.Errorf("%w: proposed admin %s", types.ErrInvalidParameter, next)
	}
	a.state.Handoff = ledger.HandoffPending
	a.state.Pending = next
	return nil
}

// Accept completes a pending handoff. Only the proposed admin may accept.
func (a *Authority) Accept(caller types.Identity) error {
	pending, ok := a.state.PendingAdmin()
	if !ok {
		return fmt.Errorf("%w: no admin transfer pending", types.ErrUnauthorized)
	}
	if !caller.Equals(pending) {
		return fmt.Errorf("%w: %s is not the pending admin", types.ErrUnauthorized, caller)
	}
	a.state.Admin = pending
	a.state.Handoff = ledger.HandoffNone
	a.state.Pending = types.Identity{}
	return nil
}

// SetPaused switches the run state. It reports whether anything changed.
func (a *Authority) SetPaused(caller types.Identity, paused bool) (bool, error) {
	if err := a.RequireAdmin(caller); err != nil {
		return false, err
	}
	next := ledger.Running
	if paused {
		next = ledger.Paused
	}
	if a.state.Run == next {
		return false, nil
	}
	a.state.Run = next
	return true, nil
}
