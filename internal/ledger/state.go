// internal/ledger/state.go
package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/curvesale/internal/curve"
	"github.com/rovshanmuradov/curvesale/internal/types"
)

// CurveStatus is the one-way sale phase.
type CurveStatus uint8

const (
	StatusActive CurveStatus = iota
	StatusMigrated
)

func (s CurveStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusMigrated:
		return "migrated"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// SupplyLedger tracks tokens sold through the curve and the net value raised.
type SupplyLedger struct {
	TotalSoldSupply uint64
	TotalRaised     uint64
	Status          CurveStatus
}

func (l *SupplyLedger) IsMigrated() bool {
	return l.Status == StatusMigrated
}

// MarkMigrated moves the ledger to its terminal phase.
func (l *SupplyLedger) MarkMigrated() error {
	if l.Status == StatusMigrated {
		return types.ErrAlreadyMigrated
	}
	l.Status = StatusMigrated
	return nil
}

// RecordPurchase adds a sale of tokens for net lamports.
func (l *SupplyLedger) RecordPurchase(tokens, net uint64) error {
	sold, err := curve.SafeAdd(l.TotalSoldSupply, tokens)
	if err != nil {
		return fmt.Errorf("%w: sold supply overflow", types.ErrSupplyExceeded)
	}
	raised, err := curve.SafeAdd(l.TotalRaised, net)
	if err != nil {
		return fmt.Errorf("%w: raised overflow", types.ErrInvalidParameter)
	}
	l.TotalSoldSupply, l.TotalRaised = sold, raised
	return nil
}

// RecordSale removes tokens returned for sol lamports.
func (l *SupplyLedger) RecordSale(tokens, sol uint64) error {
	sold, err := curve.SafeSub(l.TotalSoldSupply, tokens)
	if err != nil {
		return fmt.Errorf("%w: sale exceeds sold supply", types.ErrInvalidParameter)
	}
	raised, err := curve.SafeSub(l.TotalRaised, sol)
	if err != nil {
		return fmt.Errorf("%w: sale exceeds raised value", types.ErrInsufficientReserve)
	}
	l.TotalSoldSupply, l.TotalRaised = sold, raised
	return nil
}

// AirdropLedger tracks tokens minted outside the sale.
type AirdropLedger struct {
	TotalAirdropped uint64
}

// ReferralRecord binds a user to the referrer that earns part of their fees.
type ReferralRecord struct {
	User     types.Identity
	Referrer types.Identity
	FeeBps   uint64
}

// Venue is what the pool provisioner reports back.
type Venue struct {
	Pool      types.Identity
	FeeKey    types.Identity
	Signature solana.Signature
}

// MigrationRecord is the immutable snapshot taken at migration.
type MigrationRecord struct {
	TotalRaised     uint64
	TotalSoldSupply uint64
	Timestamp       int64
	Admin           types.Identity
	Mint            types.Identity
	Venue
}

// HandoffPhase is the two-step admin transfer phase.
type HandoffPhase uint8

const (
	HandoffNone HandoffPhase = iota
	HandoffPending
)

// RunState gates user operations.
type RunState uint8

const (
	Running RunState = iota
	Paused
)

func (r RunState) String() string {
	if r == Paused {
		return "paused"
	}
	return "running"
}

// AdminState holds the privileged identity and the protocol run state.
type AdminState struct {
	Admin   types.Identity
	Handoff HandoffPhase
	Pending types.Identity
	Run     RunState
}

// PendingAdmin returns the proposed admin if a handoff is in flight.
func (a AdminState) PendingAdmin() (types.Identity, bool) {
	if a.Handoff != HandoffPending {
		return types.Identity{}, false
	}
	return a.Pending, true
}

func (a AdminState) IsPaused() bool {
	return a.Run == Paused
}

// MintConfig names the mint and the two value accounts of the sale.
type MintConfig struct {
	Mint     types.Identity
	Treasury types.Identity
	Reserve  types.Identity
}

// State aggregates every record of the program.
type State struct {
	Mint      *MintConfig
	Admin     AdminState
	Curve     *curve.Config
	Supply    SupplyLedger
	Airdrop   AirdropLedger
	Referrals map[types.Identity]ReferralRecord
	Migration *MigrationRecord
}

// NewState returns an uninitialized state.
func NewState() *State {
	return &State{Referrals: make(map[types.Identity]ReferralRecord)}
}

// Clone returns a deep copy. The curve config is immutable and shared.
func (s *State) Clone() *State {
	cp := *s
	if s.Mint != nil {
		m := *s.Mint
		cp.Mint = &m
	}
	if s.Migration != nil {
		m := *s.Migration
		cp.Migration = &m
	}
	cp.Referrals = make(map[types.Identity]ReferralRecord, len(s.Referrals))
	for k, v := range s.Referrals {
		cp.Referrals[k] = v
	}
	return &cp
}

// RequireMint fails until the mint has been configured.
func (s *State) RequireMint() error {
	if s.Mint == nil {
		return fmt.Errorf("%w: mint", types.ErrNotInitialized)
	}
	return nil
}

// RequireCurve fails until both mint and curve are configured.
func (s *State) RequireCurve() error {
	if err := s.RequireMint(); err != nil {
		return err
	}
	if s.Curve == nil {
		return fmt.Errorf("%w: bonding curve", types.ErrNotInitialized)
	}
	return nil
}

// Minted is sold plus airdropped supply.
func (s *State) Minted() uint64 {
	return s.Supply.TotalSoldSupply + s.Airdrop.TotalAirdropped
}

// Remaining is the supply still available under the cap.
func (s *State) Remaining() uint64 {
	if s.Curve == nil {
		return 0
	}
	total := s.Curve.TotalSupply()
	minted := s.Minted()
	if minted >= total {
		return 0
	}
	return total - minted
}
