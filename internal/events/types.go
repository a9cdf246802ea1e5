// internal/events/types.go
package events

import (
	"time"

	"github.com/rovshanmuradov/curvesale/internal/types"
)

// EventType represents the type of event.
type EventType string

const (
	PurchaseRecorded       EventType = "purchase.recorded"
	SaleRecorded           EventType = "sale.recorded"
	PriceCalculated        EventType = "price.calculated"
	TokensCalculated       EventType = "tokens.calculated"
	ReferralCreated        EventType = "referral.created"
	ReferralFeeUpdated     EventType = "referral.fee_updated"
	AirdropRecorded        EventType = "airdrop.recorded"
	AdminTransferInitiated EventType = "admin.transfer_initiated"
	AdminTransferCompleted EventType = "admin.transfer_completed"
	PauseChanged           EventType = "pause.changed"
	MintInitialized        EventType = "mint.initialized"
	CurveInitialized       EventType = "curve.initialized"
	MigrationReady         EventType = "migration.ready"
	MigrationCompleted     EventType = "migration.completed"
)

// AllTypes lists every event type the program emits.
var AllTypes = []EventType{
	PurchaseRecorded, SaleRecorded, PriceCalculated, TokensCalculated,
	ReferralCreated, ReferralFeeUpdated, AirdropRecorded,
	AdminTransferInitiated, AdminTransferCompleted, PauseChanged,
	MintInitialized, CurveInitialized, MigrationReady, MigrationCompleted,
}

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType `json:"type"`
	EventTime time.Time `json:"time"`
}

// NewBase stamps an event header.
func NewBase(t EventType, at time.Time) BaseEvent {
	return BaseEvent{EventType: t, EventTime: at}
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// PurchaseEvent records a committed buy.
type PurchaseEvent struct {
	BaseEvent
	Buyer         types.Identity `json:"buyer"`
	Referrer      types.Identity `json:"referrer,omitempty"`
	SolAmount     uint64         `json:"sol_amount"`
	NetSol        uint64         `json:"net_sol"`
	ReferrerShare uint64         `json:"referrer_share"`
	ProtocolShare uint64         `json:"protocol_share"`
	TokenAmount   uint64         `json:"token_amount"`
	Price         uint64         `json:"price"`
}

// SaleEvent records a committed sell.
type SaleEvent struct {
	BaseEvent
	Seller      types.Identity `json:"seller"`
	TokenAmount uint64         `json:"token_amount"`
	SolAmount   uint64         `json:"sol_amount"`
	Price       uint64         `json:"price"`
}

// PriceEvent reports a price read.
type PriceEvent struct {
	BaseEvent
	Supply uint64 `json:"supply"`
	Price  uint64 `json:"price"`
}

// TokenCalculationEvent reports a quote.
type TokenCalculationEvent struct {
	BaseEvent
	SolAmount   uint64 `json:"sol_amount"`
	TokenAmount uint64 `json:"token_amount"`
	Price       uint64 `json:"price"`
}

type ReferralCreatedEvent struct {
	BaseEvent
	User     types.Identity `json:"user"`
	Referrer types.Identity `json:"referrer"`
	FeeBps   uint64         `json:"fee_bps"`
}

type ReferralFeeUpdatedEvent struct {
	BaseEvent
	User      types.Identity `json:"user"`
	OldFeeBps uint64         `json:"old_fee_bps"`
	NewFeeBps uint64         `json:"new_fee_bps"`
}

type AirdropEvent struct {
	BaseEvent
	Recipient types.Identity `json:"recipient"`
	Amount    uint64         `json:"amount"`
}

type AdminTransferInitiatedEvent struct {
	BaseEvent
	CurrentAdmin  types.Identity `json:"current_admin"`
	ProposedAdmin types.Identity `json:"proposed_admin"`
}

type AdminTransferCompletedEvent struct {
	BaseEvent
	NewAdmin types.Identity `json:"new_admin"`
}

type PauseChangedEvent struct {
	BaseEvent
	Admin  types.Identity `json:"admin"`
	Paused bool           `json:"paused"`
}

type MintInitializedEvent struct {
	BaseEvent
	Admin    types.Identity `json:"admin"`
	Mint     types.Identity `json:"mint"`
	Treasury types.Identity `json:"treasury"`
	Reserve  types.Identity `json:"reserve"`
}

type CurveInitializedEvent struct {
	BaseEvent
	Admin       types.Identity `json:"admin"`
	PricePoints []uint64       `json:"price_points"`
	TotalSupply uint64         `json:"total_supply"`
}

// MigrationReadyEvent is raised after a buy leaves the ledger inside the
// migration window.
type MigrationReadyEvent struct {
	BaseEvent
	TotalRaised     uint64 `json:"total_raised"`
	TotalSoldSupply uint64 `json:"total_sold_supply"`
}

type MigrationCompletedEvent struct {
	BaseEvent
	Admin           types.Identity `json:"admin"`
	TotalRaised     uint64         `json:"total_raised"`
	TotalSoldSupply uint64         `json:"total_sold_supply"`
	Pool            types.Identity `json:"pool"`
	FeeKey          types.Identity `json:"fee_key"`
	Signature       string         `json:"signature"`
}
