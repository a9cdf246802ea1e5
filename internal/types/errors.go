// internal/types/errors.go
package types

import "errors"

// Failure kinds reported by every ledger operation. Callers match with errors.Is;
// context is attached with fmt.Errorf("%w: ...").
var (
	ErrUnauthorized                 = errors.New("unauthorized")
	ErrProtocolPaused               = errors.New("protocol is paused")
	ErrInvalidParameter             = errors.New("invalid parameter")
	ErrTooManyPricePoints           = errors.New("too many price points")
	ErrSupplyExceeded               = errors.New("total supply exceeded")
	ErrAmountTooSmall               = errors.New("amount too small")
	ErrDustAmount                   = errors.New("amount rounds to zero")
	ErrMigrated                     = errors.New("curve has migrated")
	ErrAlreadyMigrated              = errors.New("curve already migrated")
	ErrMigrationThresholdNotReached = errors.New("migration threshold not reached")
	ErrMigrationConditionsNotMet    = errors.New("migration conditions not met")
	ErrInsufficientReserve          = errors.New("insufficient reserve")
	ErrSelfReferral                 = errors.New("self referral")
	ErrFeeTooHigh                   = errors.New("referral fee too high")
	ErrStalePrice                   = errors.New("stale oracle price")
	ErrSlippageExceeded             = errors.New("slippage exceeded")
	ErrNotInitialized               = errors.New("not initialized")
	ErrAlreadyInitialized           = errors.New("already initialized")
	ErrPoolProvisioningFailed       = errors.New("pool provisioning failed")
)

// errorCodeBase matches the Anchor custom error offset.
const errorCodeBase = 6000

var errorKinds = []error{
	ErrUnauthorized,
	ErrProtocolPaused,
	ErrInvalidParameter,
	ErrTooManyPricePoints,
	ErrSupplyExceeded,
	ErrAmountTooSmall,
	ErrDustAmount,
	ErrMigrated,
	ErrAlreadyMigrated,
	ErrMigrationThresholdNotReached,
	ErrMigrationConditionsNotMet,
	ErrInsufficientReserve,
	ErrSelfReferral,
	ErrFeeTooHigh,
	ErrStalePrice,
	ErrSlippageExceeded,
	ErrNotInitialized,
	ErrAlreadyInitialized,
	ErrPoolProvisioningFailed,
}

// Code maps an error to its stable numeric code. Nil maps to 0 and errors
// outside the taxonomy map to 1.
func Code(err error) int {
	if err == nil {
		return 0
	}
	for i, kind := range errorKinds {
		if errors.Is(err, kind) {
			return errorCodeBase + i
		}
	}
	return 1
}

// Kind returns the taxonomy sentinel wrapped by err, or nil.
func Kind(err error) error {
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
