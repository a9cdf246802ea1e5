// internal/types/params.go
package types

import "math"

// Protocol defaults. Every value except MaxPricePoints and BpsDenominator can be
// overridden through configuration.
const (
	DefaultTotalSupply uint64 = 1_000_000_000_000_000_000
	DefaultPrecision   uint64 = 1_000_000_000

	// MaxPricePoints bounds the fixed slot count of the curve record.
	MaxPricePoints = 100

	BpsDenominator           uint64 = 10_000
	DefaultReferralFeeBps    uint64 = 100
	DefaultMaxReferralFeeBps uint64 = 500

	LamportsPerSol uint64 = 1_000_000_000

	DefaultMinPurchase uint64 = 1_000_000
	DefaultMinSale     uint64 = 1_000_000

	DefaultMinRaise uint64 = 60_000 * LamportsPerSol
	DefaultMaxRaise uint64 = 63_000 * LamportsPerSol

	DefaultMaxStalenessSeconds int64  = 300
	DefaultUsdMinRaise         int64  = 100_000
	DefaultUsdMaxRaise         int64  = 1_000_000
	DefaultSupplyThreshold     uint64 = 1_000_000_000

	DefaultPoolFeeBps uint64 = 25
	PermanentLock     uint64 = math.MaxUint64

	// FeeKeyShareBps is the share of pool fees routed to the fee-key holder.
	FeeKeyShareBps uint64 = 10_000
)

// DefaultProgramID is the address the record keys are derived under.
const DefaultProgramID = "7giegFn7Wy4McS1eKr1cpjhpE9TibEywydG57PSao9bM"
