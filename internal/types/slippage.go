// internal/types/slippage.go
package types

// SlippageType selects how a minimum-out guard is derived from a quote.
type SlippageType string

const (
	// SlippageFixed uses Value as the exact minimum.
	SlippageFixed SlippageType = "fixed"
	// SlippageBps allows the result to fall Value basis points below the quote.
	SlippageBps SlippageType = "bps"
	// SlippageNone disables the guard.
	SlippageNone SlippageType = "none"
)

// SlippageConfig configures the minimum-out policy of a trade.
type SlippageConfig struct {
	Type  SlippageType `json:"type" yaml:"type"`
	Value uint64       `json:"value" yaml:"value"`
}

// CalculateMinAmountOut derives the guard for an expected amount. Zero means
// no guard.
func CalculateMinAmountOut(expected uint64, config SlippageConfig) uint64 {
	switch config.Type {
	case SlippageFixed:
		return config.Value
	case SlippageBps:
		if config.Value >= BpsDenominator {
			return 0
		}
		keep := BpsDenominator - config.Value
		// expected*keep fits in 128 bits; split to stay in u64.
		return expected/BpsDenominator*keep + expected%BpsDenominator*keep/BpsDenominator
	default:
		return 0
	}
}
