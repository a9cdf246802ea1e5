// internal/curve/fees.go
package curve

import (
	"fmt"

	"github.com/rovshanmuradov/curvesale/internal/types"
)

// Split divides a fee between referrer and protocol. The referrer gets the
// floor half; the protocol keeps the rest.
func Split(fee uint64) (referrerShare, protocolShare uint64) {
	referrerShare = fee / 2
	return referrerShare, fee - referrerShare
}

// ReferralFee is amount*bps/10000, floored.
func ReferralFee(amount, bps uint64) (uint64, error) {
	if bps > types.BpsDenominator {
		return 0, fmt.Errorf("%w: fee rate %d bps", types.ErrInvalidParameter, bps)
	}
	return MulDiv(amount, bps, types.BpsDenominator)
}

// TokensForSol converts a net payment into token base units at price.
func TokensForSol(net, price, precision uint64) (uint64, error) {
	return MulDiv(net, precision, price)
}

// SolForTokens converts token base units into lamports at price.
func SolForTokens(tokens, price, precision uint64) (uint64, error) {
	return MulDiv(tokens, price, precision)
}
