package curve

import (
	"math"
	"testing"

	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitConservesFee(t *testing.T) {
	for _, fee := range []uint64{0, 1, 2, 3, 10_000, 10_001, math.MaxUint64} {
		ref, proto := Split(fee)
		assert.Equal(t, fee, ref+proto, "fee %d", fee)
		assert.LessOrEqual(t, ref, proto)
	}

	ref, proto := Split(3)
	assert.Equal(t, uint64(1), ref)
	assert.Equal(t, uint64(2), proto)
}

func TestReferralFee(t *testing.T) {
	fee, err := ReferralFee(10_000_000, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000), fee)

	fee, err = ReferralFee(99, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), fee)

	fee, err = ReferralFee(math.MaxUint64, types.DefaultMaxReferralFeeBps)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/20), fee)

	_, err = ReferralFee(1, types.BpsDenominator+1)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)
}

func TestTokensForSol(t *testing.T) {
	tokens, err := TokensForSol(1_000_000_000, 100, types.DefaultPrecision)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000_000_000_000), tokens)

	// Floors.
	tokens, err = TokensForSol(10, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), tokens)

	_, err = TokensForSol(math.MaxUint64, 1, types.DefaultPrecision)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = TokensForSol(1, 0, 1)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSolForTokens(t *testing.T) {
	sol, err := SolForTokens(10_000_000_000_000_000, 100, types.DefaultPrecision)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), sol)

	_, err = SolForTokens(math.MaxUint64, math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestSafeArithmetic(t *testing.T) {
	_, err := SafeAdd(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = SafeSub(1, 2)
	assert.ErrorIs(t, err, ErrOverflow)

	v, err := SafeSub(5, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)
}
