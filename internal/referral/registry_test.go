package referral

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetReferral(t *testing.T) {
	records := make(map[types.Identity]ledger.ReferralRecord)
	reg := New(records, DefaultPolicy())

	user := solana.NewWallet().PublicKey()
	ref := solana.NewWallet().PublicKey()

	_, err := reg.Set(user, user)
	assert.ErrorIs(t, err, types.ErrSelfReferral)
	_, err = reg.Set(user, solana.PublicKey{})
	assert.ErrorIs(t, err, types.ErrInvalidParameter)
	assert.Empty(t, records)

	rec, err := reg.Set(user, ref)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultReferralFeeBps, rec.FeeBps)
	assert.Equal(t, ref, records[user].Referrer)

	_, err = reg.Set(user, solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, types.ErrInvalidParameter)
	assert.Equal(t, ref, records[user].Referrer)
}

func TestUpdateFee(t *testing.T) {
	records := make(map[types.Identity]ledger.ReferralRecord)
	reg := New(records, DefaultPolicy())

	user := solana.NewWallet().PublicKey()
	_, err := reg.UpdateFee(user, 200)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	_, err = reg.Set(user, solana.NewWallet().PublicKey())
	require.NoError(t, err)

	_, err = reg.UpdateFee(user, 501)
	assert.ErrorIs(t, err, types.ErrFeeTooHigh)

	old, err := reg.UpdateFee(user, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), old)

	rec, ok := reg.Lookup(user)
	require.True(t, ok)
	assert.Equal(t, uint64(500), rec.FeeBps)

	old, err = reg.UpdateFee(user, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), old)
}
