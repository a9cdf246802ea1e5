package admin

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwoPhaseTransfer(t *testing.T) {
	a1 := solana.NewWallet().PublicKey()
	a2 := solana.NewWallet().PublicKey()
	a3 := solana.NewWallet().PublicKey()

	st := ledger.AdminState{Admin: a1}
	auth := New(&st)

	assert.ErrorIs(t, auth.Transfer(a2, a3), types.ErrUnauthorized)
	assert.ErrorIs(t, auth.Transfer(a1, a1), types.ErrInvalidParameter)
	assert.ErrorIs(t, auth.Transfer(a1, solana.PublicKey{}), types.ErrInvalidParameter)

	require.NoError(t, auth.Transfer(a1, a2))
	pending, ok := st.PendingAdmin()
	require.True(t, ok)
	assert.Equal(t, a2, pending)

	// Only the pending identity may accept; the admin stays put meanwhile.
	assert.ErrorIs(t, auth.Accept(a3), types.ErrUnauthorized)
	assert.Equal(t, a1, st.Admin)

	require.NoError(t, auth.Accept(a2))
	assert.Equal(t, a2, st.Admin)
	_, ok = st.PendingAdmin()
	assert.False(t, ok)

	assert.ErrorIs(t, auth.Accept(a2), types.ErrUnauthorized)
	assert.ErrorIs(t, auth.RequireAdmin(a1), types.ErrUnauthorized)
}

func TestTransferReplacesPending(t *testing.T) {
	a1 := solana.NewWallet().PublicKey()
	a2 := solana.NewWallet().PublicKey()
	a3 := solana.NewWallet().PublicKey()

	st := ledger.AdminState{Admin: a1}
	auth := New(&st)
	require.NoError(t, auth.Transfer(a1, a2))
	require.NoError(t, auth.Transfer(a1, a3))

	assert.ErrorIs(t, auth.Accept(a2), types.ErrUnauthorized)
	require.NoError(t, auth.Accept(a3))
	assert.Equal(t, a3, auth.Admin())
}

func TestSetPausedIsIdempotent(t *testing.T) {
	admin := solana.NewWallet().PublicKey()
	st := ledger.AdminState{Admin: admin}
	auth := New(&st)

	changed, err := auth.SetPaused(solana.NewWallet().PublicKey(), true)
	assert.ErrorIs(t, err, types.ErrUnauthorized)
	assert.False(t, changed)

	changed, err = auth.SetPaused(admin, true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.ErrorIs(t, auth.RequireRunning(), types.ErrProtocolPaused)

	changed, err = auth.SetPaused(admin, true)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = auth.SetPaused(admin, false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NoError(t, auth.RequireRunning())
}
