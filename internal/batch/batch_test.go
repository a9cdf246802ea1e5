package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/curvesale/internal/engine"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/storage/memory"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSolToLamports(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"1", 1_000_000_000, false},
		{"0.5", 500_000_000, false},
		{"0.000000001", 1, false},
		{"0.0000000001", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"100000000000", 0, true},
	}
	for _, tt := range tests {
		got, err := SolToLamports(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLamportsToSol(t *testing.T) {
	assert.Equal(t, "1.5", LamportsToSol(1_500_000_000))
	assert.Equal(t, "0.000000001", LamportsToSol(1))
	assert.Equal(t, "0", LamportsToSol(0))
}

func TestParseSkipsInvalidOrders(t *testing.T) {
	a, b := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	doc := fmt.Sprintf(`
orders:
  - name: first buy
    operation: buy
    account: %[1]s
    amount_sol: "0.25"
    slippage: {type: bps, value: 100}
  - operation: sell
    account: %[1]s
    tokens: 10
  - operation: set_referral
    account: %[1]s
    referrer: %[2]s
  - operation: airdrop
    account: %[2]s
    caller: %[1]s
    tokens: 5
  - operation: snipe
    account: %[1]s
  - operation: buy
    account: not-a-key
    lamports: 10
  - operation: airdrop
    account: %[2]s
    tokens: 5
`, a, b)

	orders, err := NewLoader(zap.NewNop()).Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, orders, 4)

	assert.Equal(t, "first buy", orders[0].Name)
	assert.Equal(t, uint64(250_000_000), orders[0].Lamports)
	assert.Equal(t, types.SlippageBps, orders[0].Slippage.Type)
	assert.Equal(t, "sell-1", orders[1].Name)
	assert.Equal(t, b, orders[2].Referrer)
	assert.Equal(t, a, orders[3].Caller)
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader(zap.NewNop())
	_, err := l.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = l.Parse([]byte("orders: []\n"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("orders:\n  - operation: nope\n"), 0644))
	_, err = l.Load(path)
	assert.Error(t, err)
}

func newProgram(t *testing.T) (*engine.Program, *memory.Store, types.Identity) {
	t.Helper()
	ctx := context.Background()
	addrs, err := types.NewAddresses(solana.MustPublicKeyFromBase58(types.DefaultProgramID))
	require.NoError(t, err)
	store := memory.New(addrs)
	params := engine.Params{
		TotalSupply:           1_000_000,
		Precision:             1,
		MinPurchase:           1_000,
		MinSale:               1,
		DefaultReferralFeeBps: 100,
		MaxReferralFeeBps:     500,
	}
	p, err := engine.New(ctx, store, nil, params)
	require.NoError(t, err)

	admin := solana.NewWallet().PublicKey()
	require.NoError(t, p.InitializeMint(ctx, admin, ledger.MintConfig{
		Mint:     solana.NewWallet().PublicKey(),
		Treasury: solana.NewWallet().PublicKey(),
		Reserve:  solana.NewWallet().PublicKey(),
	}))
	require.NoError(t, p.InitializeBondingCurve(ctx, admin, []uint64{100, 200}))
	return p, store, admin
}

func TestRunnerExecutesOrders(t *testing.T) {
	ctx := context.Background()
	p, store, admin := newProgram(t)

	buyers := make([]types.Identity, 8)
	var orders []Order
	for i := range buyers {
		buyers[i] = solana.NewWallet().PublicKey()
		require.NoError(t, store.Fund(ctx, buyers[i], 1_000_000))
		orders = append(orders, Order{ID: i, Name: fmt.Sprintf("buy-%d", i), Operation: OperationBuy, Account: buyers[i], Lamports: 10_000})
	}
	orders = append(orders,
		Order{ID: 8, Name: "broke", Operation: OperationBuy, Account: solana.NewWallet().PublicKey(), Lamports: 10_000},
		Order{ID: 9, Name: "gift", Operation: OperationAirdrop, Account: buyers[0], Caller: admin, Tokens: 50},
	)

	summary, err := NewRunner(p, 4, zap.NewNop()).Run(ctx, orders)
	require.NoError(t, err)
	assert.Equal(t, 9, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Results, len(orders))
	assert.Error(t, summary.Results[8].Err)
	assert.Equal(t, "broke", summary.Results[8].Order.Name)

	st := p.Snapshot()
	assert.Equal(t, uint64(800), st.Supply.TotalSoldSupply)
	assert.Equal(t, uint64(80_000), st.Supply.TotalRaised)
	assert.Equal(t, uint64(50), st.Airdrop.TotalAirdropped)
}

func TestRunnerSlippageGuards(t *testing.T) {
	ctx := context.Background()
	p, store, _ := newProgram(t)
	buyer := solana.NewWallet().PublicKey()
	require.NoError(t, store.Fund(ctx, buyer, 1_000_000))

	orders := []Order{
		{Name: "guarded", Operation: OperationBuy, Account: buyer, Lamports: 100_000,
			Slippage: types.SlippageConfig{Type: types.SlippageBps, Value: 50}},
		{Name: "too greedy", Operation: OperationBuy, Account: buyer, Lamports: 100_000,
			Slippage: types.SlippageConfig{Type: types.SlippageFixed, Value: 5_000}},
		{Name: "sell", Operation: OperationSell, Account: buyer, Tokens: 100,
			Slippage: types.SlippageConfig{Type: types.SlippageBps, Value: 100}},
	}

	r := NewRunner(p, 1, zap.NewNop())
	summary, err := r.Run(ctx, orders[:1])
	require.NoError(t, err)
	assert.NoError(t, summary.Results[0].Err)
	assert.Equal(t, uint64(1_000), summary.Results[0].Tokens)

	summary, err = r.Run(ctx, orders[1:])
	require.NoError(t, err)
	assert.ErrorIs(t, summary.Results[0].Err, types.ErrSlippageExceeded)
	assert.Equal(t, types.Code(types.ErrSlippageExceeded), summary.Results[0].Code)
	assert.NoError(t, summary.Results[1].Err)
	assert.Equal(t, uint64(10_000), summary.Results[1].Lamports)
}

func TestRunnerStopsOnCancel(t *testing.T) {
	p, _, _ := newProgram(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(p, 2, zap.NewNop()).Run(ctx, []Order{
		{Name: "late", Operation: OperationSetReferral, Account: solana.NewWallet().PublicKey(), Referrer: solana.NewWallet().PublicKey()},
	})
	assert.ErrorIs(t, err, context.Canceled)
}
