package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "curvesale.yaml")
	body := fmt.Sprintf(`storage:
  dsn: %s
log:
  file: %s
  console: none
audit:
  csv_path: %s
`, filepath.Join(dir, "state.db"), filepath.Join(dir, "curvesale.log"), filepath.Join(dir, "journal.csv"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runCLI(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, cfgPath, args...)
	require.NoError(t, err, "%v: %s", args, out)
	return out
}

func TestSaleLifecycle(t *testing.T) {
	cfg := writeConfig(t)
	admin := solana.NewWallet().PublicKey().String()
	buyer := solana.NewWallet().PublicKey().String()
	referrer := solana.NewWallet().PublicKey().String()

	mustRun(t, cfg, "init-mint",
		"--admin", admin,
		"--mint", solana.NewWallet().PublicKey().String(),
		"--treasury", solana.NewWallet().PublicKey().String(),
		"--reserve", solana.NewWallet().PublicKey().String())
	out := mustRun(t, cfg, "init-curve", "--admin", admin, "--points", "1000,2000")
	assert.Contains(t, out, "2 price points")

	mustRun(t, cfg, "fund", "--account", buyer, "--sol", "10")

	out = mustRun(t, cfg, "quote", "buy", "--sol", "1")
	assert.Contains(t, out, "tokens: 1000000000000000")

	out = mustRun(t, cfg, "buy", "--buyer", buyer, "--sol", "1", "--slippage-bps", "50")
	assert.Contains(t, out, "bought 1000000000000000 tokens for 1 SOL at price 1000")

	out = mustRun(t, cfg, "price")
	assert.Equal(t, "1002\n", out)

	out = mustRun(t, cfg, "sell", "--seller", buyer, "--tokens", "100000000000000")
	assert.Contains(t, out, "for 0.1002 SOL at price 1002")

	out = mustRun(t, cfg, "balance", "--account", buyer)
	assert.Contains(t, out, "tokens:  900000000000000")
	assert.Contains(t, out, "sol:     9.1002")

	mustRun(t, cfg, "set-referral", "--user", buyer, "--referrer", referrer)
	out = mustRun(t, cfg, "quote", "buy", "--buyer", buyer, "--sol", "1")
	assert.Contains(t, out, "fee:      0.01 SOL")
	assert.Contains(t, out, "referrer: "+referrer)

	out = mustRun(t, cfg, "status")
	assert.Contains(t, out, "admin:      "+admin)
	assert.Contains(t, out, "sold:       900000000000000")
	assert.Contains(t, out, "referrals:  1")
	assert.Contains(t, out, "sol policy")

	out = mustRun(t, cfg, "audit", "--type", "purchase.recorded")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "purchase.recorded")
	assert.Contains(t, out, buyer)
}

func TestCommandErrorsCarryExitCodes(t *testing.T) {
	cfg := writeConfig(t)
	admin := solana.NewWallet().PublicKey().String()
	stranger := solana.NewWallet().PublicKey().String()

	_, err := runCLI(t, cfg, "buy", "--buyer", stranger, "--sol", "1")
	require.ErrorIs(t, err, types.ErrNotInitialized)
	assert.Equal(t, ExitCode(types.ErrNotInitialized), ExitCode(err))

	mustRun(t, cfg, "init-mint",
		"--admin", admin,
		"--mint", solana.NewWallet().PublicKey().String(),
		"--treasury", solana.NewWallet().PublicKey().String(),
		"--reserve", solana.NewWallet().PublicKey().String())

	_, err = runCLI(t, cfg, "pause", "--admin", stranger)
	require.ErrorIs(t, err, types.ErrUnauthorized)
	assert.Equal(t, exitCodeBase, ExitCode(err))

	_, err = runCLI(t, cfg, "buy", "--buyer", "not-a-key", "--sol", "1")
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))

	_, err = runCLI(t, cfg, "fund", "--account", stranger, "--sol", "0.0000000001")
	require.Error(t, err)
}

func TestPauseResume(t *testing.T) {
	cfg := writeConfig(t)
	admin := solana.NewWallet().PublicKey().String()
	next := solana.NewWallet().PublicKey().String()

	mustRun(t, cfg, "init-mint",
		"--admin", admin,
		"--mint", solana.NewWallet().PublicKey().String(),
		"--treasury", solana.NewWallet().PublicKey().String(),
		"--reserve", solana.NewWallet().PublicKey().String())

	assert.Equal(t, "protocol paused\n", mustRun(t, cfg, "pause", "--admin", admin))
	out := mustRun(t, cfg, "status")
	assert.Contains(t, out, "state:      paused")
	assert.Equal(t, "protocol running\n", mustRun(t, cfg, "resume", "--admin", admin))

	mustRun(t, cfg, "transfer-admin", "--admin", admin, "--to", next)
	out = mustRun(t, cfg, "status")
	assert.Contains(t, out, "pending:    "+next)
	mustRun(t, cfg, "accept-admin", "--admin", next)
	out = mustRun(t, cfg, "status")
	assert.Contains(t, out, "admin:      "+next)
}

func TestBatchCommand(t *testing.T) {
	cfg := writeConfig(t)
	admin := solana.NewWallet().PublicKey().String()
	buyer := solana.NewWallet().PublicKey().String()

	mustRun(t, cfg, "init-mint",
		"--admin", admin,
		"--mint", solana.NewWallet().PublicKey().String(),
		"--treasury", solana.NewWallet().PublicKey().String(),
		"--reserve", solana.NewWallet().PublicKey().String())
	mustRun(t, cfg, "init-curve", "--admin", admin, "--points", "1000,2000")
	mustRun(t, cfg, "fund", "--account", buyer, "--sol", "5")

	orders := filepath.Join(t.TempDir(), "orders.yaml")
	body := fmt.Sprintf(`orders:
  - name: first-buy
    operation: buy
    account: %[1]s
    amount_sol: "1"
  - name: gift
    operation: airdrop
    caller: %[2]s
    account: %[1]s
    tokens: 500
  - name: too-big
    operation: buy
    account: %[1]s
    amount_sol: "100"
`, buyer, admin)
	require.NoError(t, os.WriteFile(orders, []byte(body), 0o600))

	out, err := runCLI(t, cfg, "batch", orders, "--workers", "1")
	require.Error(t, err)
	assert.Contains(t, out, "OK   first-buy")
	assert.Contains(t, out, "OK   gift")
	assert.Contains(t, out, "FAIL too-big")
	assert.Contains(t, out, "2 succeeded, 1 failed")
}
