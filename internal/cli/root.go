// Package cli is the command line front end of the sale program.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rovshanmuradov/curvesale/internal/app"
	"github.com/rovshanmuradov/curvesale/internal/config"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is stamped at build time.
var Version = "0.1.0-dev"

// exitCodeBase offsets taxonomy errors so they never collide with 1 (generic
// failure) or 2 (usage).
const exitCodeBase = 10

// env carries the global flags into every command.
type env struct {
	configFile string
	dsn        string
	verbose    bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:   "curvesale",
		Short: "curvesale - bonding-curve token sale ledger",
		Long: `curvesale runs the accounting program of a bonding-curve token sale:
mint and curve setup, buys and sells priced on a piecewise linear curve, referral
fees, airdrops, admin handoff and the one-way migration to a liquidity pool.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&e.configFile, "config", "c", "", "configuration file path (YAML, JSON or TOML)")
	root.PersistentFlags().StringVar(&e.dsn, "dsn", "", "override storage.dsn")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "log to the console as well as the log file")

	root.AddCommand(
		newInitMintCommand(e),
		newInitCurveCommand(e),
		newTransferAdminCommand(e),
		newAcceptAdminCommand(e),
		newPauseCommand(e, true),
		newPauseCommand(e, false),
		newUpdateReferralFeeCommand(e),
		newAirdropCommand(e),
		newMigrateCommand(e),
		newBuyCommand(e),
		newSellCommand(e),
		newSetReferralCommand(e),
		newFundCommand(e),
		newBalanceCommand(e),
		newPriceCommand(e),
		newQuoteCommand(e),
		newStatusCommand(e),
		newBatchCommand(e),
		newAuditCommand(e),
	)
	return root
}

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		code := types.Code(err)
		if code > 1 {
			fmt.Fprintf(os.Stderr, "Error [%d]: %v\n", code, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return ExitCode(err)
	}
	return 0
}

// ExitCode maps an error to a process exit status. Taxonomy errors get a
// stable status per kind; anything else exits with 1.
func ExitCode(err error) int {
	code := types.Code(err)
	switch {
	case code == 0:
		return 0
	case code == 1:
		return 1
	default:
		return exitCodeBase + code - types.Code(types.ErrUnauthorized)
	}
}

func (e *env) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(e.configFile)
	if err != nil {
		return nil, err
	}
	if e.dsn != "" {
		cfg.Storage.DSN = e.dsn
	}
	if !e.verbose {
		cfg.Log.Console = "none"
	}
	return cfg, nil
}

// run opens the application, hands it to fn and closes it, draining pending
// events into the audit handlers.
func (e *env) run(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}

	err = fn(ctx, a)
	if err != nil {
		a.Logger.Debug("Command failed",
			zap.String("command", cmd.Name()),
			zap.Int("code", types.Code(err)),
			zap.Error(err))
	}
	if cerr := a.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
