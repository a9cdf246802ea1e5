package cli

import (
	"context"
	"fmt"

	"github.com/rovshanmuradov/curvesale/internal/app"
	"github.com/rovshanmuradov/curvesale/internal/batch"
	"github.com/rovshanmuradov/curvesale/internal/engine"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/spf13/cobra"
)

func solString(lamports uint64) string {
	return batch.LamportsToSol(lamports)
}

func bpsGuard(expected, bps uint64) uint64 {
	return types.CalculateMinAmountOut(expected, types.SlippageConfig{Type: types.SlippageBps, Value: bps})
}

func newBuyCommand(e *env) *cobra.Command {
	var buyer identityFlag
	var sol solFlag
	var minTokens, slippageBps uint64
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy tokens at the current curve price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				req := engine.BuyRequest{Buyer: buyer.id, SolAmount: sol.lamports, MinTokensOut: minTokens}
				if req.MinTokensOut == 0 && slippageBps > 0 {
					q, err := a.Program.QuoteBuy(ctx, buyer.id, sol.lamports)
					if err != nil {
						return err
					}
					req.MinTokensOut = bpsGuard(q.TokenAmount, slippageBps)
				}

				r, err := a.Program.BuyTokens(ctx, req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "bought %d tokens for %s SOL at price %d\n", r.TokenAmount, solString(r.SolAmount), r.Price)
				fmt.Fprintf(out, "fee %s SOL (referrer %s, protocol %s)\n",
					solString(r.Fee), solString(r.ReferrerShare), solString(r.ProtocolShare))
				if r.MigrationReady {
					fmt.Fprintln(out, "migration window reached")
				}
				return nil
			})
		},
	}
	identityVar(cmd, &buyer, "buyer", "paying account", true)
	solVar(cmd, &sol, "sol", "amount to spend in SOL", true)
	cmd.Flags().Uint64Var(&minTokens, "min-tokens", 0, "reject fills below this many tokens")
	cmd.Flags().Uint64Var(&slippageBps, "slippage-bps", 0, "derive --min-tokens from a quote with this tolerance")
	return cmd
}

func newSellCommand(e *env) *cobra.Command {
	var seller identityFlag
	var minSol solFlag
	var tokens, slippageBps uint64
	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Sell tokens back to the curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				req := engine.SellRequest{Seller: seller.id, TokenAmount: tokens, MinSolOut: minSol.lamports}
				if req.MinSolOut == 0 && slippageBps > 0 {
					q, err := a.Program.QuoteSell(ctx, tokens)
					if err != nil {
						return err
					}
					req.MinSolOut = bpsGuard(q.SolAmount, slippageBps)
				}

				r, err := a.Program.SellTokens(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "sold %d tokens for %s SOL at price %d\n",
					r.TokenAmount, solString(r.SolAmount), r.Price)
				return nil
			})
		},
	}
	identityVar(cmd, &seller, "seller", "token holder", true)
	cmd.Flags().Uint64Var(&tokens, "tokens", 0, "token base units to sell")
	_ = cmd.MarkFlagRequired("tokens")
	solVar(cmd, &minSol, "min-sol", "reject payouts below this many SOL", false)
	cmd.Flags().Uint64Var(&slippageBps, "slippage-bps", 0, "derive --min-sol from a quote with this tolerance")
	return cmd
}

func newSetReferralCommand(e *env) *cobra.Command {
	var user, referrer identityFlag
	cmd := &cobra.Command{
		Use:   "set-referral",
		Short: "Bind a user to a referrer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Program.SetReferral(ctx, user.id, referrer.id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s referred by %s\n", user.id, referrer.id)
				return nil
			})
		},
	}
	identityVar(cmd, &user, "user", "referred user", true)
	identityVar(cmd, &referrer, "referrer", "account earning the referral fee", true)
	return cmd
}

func newFundCommand(e *env) *cobra.Command {
	var account identityFlag
	var sol solFlag
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Credit SOL to an account of the local ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Store.Fund(ctx, account.id, sol.lamports); err != nil {
					return err
				}
				bal, err := a.Store.Balance(ctx, account.id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s balance %s SOL\n", account.id, solString(bal))
				return nil
			})
		},
	}
	identityVar(cmd, &account, "account", "account to credit", true)
	solVar(cmd, &sol, "sol", "amount in SOL", true)
	return cmd
}

func newBalanceCommand(e *env) *cobra.Command {
	var account identityFlag
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the SOL and token balance of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				lamports, err := a.Store.Balance(ctx, account.id)
				if err != nil {
					return err
				}
				tokens, err := a.Store.TokenBalance(ctx, account.id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "account: %s\n", account.id)
				fmt.Fprintf(out, "sol:     %s\n", solString(lamports))
				fmt.Fprintf(out, "tokens:  %d\n", tokens)
				return nil
			})
		},
	}
	identityVar(cmd, &account, "account", "account to inspect", true)
	return cmd
}
