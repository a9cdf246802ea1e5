package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rovshanmuradov/curvesale/internal/app"
	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/rovshanmuradov/curvesale/internal/migration"
	"github.com/spf13/cobra"
)

func newPriceCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "price",
		Short: "Show the current unit price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				price, err := a.Program.CalculateCurrentPrice(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\n", price)
				return nil
			})
		},
	}
}

func newQuoteCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Preview a buy or a sell without committing it",
	}

	var buyer identityFlag
	var sol solFlag
	buy := &cobra.Command{
		Use:   "buy",
		Short: "Preview a purchase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				if !buyer.set {
					tokens, err := a.Program.CalculateTokensForSol(ctx, sol.lamports)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "tokens: %d\n", tokens)
					return nil
				}
				q, err := a.Program.QuoteBuy(ctx, buyer.id, sol.lamports)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "tokens:   %d\n", q.TokenAmount)
				fmt.Fprintf(out, "price:    %d\n", q.Price)
				fmt.Fprintf(out, "fee:      %s SOL\n", solString(q.Fee))
				fmt.Fprintf(out, "net:      %s SOL\n", solString(q.NetSol))
				if q.HasReferrer {
					fmt.Fprintf(out, "referrer: %s (%s SOL)\n", q.Referrer, solString(q.ReferrerShare))
				}
				return nil
			})
		},
	}
	identityVar(buy, &buyer, "buyer", "buyer whose referral applies (omit for a fee-free projection)", false)
	solVar(buy, &sol, "sol", "amount to spend in SOL", true)

	var tokens uint64
	sell := &cobra.Command{
		Use:   "sell",
		Short: "Preview a sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				q, err := a.Program.QuoteSell(ctx, tokens)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "sol:   %s\nprice: %d\n", solString(q.SolAmount), q.Price)
				return nil
			})
		},
	}
	sell.Flags().Uint64Var(&tokens, "tokens", 0, "token base units to sell")
	_ = sell.MarkFlagRequired("tokens")

	cmd.AddCommand(buy, sell)
	return cmd
}

func newStatusCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the sale state and migration progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				st := a.Program.Snapshot()
				out := cmd.OutOrStdout()
				if st.Mint == nil {
					fmt.Fprintln(out, "mint:       not initialized")
					return nil
				}
				fmt.Fprintf(out, "mint:       %s\n", st.Mint.Mint)
				fmt.Fprintf(out, "admin:      %s\n", st.Admin.Admin)
				if pending, ok := st.Admin.PendingAdmin(); ok {
					fmt.Fprintf(out, "pending:    %s\n", pending)
				}
				fmt.Fprintf(out, "state:      %s\n", st.Admin.Run)
				if st.Curve == nil {
					fmt.Fprintln(out, "curve:      not initialized")
					return nil
				}
				fmt.Fprintf(out, "curve:      %d points, price %d\n", len(st.Curve.Points()), st.Curve.Price(st.Supply.TotalSoldSupply))
				fmt.Fprintf(out, "sold:       %d\n", st.Supply.TotalSoldSupply)
				fmt.Fprintf(out, "airdropped: %d\n", st.Airdrop.TotalAirdropped)
				fmt.Fprintf(out, "remaining:  %d\n", st.Remaining())
				fmt.Fprintf(out, "raised:     %s SOL\n", solString(st.Supply.TotalRaised))
				fmt.Fprintf(out, "referrals:  %d\n", len(st.Referrals))
				fmt.Fprintf(out, "status:     %s\n", st.Supply.Status)
				fmt.Fprintf(out, "migration:  %s policy, %.1f%%\n",
					a.Policy.Name(), migration.Progress(a.Policy, st.Supply)*100)
				if st.Migration != nil {
					fmt.Fprintf(out, "pool:       %s\n", st.Migration.Pool)
				}
				return nil
			})
		},
	}
}

func newAuditCommand(e *env) *cobra.Command {
	var eventType string
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recorded events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				if a.Audit == nil {
					return errors.New("audit trail needs a SQL store")
				}
				entries, err := a.Audit.AuditTrail(ctx, events.EventType(eventType), limit, offset)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, entry := range entries {
					fmt.Fprintf(out, "%s %-26s %s\n",
						entry.OccurredAt.UTC().Format(time.RFC3339), entry.EventType, entry.Payload)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&eventType, "type", "", "only this event type, e.g. purchase.recorded")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "entries to skip")
	return cmd
}
