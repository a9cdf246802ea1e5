package cli

import (
	"context"
	"fmt"

	"github.com/rovshanmuradov/curvesale/internal/app"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/spf13/cobra"
)

func newInitMintCommand(e *env) *cobra.Command {
	var admin, mint, treasury, reserve identityFlag
	cmd := &cobra.Command{
		Use:   "init-mint",
		Short: "Create the sale mint and name the first admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				cfg := ledger.MintConfig{Mint: mint.id, Treasury: treasury.id, Reserve: reserve.id}
				if err := a.Program.InitializeMint(ctx, admin.id, cfg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "mint %s initialized, admin %s\n", mint.id, admin.id)
				return nil
			})
		},
	}
	identityVar(cmd, &admin, "admin", "initial admin", true)
	identityVar(cmd, &mint, "mint", "token mint", true)
	identityVar(cmd, &treasury, "treasury", "account receiving protocol fees", true)
	identityVar(cmd, &reserve, "reserve", "account holding the sale proceeds", true)
	return cmd
}

func newInitCurveCommand(e *env) *cobra.Command {
	var admin identityFlag
	var points []uint
	cmd := &cobra.Command{
		Use:   "init-curve",
		Short: "Set the bonding-curve price points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pts := make([]uint64, len(points))
			for i, p := range points {
				pts[i] = uint64(p)
			}
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Program.InitializeBondingCurve(ctx, admin.id, pts); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "bonding curve initialized with %d price points\n", len(pts))
				return nil
			})
		},
	}
	identityVar(cmd, &admin, "admin", "current admin", true)
	cmd.Flags().UintSliceVar(&points, "points", nil, "comma separated price points in lamports per token")
	_ = cmd.MarkFlagRequired("points")
	return cmd
}

func newTransferAdminCommand(e *env) *cobra.Command {
	var admin, next identityFlag
	cmd := &cobra.Command{
		Use:   "transfer-admin",
		Short: "Propose a new admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Program.TransferAdmin(ctx, admin.id, next.id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admin transfer to %s pending acceptance\n", next.id)
				return nil
			})
		},
	}
	identityVar(cmd, &admin, "admin", "current admin", true)
	identityVar(cmd, &next, "to", "proposed admin", true)
	return cmd
}

func newAcceptAdminCommand(e *env) *cobra.Command {
	var caller identityFlag
	cmd := &cobra.Command{
		Use:   "accept-admin",
		Short: "Accept a pending admin transfer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Program.AcceptAdmin(ctx, caller.id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now admin\n", caller.id)
				return nil
			})
		},
	}
	identityVar(cmd, &caller, "admin", "proposed admin accepting the role", true)
	return cmd
}

func newPauseCommand(e *env, paused bool) *cobra.Command {
	var admin identityFlag
	use, short := "pause", "Pause buys, sells, referrals, airdrops and migration"
	if !paused {
		use, short = "resume", "Resume a paused protocol"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Program.SetPauseState(ctx, admin.id, paused); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "protocol %s\n", a.Program.Snapshot().Admin.Run)
				return nil
			})
		},
	}
	identityVar(cmd, &admin, "admin", "current admin", true)
	return cmd
}

func newUpdateReferralFeeCommand(e *env) *cobra.Command {
	var admin, user identityFlag
	var bps uint64
	cmd := &cobra.Command{
		Use:   "update-referral-fee",
		Short: "Change the referral fee of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Program.UpdateReferralFee(ctx, admin.id, user.id, bps); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "referral fee of %s set to %d bps\n", user.id, bps)
				return nil
			})
		},
	}
	identityVar(cmd, &admin, "admin", "current admin", true)
	identityVar(cmd, &user, "user", "referred user", true)
	cmd.Flags().Uint64Var(&bps, "bps", 0, "new fee in basis points")
	_ = cmd.MarkFlagRequired("bps")
	return cmd
}

func newAirdropCommand(e *env) *cobra.Command {
	var admin, recipient identityFlag
	var amount uint64
	cmd := &cobra.Command{
		Use:   "airdrop",
		Short: "Mint tokens to a recipient outside the sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Program.AirdropTokens(ctx, admin.id, recipient.id, amount); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "airdropped %d tokens to %s\n", amount, recipient.id)
				return nil
			})
		},
	}
	identityVar(cmd, &admin, "admin", "current admin", true)
	identityVar(cmd, &recipient, "recipient", "token recipient", true)
	cmd.Flags().Uint64Var(&amount, "amount", 0, "token base units")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newMigrateCommand(e *env) *cobra.Command {
	var admin identityFlag
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Move the raise into a liquidity pool and close the sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				rec, err := a.Program.MigrateToVenue(ctx, admin.id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "migrated %s SOL and %d tokens\n", solString(rec.TotalRaised), rec.TotalSoldSupply)
				fmt.Fprintf(out, "pool:      %s\n", rec.Pool)
				fmt.Fprintf(out, "fee key:   %s\n", rec.FeeKey)
				fmt.Fprintf(out, "signature: %s\n", rec.Signature)
				return nil
			})
		},
	}
	identityVar(cmd, &admin, "admin", "current admin", true)
	return cmd
}
