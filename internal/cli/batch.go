package cli

import (
	"context"
	"fmt"

	"github.com/rovshanmuradov/curvesale/internal/app"
	"github.com/rovshanmuradov/curvesale/internal/batch"
	"github.com/spf13/cobra"
)

func newBatchCommand(e *env) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Execute the orders of a YAML batch file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(ctx context.Context, a *app.App) error {
				orders, err := batch.NewLoader(a.Logger.Logger).Load(args[0])
				if err != nil {
					return err
				}
				if workers <= 0 {
					workers = a.Config.Batch.Workers
				}

				summary, err := batch.NewRunner(a.Program, workers, a.Logger.Logger).Run(ctx, orders)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, r := range summary.Results {
					if r.Err != nil {
						fmt.Fprintf(out, "FAIL %-20s %-12s [%d] %v\n", r.Order.Name, r.Order.Operation, r.Code, r.Err)
						continue
					}
					fmt.Fprintf(out, "OK   %-20s %-12s sol=%s tokens=%d\n",
						r.Order.Name, r.Order.Operation, solString(r.Lamports), r.Tokens)
				}
				fmt.Fprintf(out, "%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
				if summary.Failed > 0 {
					return fmt.Errorf("%d of %d orders failed", summary.Failed, len(orders))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel workers (default batch.workers)")
	return cmd
}
