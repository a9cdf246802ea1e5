// internal/batch/runner.go
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rovshanmuradov/curvesale/internal/engine"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one order.
type Result struct {
	Order    Order
	Err      error
	Code     int
	Lamports uint64
	Tokens   uint64
	Elapsed  time.Duration
}

// Summary aggregates a run.
type Summary struct {
	Results   []Result
	Succeeded int
	Failed    int
}

// Runner executes orders against a program with a bounded worker pool. A
// failed order never stops the others; a cancelled context does.
type Runner struct {
	program *engine.Program
	workers int
	logger  *zap.Logger
}

func NewRunner(program *engine.Program, workers int, logger *zap.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{program: program, workers: workers, logger: logger.Named("batch")}
}

// Run executes every order and returns results in input order.
func (r *Runner) Run(ctx context.Context, orders []Order) (*Summary, error) {
	results := make([]Result, len(orders))
	var mu sync.Mutex
	summary := &Summary{}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range orders {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			res := r.execute(gCtx, orders[i])
			results[i] = res

			mu.Lock()
			if res.Err == nil {
				summary.Succeeded++
			} else {
				summary.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.Results = results
	r.logger.Info("Batch finished",
		zap.Int("orders", len(orders)),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func (r *Runner) execute(ctx context.Context, o Order) Result {
	start := time.Now()
	res := Result{Order: o}
	logger := r.logger.With(zap.String("order", o.Name), zap.String("operation", string(o.Operation)))

	switch o.Operation {
	case OperationBuy:
		res.Lamports, res.Tokens, res.Err = r.buy(ctx, o)
	case OperationSell:
		res.Lamports, res.Tokens, res.Err = r.sell(ctx, o)
	case OperationSetReferral:
		res.Err = r.program.SetReferral(ctx, o.Account, o.Referrer)
	case OperationAirdrop:
		res.Tokens = o.Tokens
		res.Err = r.program.AirdropTokens(ctx, o.Caller, o.Account, o.Tokens)
	default:
		res.Err = fmt.Errorf("%w: operation %q", types.ErrInvalidParameter, o.Operation)
	}

	res.Elapsed = time.Since(start)
	res.Code = types.Code(res.Err)
	if res.Err != nil {
		logger.Warn("Order failed", zap.Int("code", res.Code), zap.Error(res.Err))
	} else {
		logger.Info("Order executed",
			zap.Uint64("lamports", res.Lamports),
			zap.Uint64("tokens", res.Tokens),
			zap.Duration("elapsed", res.Elapsed))
	}
	return res
}

func (r *Runner) buy(ctx context.Context, o Order) (uint64, uint64, error) {
	var minOut uint64
	if o.Slippage.Type == types.SlippageBps {
		q, err := r.program.QuoteBuy(ctx, o.Account, o.Lamports)
		if err != nil {
			return 0, 0, err
		}
		minOut = types.CalculateMinAmountOut(q.TokenAmount, o.Slippage)
	} else {
		minOut = types.CalculateMinAmountOut(0, o.Slippage)
	}
	receipt, err := r.program.BuyTokens(ctx, engine.BuyRequest{Buyer: o.Account, SolAmount: o.Lamports, MinTokensOut: minOut})
	if err != nil {
		return 0, 0, err
	}
	return receipt.SolAmount, receipt.TokenAmount, nil
}

func (r *Runner) sell(ctx context.Context, o Order) (uint64, uint64, error) {
	var minOut uint64
	if o.Slippage.Type == types.SlippageBps {
		q, err := r.program.QuoteSell(ctx, o.Tokens)
		if err != nil {
			return 0, 0, err
		}
		minOut = types.CalculateMinAmountOut(q.SolAmount, o.Slippage)
	} else {
		minOut = types.CalculateMinAmountOut(0, o.Slippage)
	}
	receipt, err := r.program.SellTokens(ctx, engine.SellRequest{Seller: o.Account, TokenAmount: o.Tokens, MinSolOut: minOut})
	if err != nil {
		return 0, 0, err
	}
	return receipt.SolAmount, receipt.TokenAmount, nil
}
