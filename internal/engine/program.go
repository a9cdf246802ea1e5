// internal/engine/program.go
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/rovshanmuradov/curvesale/internal/host"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/migration"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"go.uber.org/zap"
)

// Program is the sale engine. Every mutating call runs serialized against a
// clone of the state inside one host transaction; the clone replaces the live
// state only when the transaction commits, and events are emitted afterwards.
type Program struct {
	mu     sync.Mutex
	params Params
	host   host.Host
	gate   *migration.Gate
	sink   events.Sink
	clock  func() time.Time
	logger *zap.Logger
	state  *ledger.State
}

// Option configures a Program.
type Option func(*Program)

func WithSink(sink events.Sink) Option {
	return func(p *Program) { p.sink = sink }
}

func WithClock(clock func() time.Time) Option {
	return func(p *Program) { p.clock = clock }
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Program) { p.logger = logger }
}

// New loads the committed state from h and returns a ready program.
func New(ctx context.Context, h host.Host, gate *migration.Gate, params Params, opts ...Option) (*Program, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	p := &Program{
		params: params,
		host:   h,
		gate:   gate,
		sink:   events.NopSink{},
		clock:  time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("engine")
	if p.gate == nil {
		p.gate = migration.NewGate(nil, nil)
	}

	st, err := h.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	p.state = st
	return p, nil
}

// Params returns the active protocol parameters.
func (p *Program) Params() Params {
	return p.params
}

// call is the scratch space of one operation.
type call struct {
	st      *ledger.State
	tx      host.Tx
	now     time.Time
	pending []events.Event
}

func (c *call) emit(e events.Event) {
	c.pending = append(c.pending, e)
}

func (c *call) base(t events.EventType) events.BaseEvent {
	return events.NewBase(t, c.now)
}

// run executes fn atomically. On any error the clone and the host
// transaction are discarded.
func (p *Program) run(ctx context.Context, op string, fn func(ctx context.Context, c *call) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.clock()
	c := &call{st: p.state.Clone(), now: start}
	err := p.host.Atomic(ctx, func(tx host.Tx) error {
		c.tx = tx
		if err := fn(ctx, c); err != nil {
			return err
		}
		return tx.SaveState(ctx, c.st)
	})
	if err != nil {
		p.logger.Debug("Operation rejected",
			zap.String("operation", op),
			zap.Int("code", types.Code(err)),
			zap.Error(err))
		return err
	}

	p.state = c.st
	for _, e := range c.pending {
		p.sink.Emit(e)
	}
	p.logger.Info("Operation committed",
		zap.String("operation", op),
		zap.Int("events", len(c.pending)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// view runs fn against the live state under the program lock.
func (p *Program) view(fn func(st *ledger.State) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p.state)
}

// Snapshot returns a deep copy of the committed state.
func (p *Program) Snapshot() *ledger.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

// MigrationReady reports whether the committed state sits inside the
// migration window.
func (p *Program) MigrationReady(ctx context.Context) bool {
	st := p.Snapshot()
	return p.gate.Probe(ctx, st)
}

// Reload replaces the in-memory state with the host's committed copy.
func (p *Program) Reload(ctx context.Context) error {
	st, err := p.host.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	p.mu.Lock()
	p.state = st
	p.mu.Unlock()
	return nil
}
