// internal/storage/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rovshanmuradov/curvesale/internal/curve"
	"github.com/rovshanmuradov/curvesale/internal/host"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/storage"
	"github.com/rovshanmuradov/curvesale/internal/types"
)

var _ storage.Store = (*Store)(nil)

// Store keeps balances and encoded records in process memory. A transaction
// works on copies that replace the committed maps only on success.
type Store struct {
	mu      sync.Mutex
	addrs   *types.Addresses
	lamport map[types.Identity]uint64
	tokens  map[types.Identity]uint64
	records map[string]ledger.Record
}

// New returns an empty store that derives record addresses from addrs.
func New(addrs *types.Addresses) *Store {
	return &Store{
		addrs:   addrs,
		lamport: make(map[types.Identity]uint64),
		tokens:  make(map[types.Identity]uint64),
		records: make(map[string]ledger.Record),
	}
}

// Atomic runs fn against a private copy of the store.
func (s *Store) Atomic(ctx context.Context, fn func(tx host.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		addrs:   s.addrs,
		lamport: copyMap(s.lamport),
		tokens:  copyMap(s.tokens),
		records: s.records,
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.lamport = tx.lamport
	s.tokens = tx.tokens
	s.records = tx.records
	return nil
}

// LoadState decodes the committed records.
func (s *Store) LoadState(_ context.Context) (*ledger.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.DecodeState(recordList(s.records))
}

func (s *Store) Fund(_ context.Context, owner types.Identity, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := curve.SafeAdd(s.lamport[owner], amount)
	if err != nil {
		return fmt.Errorf("failed to fund %s: %w", owner, err)
	}
	s.lamport[owner] = next
	return nil
}

func (s *Store) Balance(_ context.Context, owner types.Identity) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lamport[owner], nil
}

func (s *Store) TokenBalance(_ context.Context, owner types.Identity) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[owner], nil
}

func (s *Store) TokenSupply(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total uint64
	for _, v := range s.tokens {
		total += v
	}
	return total, nil
}

func (s *Store) Records(_ context.Context) ([]ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return recordList(s.records), nil
}

func (s *Store) Close() error { return nil }

type memTx struct {
	addrs   *types.Addresses
	lamport map[types.Identity]uint64
	tokens  map[types.Identity]uint64
	records map[string]ledger.Record
}

func (t *memTx) Transfer(_ context.Context, from, to types.Identity, amount uint64) error {
	if t.lamport[from] < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", host.ErrInsufficientFunds, from, t.lamport[from], amount)
	}
	next, err := curve.SafeAdd(t.lamport[to], amount)
	if err != nil {
		return err
	}
	t.lamport[from] -= amount
	t.lamport[to] = next
	return nil
}

func (t *memTx) Balance(_ context.Context, owner types.Identity) (uint64, error) {
	return t.lamport[owner], nil
}

func (t *memTx) MintTo(_ context.Context, to types.Identity, amount uint64) error {
	next, err := curve.SafeAdd(t.tokens[to], amount)
	if err != nil {
		return err
	}
	t.tokens[to] = next
	return nil
}

func (t *memTx) Burn(_ context.Context, from types.Identity, amount uint64) error {
	if t.tokens[from] < amount {
		return fmt.Errorf("%w: %s holds %d, burning %d", host.ErrInsufficientTokens, from, t.tokens[from], amount)
	}
	t.tokens[from] -= amount
	return nil
}

func (t *memTx) TokenBalance(_ context.Context, owner types.Identity) (uint64, error) {
	return t.tokens[owner], nil
}

func (t *memTx) SaveState(_ context.Context, st *ledger.State) error {
	recs, err := ledger.EncodeState(st)
	if err != nil {
		return err
	}
	next := make(map[string]ledger.Record, len(recs))
	for _, r := range recs {
		addr, err := r.Address(t.addrs)
		if err != nil {
			return fmt.Errorf("failed to derive %s address: %w", r.Kind, err)
		}
		next[addr.String()] = r
	}
	t.records = next
	return nil
}

func copyMap(m map[types.Identity]uint64) map[types.Identity]uint64 {
	out := make(map[types.Identity]uint64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func recordList(m map[string]ledger.Record) []ledger.Record {
	out := make([]ledger.Record, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	return out
}
