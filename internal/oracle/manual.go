// internal/oracle/manual.go
package oracle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Manual is an oracle fed by an operator.
type Manual struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewManual() *Manual {
	return &Manual{quotes: make(map[string]Quote)}
}

// Set records a price for pair published at ts.
func (m *Manual) Set(pair string, price decimal.Decimal, ts time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[pair] = Quote{Price: price, PublishTime: ts, Source: "manual"}
}

func (m *Manual) Latest(_ context.Context, pair string) (Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quotes[pair]
	if !ok {
		return Quote{}, fmt.Errorf("no manual quote for %s", pair)
	}
	return q, nil
}
