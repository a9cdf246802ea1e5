// internal/curve/curve.go
package curve

import (
	"fmt"

	"github.com/rovshanmuradov/curvesale/internal/types"
)

// Config is an immutable piecewise-linear price schedule over a fixed supply.
type Config struct {
	points      []uint64
	totalSupply uint64
}

// NewConfig validates the price points and builds a curve over totalSupply
// token base units.
func NewConfig(points []uint64, totalSupply uint64) (*Config, error) {
	n := len(points)
	if n < 2 {
		return nil, fmt.Errorf("%w: curve needs at least 2 price points, got %d", types.ErrInvalidParameter, n)
	}
	if n > types.MaxPricePoints {
		return nil, fmt.Errorf("%w: %d > %d", types.ErrTooManyPricePoints, n, types.MaxPricePoints)
	}
	if points[0] == 0 {
		return nil, fmt.Errorf("%w: first price point must be positive", types.ErrInvalidParameter)
	}
	for i := 1; i < n; i++ {
		if points[i] < points[i-1] {
			return nil, fmt.Errorf("%w: price point %d (%d) is below point %d (%d)",
				types.ErrInvalidParameter, i, points[i], i-1, points[i-1])
		}
	}
	if totalSupply < uint64(n) {
		return nil, fmt.Errorf("%w: total supply %d smaller than point count %d",
			types.ErrInvalidParameter, totalSupply, n)
	}

	cp := make([]uint64, n)
	copy(cp, points)
	return &Config{points: cp, totalSupply: totalSupply}, nil
}

// Points returns a copy of the price points.
func (c *Config) Points() []uint64 {
	cp := make([]uint64, len(c.points))
	copy(cp, c.points)
	return cp
}

func (c *Config) TotalSupply() uint64 {
	return c.totalSupply
}

// SegmentWidth is the number of base units covered by one segment.
func (c *Config) SegmentWidth() uint64 {
	return c.totalSupply / uint64(len(c.points))
}

// Price returns the unit price at the given cumulative supply. Interpolation
// floors, and every supply at or past the last segment start prices at the
// last point.
func (c *Config) Price(supply uint64) uint64 {
	n := uint64(len(c.points))
	w := c.SegmentWidth()

	m := supply / w
	if m >= n-1 {
		return c.points[n-1]
	}

	lo, hi := c.points[m], c.points[m+1]
	// r < w, so the delta is bounded by hi-lo.
	delta, _ := MulDiv(hi-lo, supply%w, w)
	return lo + delta
}
