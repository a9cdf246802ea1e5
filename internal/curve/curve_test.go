package curve

import (
	"math"
	"math/rand"
	"testing"

	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceTwoPointCurve(t *testing.T) {
	cfg, err := NewConfig([]uint64{100, 200}, 1000)
	require.NoError(t, err)

	tests := []struct {
		supply uint64
		want   uint64
	}{
		{0, 100},
		{1, 100},
		{250, 150},
		{499, 199},
		{500, 200},
		{999, 200},
		{1000, 200},
		{math.MaxUint64, 200},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.Price(tt.supply), "price(%d)", tt.supply)
	}
}

func TestPriceMultiSegment(t *testing.T) {
	cfg, err := NewConfig([]uint64{10, 20, 20, 50}, 400)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), cfg.SegmentWidth())

	assert.Equal(t, uint64(10), cfg.Price(0))
	assert.Equal(t, uint64(15), cfg.Price(50))
	assert.Equal(t, uint64(20), cfg.Price(100))
	assert.Equal(t, uint64(20), cfg.Price(150))
	assert.Equal(t, uint64(35), cfg.Price(250))
	assert.Equal(t, uint64(50), cfg.Price(300))
	assert.Equal(t, uint64(50), cfg.Price(400))
}

func TestPriceUnevenWidthClampsRemainder(t *testing.T) {
	// 1001/3 leaves a remainder past the last segment start; it must stay flat.
	cfg, err := NewConfig([]uint64{1, 2, 3}, 1001)
	require.NoError(t, err)
	assert.Equal(t, uint64(333), cfg.SegmentWidth())
	assert.Equal(t, uint64(3), cfg.Price(999))
	assert.Equal(t, uint64(3), cfg.Price(1000))
	assert.Equal(t, uint64(3), cfg.Price(1001))
}

func TestPriceMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	points := make([]uint64, 50)
	cur := uint64(1 + rng.Intn(1000))
	for i := range points {
		cur += uint64(rng.Intn(1_000_000))
		points[i] = cur
	}
	cfg, err := NewConfig(points, types.DefaultTotalSupply)
	require.NoError(t, err)

	prev := uint64(0)
	for i := 0; i < 10_000; i++ {
		s := uint64(i) * (types.DefaultTotalSupply / 9_999)
		p := cfg.Price(s)
		require.GreaterOrEqual(t, p, prev, "price dropped at supply %d", s)
		prev = p
	}
	assert.Equal(t, points[len(points)-1], cfg.Price(types.DefaultTotalSupply))
}

func TestPriceLargeValuesDoNotOverflow(t *testing.T) {
	cfg, err := NewConfig([]uint64{1, math.MaxUint64}, types.DefaultTotalSupply)
	require.NoError(t, err)

	half := cfg.SegmentWidth() / 2
	got := cfg.Price(half)
	assert.Equal(t, uint64(1)+(math.MaxUint64-1)/2, got)
}

func TestNewConfigValidation(t *testing.T) {
	tooMany := make([]uint64, types.MaxPricePoints+1)
	for i := range tooMany {
		tooMany[i] = uint64(i + 1)
	}

	tests := []struct {
		name   string
		points []uint64
		supply uint64
		want   error
	}{
		{"empty", nil, 1000, types.ErrInvalidParameter},
		{"single point", []uint64{5}, 1000, types.ErrInvalidParameter},
		{"decreasing", []uint64{5, 4}, 1000, types.ErrInvalidParameter},
		{"zero start", []uint64{0, 4}, 1000, types.ErrInvalidParameter},
		{"supply below points", []uint64{1, 2, 3}, 2, types.ErrInvalidParameter},
		{"too many", tooMany, types.DefaultTotalSupply, types.ErrTooManyPricePoints},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.points, tt.supply)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	cfg, err := NewConfig(tooMany[:types.MaxPricePoints], types.DefaultTotalSupply)
	require.NoError(t, err)
	assert.Len(t, cfg.Points(), types.MaxPricePoints)
}

func TestConfigPointsIsCopy(t *testing.T) {
	src := []uint64{1, 2}
	cfg, err := NewConfig(src, 10)
	require.NoError(t, err)

	src[0] = 99
	pts := cfg.Points()
	pts[1] = 77
	assert.Equal(t, []uint64{1, 2}, cfg.Points())
}
