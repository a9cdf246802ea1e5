package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckFresh(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	max := 300 * time.Second

	q := Quote{PublishTime: now.Add(-max), Source: "test"}
	assert.NoError(t, CheckFresh(q, now, max))

	q.PublishTime = now.Add(-max - time.Second)
	assert.ErrorIs(t, CheckFresh(q, now, max), types.ErrStalePrice)

	// A publish time ahead of the local clock is fresh.
	q.PublishTime = now.Add(time.Minute)
	assert.NoError(t, CheckFresh(q, now, max))
}

func TestManualOracle(t *testing.T) {
	m := NewManual()
	_, err := m.Latest(context.Background(), PairSolUsd)
	assert.Error(t, err)

	ts := time.Unix(1_700_000_000, 0)
	m.Set(PairSolUsd, decimal.NewFromFloat(142.5), ts)
	q, err := m.Latest(context.Background(), PairSolUsd)
	require.NoError(t, err)
	assert.True(t, q.Price.Equal(decimal.RequireFromString("142.5")))
	assert.Equal(t, ts, q.PublishTime)
}

func TestHTTPOracleRetriesAndParses(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "/price/SOL/USD", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"price":"151.25","publish_time":1700000000}}`))
	}))
	defer srv.Close()

	o := NewHTTP(HTTPConfig{
		URL:       srv.URL + "/price/{pair}",
		PricePath: "data.price",
		TimePath:  "data.publish_time",
	}, zap.NewNop())

	q, err := o.Latest(context.Background(), PairSolUsd)
	require.NoError(t, err)
	assert.Equal(t, "151.25", q.Price.String())
	assert.Equal(t, int64(1_700_000_000), q.PublishTime.Unix())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPOracleBadPayloadIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"data":{"price":"-1","publish_time":1}}`))
	}))
	defer srv.Close()

	o := NewHTTP(HTTPConfig{URL: srv.URL, PricePath: "data.price", TimePath: "data.publish_time"}, zap.NewNop())
	_, err := o.Latest(context.Background(), PairSolUsd)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
