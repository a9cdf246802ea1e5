package audit

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var at = time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriterJournalsTrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "trades.csv")
	w, err := NewCSVWriter(path, time.Hour, zap.NewNop())
	require.NoError(t, err)

	buyer, ref := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	ctx := context.Background()
	require.NoError(t, w.Handle(ctx, &events.PurchaseEvent{
		BaseEvent:     events.NewBase(events.PurchaseRecorded, at),
		Buyer:         buyer,
		Referrer:      ref,
		SolAmount:     100_000,
		NetSol:        99_000,
		ReferrerShare: 500,
		ProtocolShare: 500,
		TokenAmount:   990,
		Price:         100,
	}))
	require.NoError(t, w.Handle(ctx, &events.PriceEvent{BaseEvent: events.NewBase(events.PriceCalculated, at)}))
	require.NoError(t, w.Handle(ctx, &events.SaleEvent{
		BaseEvent:   events.NewBase(events.SaleRecorded, at),
		Seller:      buyer,
		TokenAmount: 10,
		SolAmount:   1_000,
		Price:       100,
	}))
	require.NoError(t, w.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, JournalHeader, rows[0])
	assert.Equal(t, []string{"2025-02-03T04:05:06Z", "purchase.recorded", buyer.String(), ref.String(),
		"100000", "990", "100", "net=99000 referrer_share=500 protocol_share=500"}, rows[1])
	assert.Equal(t, "sale.recorded", rows[2][1])

	records, _ := w.Stats()
	assert.Equal(t, uint64(2), records)
}

func TestCSVWriterAppendsWithoutSecondHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	for i := 0; i < 2; i++ {
		w, err := NewCSVWriter(path, time.Hour, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, w.Handle(context.Background(), &events.AirdropEvent{
			BaseEvent: events.NewBase(events.AirdropRecorded, at),
			Recipient: solana.NewWallet().PublicKey(),
			Amount:    5,
		}))
		require.NoError(t, w.Close())
	}
	rows := readCSV(t, path)
	assert.Len(t, rows, 3)
}

func TestRowSkipsReads(t *testing.T) {
	assert.Nil(t, Row(&events.TokenCalculationEvent{BaseEvent: events.NewBase(events.TokensCalculated, at)}))
	assert.NotNil(t, Row(&events.PauseChangedEvent{BaseEvent: events.NewBase(events.PauseChanged, at), Paused: true}))
}

func TestLogHandlerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := NewLogHandler(zap.New(core))
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, &events.PriceEvent{BaseEvent: events.NewBase(events.PriceCalculated, at)}))
	require.NoError(t, h.Handle(ctx, &events.MigrationReadyEvent{BaseEvent: events.NewBase(events.MigrationReady, at)}))
	require.NoError(t, h.Handle(ctx, &events.AirdropEvent{BaseEvent: events.NewBase(events.AirdropRecorded, at)}))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[2].Level)
	assert.Equal(t, "airdrop.recorded", entries[2].ContextMap()["event"])
}
