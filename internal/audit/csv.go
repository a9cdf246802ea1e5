// internal/audit/csv.go
package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rovshanmuradov/curvesale/internal/events"
	"go.uber.org/zap"
)

// JournalHeader is the column set of the trade journal.
var JournalHeader = []string{"timestamp", "event", "account", "counterparty", "sol_amount", "token_amount", "price", "detail"}

// CSVWriter is a trade journal. Rows are buffered and flushed on an interval
// and on Close.
type CSVWriter struct {
	mu       sync.Mutex
	writer   *csv.Writer
	file     *os.File
	ticker   *time.Ticker
	done     chan struct{}
	logger   *zap.Logger
	filePath string

	writtenRecords uint64
	flushCount     uint64
}

// NewCSVWriter opens filePath for appending and writes the header when the file
// is new.
func NewCSVWriter(filePath string, flushInterval time.Duration, logger *zap.Logger) (*CSVWriter, error) {
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	w := &CSVWriter{
		writer:   csv.NewWriter(file),
		file:     file,
		ticker:   time.NewTicker(flushInterval),
		done:     make(chan struct{}),
		logger:   logger.Named("audit_csv"),
		filePath: filePath,
	}

	if stat.Size() == 0 {
		if err := w.writer.Write(JournalHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		w.writer.Flush()
	}

	go w.periodicFlush()
	return w, nil
}

// Handle turns an event into a journal row. Pure reads are not journaled.
func (w *CSVWriter) Handle(_ context.Context, event events.Event) error {
	row := Row(event)
	if row == nil {
		return nil
	}
	return w.WriteRecord(row)
}

// WriteRecord writes a CSV record in a thread-safe manner
func (w *CSVWriter) WriteRecord(record []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.writtenRecords++
	return nil
}

// Flush forces a write of any buffered data
func (w *CSVWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	w.flushCount++
	return nil
}

func (w *CSVWriter) periodicFlush() {
	for {
		select {
		case <-w.ticker.C:
			if err := w.Flush(); err != nil {
				w.logger.Error("Periodic CSV flush failed",
					zap.String("file", w.filePath),
					zap.Error(err))
			}
		case <-w.done:
			return
		}
	}
}

// Close stops the flusher and writes everything out.
func (w *CSVWriter) Close() error {
	close(w.done)
	w.ticker.Stop()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error on close: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	w.logger.Info("Trade journal closed",
		zap.String("file", w.filePath),
		zap.Uint64("writtenRecords", w.writtenRecords),
		zap.Uint64("flushCount", w.flushCount))
	return nil
}

// Stats returns the number of rows written and flushes performed.
func (w *CSVWriter) Stats() (records, flushes uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writtenRecords, w.flushCount
}

// Row renders the journal row of a state-changing event, or nil.
func Row(event events.Event) []string {
	ts := event.Timestamp().UTC().Format(time.RFC3339)
	u := func(v uint64) string { return strconv.FormatUint(v, 10) }
	row := func(account, counterparty, sol, tokens, price, detail string) []string {
		return []string{ts, string(event.Type()), account, counterparty, sol, tokens, price, detail}
	}

	switch e := event.(type) {
	case *events.PurchaseEvent:
		counterparty := ""
		if !e.Referrer.IsZero() {
			counterparty = e.Referrer.String()
		}
		detail := fmt.Sprintf("net=%d referrer_share=%d protocol_share=%d", e.NetSol, e.ReferrerShare, e.ProtocolShare)
		return row(e.Buyer.String(), counterparty, u(e.SolAmount), u(e.TokenAmount), u(e.Price), detail)
	case *events.SaleEvent:
		return row(e.Seller.String(), "", u(e.SolAmount), u(e.TokenAmount), u(e.Price), "")
	case *events.AirdropEvent:
		return row(e.Recipient.String(), "", "", u(e.Amount), "", "")
	case *events.ReferralCreatedEvent:
		return row(e.User.String(), e.Referrer.String(), "", "", "", fmt.Sprintf("fee_bps=%d", e.FeeBps))
	case *events.ReferralFeeUpdatedEvent:
		return row(e.User.String(), "", "", "", "", fmt.Sprintf("fee_bps=%d->%d", e.OldFeeBps, e.NewFeeBps))
	case *events.AdminTransferInitiatedEvent:
		return row(e.CurrentAdmin.String(), e.ProposedAdmin.String(), "", "", "", "")
	case *events.AdminTransferCompletedEvent:
		return row(e.NewAdmin.String(), "", "", "", "", "")
	case *events.PauseChangedEvent:
		return row(e.Admin.String(), "", "", "", "", fmt.Sprintf("paused=%t", e.Paused))
	case *events.MintInitializedEvent:
		return row(e.Admin.String(), e.Mint.String(), "", "", "", "")
	case *events.CurveInitializedEvent:
		return row(e.Admin.String(), "", "", u(e.TotalSupply), "", fmt.Sprintf("points=%d", len(e.PricePoints)))
	case *events.MigrationReadyEvent:
		return row("", "", u(e.TotalRaised), u(e.TotalSoldSupply), "", "")
	case *events.MigrationCompletedEvent:
		return row(e.Admin.String(), e.Pool.String(), u(e.TotalRaised), u(e.TotalSoldSupply), "", "signature="+e.Signature)
	default:
		return nil
	}
}
