package logger

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBufferKeepsMostRecent(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 5; i++ {
		b.Add(LogEntry{Message: fmt.Sprintf("m%d", i)})
	}

	got := b.Recent(0)
	require.Len(t, got, 3)
	assert.Equal(t, "m2", got[0].Message)
	assert.Equal(t, "m4", got[2].Message)

	last := b.Recent(2)
	require.Len(t, last, 2)
	assert.Equal(t, "m3", last[0].Message)
	assert.Equal(t, uint64(5), b.Total())
}

func TestBufferBeforeWrap(t *testing.T) {
	b := NewBuffer(10)
	b.Add(LogEntry{Message: "a"})
	b.Add(LogEntry{Message: "b"})

	got := b.Recent(1)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Message)
	assert.Len(t, b.Recent(0), 2)
}

func TestBufferAsZapCore(t *testing.T) {
	b := NewBuffer(16)
	log := zap.New(b.Core(zapcore.DebugLevel)).Named("engine")
	log.Info("Operation committed", zap.String("operation", "buy_tokens"))
	log.Debug("Operation rejected")

	got := b.Recent(0)
	require.Len(t, got, 2)
	assert.Equal(t, "info", got[0].Level)
	assert.Equal(t, "engine", got[0].Logger)
	assert.Equal(t, "Operation committed", got[0].Message)
	assert.False(t, got[0].Timestamp.IsZero())
	assert.Equal(t, "debug", got[1].Level)
}

func TestBufferConcurrentWrites(t *testing.T) {
	b := NewBuffer(100)
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				b.Add(LogEntry{Message: fmt.Sprintf("%d-%d", id, i)})
			}
		}(g)
	}
	wg.Wait()
	assert.Equal(t, uint64(500), b.Total())
	assert.Len(t, b.Recent(0), 100)
}

func TestNewWritesToBufferAndFile(t *testing.T) {
	buf := NewBuffer(8)
	cfg := DefaultConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "app.log")
	cfg.Console = "none"

	l, err := New(cfg, buf.Core(zapcore.InfoLevel))
	require.NoError(t, err)
	l.WithOperation("migrate").Info("Migration window reached")
	_ = l.Sync()

	got := buf.Recent(0)
	require.Len(t, got, 1)
	assert.Equal(t, "Migration window reached", got[0].Message)
	assert.FileExists(t, cfg.LogFile)
}

func TestShortenAddress(t *testing.T) {
	assert.Equal(t, "7gie...o9bM", ShortenAddress("7giegFn7Wy4McS1eKr1cpjhpE9TibEywydG57PSao9bM"))
	assert.Equal(t, "short", ShortenAddress("short"))
}
