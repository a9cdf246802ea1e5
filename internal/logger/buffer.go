// internal/logger/buffer.go
package logger

import (
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogEntry represents a single log entry in the buffer
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Logger    string    `json:"logger,omitempty"`
	Message   string    `json:"message"`
}

// Buffer is a fixed-size ring of recent log entries. It is an io.Writer fed
// with zap JSON lines, so it can sit behind a zapcore.Core.
type Buffer struct {
	mu      sync.Mutex
	ring    []LogEntry
	next    int
	wrapped bool
	total   uint64
}

// NewBuffer returns a ring holding at most size entries.
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = 256
	}
	return &Buffer{ring: make([]LogEntry, size)}
}

// Core returns a JSON core writing into the buffer at level.
func (b *Buffer) Core(level zapcore.Level) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(b), level)
}

// Write parses one zap JSON line. Malformed input is kept as a raw message.
func (b *Buffer) Write(p []byte) (int, error) {
	line := gjson.ParseBytes(p)
	entry := LogEntry{
		Level:   line.Get("level").String(),
		Logger:  line.Get("logger").String(),
		Message: line.Get("msg").String(),
	}
	if ts, err := time.Parse(time.RFC3339Nano, line.Get("timestamp").String()); err == nil {
		entry.Timestamp = ts
	} else {
		entry.Timestamp = time.Now()
	}
	if !line.IsObject() {
		entry.Message = string(p)
	}
	b.Add(entry)
	return len(p), nil
}

// Add appends entry, overwriting the oldest one when full.
func (b *Buffer) Add(entry LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ring[b.next] = entry
	b.next = (b.next + 1) % len(b.ring)
	if b.next == 0 {
		b.wrapped = true
	}
	b.total++
}

// Recent returns up to limit entries, oldest first. A limit of zero returns
// everything held.
func (b *Buffer) Recent(limit int) []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := b.next
	start := 0
	if b.wrapped {
		count = len(b.ring)
		start = b.next
	}
	if limit > 0 && limit < count {
		start += count - limit
		count = limit
	}

	out := make([]LogEntry, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, b.ring[(start+i)%len(b.ring)])
	}
	return out
}

// Total reports how many entries were ever added.
func (b *Buffer) Total() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}
