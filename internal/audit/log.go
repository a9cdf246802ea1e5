// internal/audit/log.go
package audit

import (
	"context"

	"github.com/rovshanmuradov/curvesale/internal/events"
	"go.uber.org/zap"
)

// LogHandler writes every event as one structured log line.
type LogHandler struct {
	logger *zap.Logger
}

func NewLogHandler(logger *zap.Logger) *LogHandler {
	return &LogHandler{logger: logger.Named("audit")}
}

func (h *LogHandler) Handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event", string(event.Type())),
		zap.Time("at", event.Timestamp()),
	}
	switch e := event.(type) {
	case *events.PriceEvent, *events.TokenCalculationEvent:
		h.logger.Debug("Event", append(fields, zap.Any("payload", e))...)
		return nil
	case *events.MigrationReadyEvent, *events.MigrationCompletedEvent, *events.PauseChangedEvent:
		h.logger.Warn("Event", append(fields, zap.Any("payload", e))...)
		return nil
	default:
		h.logger.Info("Event", append(fields, zap.Any("payload", e))...)
		return nil
	}
}
