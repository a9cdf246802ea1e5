// internal/logger/pretty.go
package logger

import (
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiBold   = "\033[1m"
)

var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel: ansiCyan,
	zapcore.InfoLevel:  ansiGreen,
	zapcore.WarnLevel:  ansiYellow,
	zapcore.ErrorLevel: ansiRed,
	zapcore.FatalLevel: ansiRed + ansiBold,
}

// PrettyEncoder is the operator console encoder: clock time, bracketed level
// and the logger name without the root prefix. Colors are optional so the
// same layout works when stdout is not a terminal.
func PrettyEncoder(color bool) zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    levelEncoder(color),
		EncodeTime:     clockEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     shortNameEncoder,
	})
}

func levelEncoder(color bool) zapcore.LevelEncoder {
	return func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		tag := "[" + level.CapitalString() + "]"
		if c, ok := levelColors[level]; ok && color {
			tag = c + tag + ansiReset
		}
		enc.AppendString(tag)
	}
}

func clockEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05.000"))
}

// shortNameEncoder drops the "curvesale." root so engine and bus lines stay narrow.
func shortNameEncoder(name string, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(strings.TrimPrefix(name, "curvesale."))
}

// ShortenAddress renders a base58 key as abcd...wxyz.
func ShortenAddress(addr string) string {
	if len(addr) > 8 {
		return addr[:4] + "..." + addr[len(addr)-4:]
	}
	return addr
}
