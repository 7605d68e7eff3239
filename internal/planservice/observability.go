package planservice

import (
	"io"
	"log/slog"
)

// CallEvent records metadata about a single planning-service call.
type CallEvent struct {
	Op        string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about planning-service calls for logging and
// metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

// LogObserver writes call events through a slog text handler.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	if event.Success {
		o.logger.Info("planservice_call", "op", event.Op, "latency_ms", event.LatencyMs)
		return
	}
	o.logger.Error("planservice_call", "op", event.Op, "latency_ms", event.LatencyMs,
		"error_code", event.ErrorCode)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case isTimeout(err):
		return "TIMEOUT"
	case isNotFound(err):
		return "NOT_FOUND"
	case isConflict(err):
		return "CONFLICT"
	case isUnavailable(err):
		return "UNAVAILABLE"
	default:
		return "UNKNOWN"
	}
}
