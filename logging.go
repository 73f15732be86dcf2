package evtag

import (
	"fmt"
	"log/slog"
)

// LoggingSink wraps next so that every published event is logged with slog
// before it is forwarded.
func LoggingSink(logger *slog.Logger, next Sink) Sink {
	if logger == nil {
		logger = slog.Default()
	}

	return SinkFunc(func(name string, payload any) {
		logger.Debug("event published",
			slog.String("event", name),
			slog.String("type", fmt.Sprintf("%T", payload)),
		)
		next.Publish(name, payload)
	})
}
