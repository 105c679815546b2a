package notify

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogNotifier logs notifications.
type LogNotifier struct {
	Logger *zap.Logger
}

// NewLogNotifier creates a notifier that logs to the given logger.
// If logger is nil, events are discarded.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{Logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	level := zapcore.InfoLevel
	switch event.Severity {
	case SeverityWarning:
		level = zapcore.WarnLevel
	case SeverityError:
		level = zapcore.ErrorLevel
	}

	fields := []zap.Field{
		zap.String("event", string(event.Type)),
		zap.String("run_id", event.RunID),
	}
	if event.App != "" {
		fields = append(fields, zap.String("app", event.App))
	}
	if event.Repo != "" {
		fields = append(fields, zap.String("repo", event.Repo))
	}
	if event.URL != "" {
		fields = append(fields, zap.String("pr", event.URL))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}

	n.Logger.Log(level, event.Message, fields...)
	return nil
}
