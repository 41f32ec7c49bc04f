package notify

import (
	"context"

	"backoffice/pkg/logger"

	"go.uber.org/zap"
)

// LogSink writes every event to the application log.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Deliver(ctx context.Context, event string, body []byte) error {
	logger.Info("Event published",
		zap.String("event", event),
		zap.ByteString("body", body))
	return nil
}
