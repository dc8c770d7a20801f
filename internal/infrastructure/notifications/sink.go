package notifications

import (
	"context"

	"go.uber.org/zap"

	"github.com/you/storefront/domain"
)

// LogSink writes every event to the structured log
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Publish implements domain.EventSink
func (s *LogSink) Publish(_ context.Context, event *domain.Event) {
	if event == nil {
		return
	}
	fields := []zap.Field{
		zap.String("type", string(event.Type)),
		zap.Bool("success", event.Success),
	}
	if event.Resource != "" {
		fields = append(fields, zap.String("resource", event.Resource))
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ProductID != "" {
		fields = append(fields, zap.String("product_id", event.ProductID))
	}
	if event.Count != 0 {
		fields = append(fields, zap.Int("count", event.Count))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}

	if event.Success {
		s.logger.Debug("event", fields...)
		return
	}
	s.logger.Info("event", append(fields, zap.String("error", event.ErrorMsg))...)
}

// Multi publishes to several sinks in order
type Multi []domain.EventSink

// Publish implements domain.EventSink
func (m Multi) Publish(ctx context.Context, event *domain.Event) {
	for _, sink := range m {
		if sink != nil {
			sink.Publish(ctx, event)
		}
	}
}

// Discard drops every event
type Discard struct{}

// Publish implements domain.EventSink
func (Discard) Publish(context.Context, *domain.Event) {}

var (
	_ domain.EventSink = (*LogSink)(nil)
	_ domain.EventSink = Multi(nil)
	_ domain.EventSink = Discard{}
)
