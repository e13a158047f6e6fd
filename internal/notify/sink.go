package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Sink доставляет сообщение подписчикам. Ошибка означает, что доставку
// стоит повторить.
type Sink interface {
	Publish(ctx context.Context, msg Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, msg Message) error

func (f SinkFunc) Publish(ctx context.Context, msg Message) error { return f(ctx, msg) }

// Multi публикует в каждый приёмник; ошибка одного не мешает остальным.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, msg Message) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink пишет уведомления в лог на уровне debug.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(_ context.Context, msg Message) error {
	s.log.Debug("уведомление",
		zap.String("channel", msg.Channel),
		zap.String("event", msg.Event),
		zap.Any("data", msg.Data))
	return nil
}
