// Package sinks provides progress.Sink implementations for rendering and
// exporting scrape progress.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/shelfdata/subjectwatch/internal/progress"
)

// LogSink emits structured logs for progress streams. It is the default
// renderer for CLI runs.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.Stringer("run_id", evt.RunUUID()),
			zap.String("stage", string(evt.Stage)),
		}
		if evt.URL != "" {
			fields = append(fields, zap.String("url", evt.URL))
		}
		if evt.Stage == progress.StageFetchAttempt {
			fields = append(fields,
				zap.Int("attempt", evt.Attempt),
				zap.Int("max_attempts", evt.MaxAttempts),
			)
		}
		if evt.Heading != "" {
			fields = append(fields, zap.String("heading", evt.Heading))
		}
		if evt.Entries > 0 {
			fields = append(fields, zap.Int("entries", evt.Entries))
		}
		if evt.Dur > 0 {
			fields = append(fields, zap.Duration("dur", evt.Dur))
		}
		if evt.Note != "" {
			fields = append(fields, zap.String("note", evt.Note))
		}
		s.logger.Info("progress event", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
