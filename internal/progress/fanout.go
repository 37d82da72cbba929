package progress

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultSinkTimeout = 5 * time.Second

// Fanout delivers each event synchronously to every registered sink. The
// scrape pipeline is strictly sequential and low-volume, so there is nothing
// to gain from buffering; a sink error is logged and never influences control
// flow.
type Fanout struct {
	sinks       []Sink
	sinkTimeout time.Duration
	logger      *zap.Logger
}

// NewFanout wires sinks behind the Emitter interface. A nil logger is
// replaced with a no-op.
func NewFanout(logger *zap.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{
		sinks:       append([]Sink(nil), sinks...),
		sinkTimeout: defaultSinkTimeout,
		logger:      logger,
	}
}

// Emit validates the event and hands it to every sink in registration order.
func (f *Fanout) Emit(evt Event) {
	if f == nil {
		return
	}
	if err := evt.Validate(); err != nil {
		f.logger.Debug("discarding invalid progress event", zap.Error(err))
		return
	}
	batch := []Event{evt}
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), f.sinkTimeout)
		if err := sink.Consume(ctx, batch); err != nil {
			f.logger.Warn("progress sink consume failed", zap.Error(err))
		}
		cancel()
	}
}

// Close closes every sink, logging failures instead of propagating them.
func (f *Fanout) Close(ctx context.Context) error {
	if f == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Close(ctx); err != nil {
			f.logger.Warn("progress sink close failed", zap.Error(err))
		}
	}
	return nil
}
