package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu     sync.Mutex
	events []Event
	err    error
	closed bool
}

func (s *memorySink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch...)
	return s.err
}

func (s *memorySink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func TestFanout_DeliversToEverySink(t *testing.T) {
	t.Parallel()

	first := &memorySink{}
	second := &memorySink{}
	fanout := NewFanout(nil, first, second)

	evt := Event{RunID: NewRunID(), TS: time.Now().UTC(), Stage: StageRunStart}
	fanout.Emit(evt)

	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	assert.Equal(t, StageRunStart, first.events[0].Stage)
}

func TestFanout_InvalidEventsDiscarded(t *testing.T) {
	t.Parallel()

	sink := &memorySink{}
	fanout := NewFanout(nil, sink)

	fanout.Emit(Event{Stage: StageRunStart})
	assert.Empty(t, sink.events)
}

func TestFanout_SinkErrorDoesNotStopDelivery(t *testing.T) {
	t.Parallel()

	failing := &memorySink{err: errors.New("sink down")}
	healthy := &memorySink{}
	fanout := NewFanout(nil, failing, healthy)

	fanout.Emit(Event{RunID: NewRunID(), TS: time.Now().UTC(), Stage: StageRunStart})
	require.Len(t, healthy.events, 1)
}

func TestFanout_CloseClosesSinks(t *testing.T) {
	t.Parallel()

	sink := &memorySink{}
	fanout := NewFanout(nil, sink)
	require.NoError(t, fanout.Close(context.Background()))
	assert.True(t, sink.closed)
}

func TestFanout_NilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var fanout *Fanout
	fanout.Emit(Event{})
	assert.NoError(t, fanout.Close(context.Background()))
}
