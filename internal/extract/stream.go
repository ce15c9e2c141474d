package extract

import (
	"context"

	"github.com/vk/nixgraphgo/internal/derivation"
)

// Stream is the consumer's view of a running extraction: a lazy, finite,
// non-restartable sequence of descriptions, plus an optional sequence of
// progress events. Both channels close when the traversal has fully
// terminated.
type Stream struct {
	results <-chan *derivation.Description
	events  <-chan Event
	cancel  context.CancelFunc
}

// Results returns the description channel. It is closed once every unit
// of work has reached a terminal state.
func (s *Stream) Results() <-chan *derivation.Description {
	return s.results
}

// Events returns the progress channel, or nil when progress reporting was
// not requested.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Close signals that the consumer has stopped reading. Producers observe
// the cancellation at their next send or semaphore acquisition and abandon
// their unit of work instead of recursing further; in-flight evaluations
// are bounded by the worker count.
func (s *Stream) Close() {
	s.cancel()
}
