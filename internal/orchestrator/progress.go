package orchestrator

import (
	"sync"

	"server/internal/domain"
	"server/internal/infra"
)

// ProgressStatus is the lifecycle tag attached to progress events.
type ProgressStatus string

const (
	ProgressStarting  ProgressStatus = "starting"
	ProgressCompleted ProgressStatus = "completed"
	ProgressFailed    ProgressStatus = "failed"
	ProgressSkipped   ProgressStatus = "skipped"
)

// Event is one progress notification. For every task exactly one starting
// event is followed by exactly one terminal event.
type Event struct {
	Format  domain.FormatKey
	Status  ProgressStatus
	Message string
}

// Sink receives progress events. Implementations do not need to be safe for
// concurrent use; the orchestrator serializes emission.
type Sink interface {
	Emit(event Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(event Event)

func (f SinkFunc) Emit(event Event) { f(event) }

// LogSink writes progress events to the service log.
func LogSink(logger *infra.Logger) Sink {
	return SinkFunc(func(event Event) {
		logger.Info().
			Str("format", string(event.Format)).
			Str("status", string(event.Status)).
			Msg(event.Message)
	})
}

type noopSink struct{}

func (noopSink) Emit(Event) {}

// serialSink guards a caller-supplied sink against concurrent task
// goroutines.
type serialSink struct {
	mu    sync.Mutex
	inner Sink
}

func (s *serialSink) Emit(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Emit(event)
}
