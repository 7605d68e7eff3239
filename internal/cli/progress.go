package cli

import (
	"sync"

	"github.com/cmorante/poaplan/internal/orchestrator"
)

// ProgressSink fans orchestrator progress events to whichever listener is
// attached for the current submission. The orchestrator is wired to it
// once at startup; commands attach and detach around each run.
type ProgressSink struct {
	mu sync.Mutex
	fn func(orchestrator.ProgressEvent)
}

// Emit forwards an event to the attached listener, if any.
func (s *ProgressSink) Emit(ev orchestrator.ProgressEvent) {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// Listen attaches a listener and returns a detach function.
func (s *ProgressSink) Listen(fn func(orchestrator.ProgressEvent)) func() {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.fn = nil
		s.mu.Unlock()
	}
}
