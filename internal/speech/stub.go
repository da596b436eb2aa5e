package speech

import (
	"context"
	"sync"
	"time"
)

// StubEngine is an Engine for testing. It records spoken utterances and
// tracks how many are in flight so tests can assert exclusivity.
type StubEngine struct {
	// Hold keeps each utterance "playing" until its context is
	// cancelled; otherwise Speak returns after Latency.
	Hold    bool
	Latency time.Duration
	// Unavailable simulates a platform without speech support.
	Unavailable bool

	mu          sync.Mutex
	spoken      []string
	inFlight    int
	maxInFlight int
}

// Name returns the engine identifier.
func (s *StubEngine) Name() string { return "stub" }

// Available reports simulated capability.
func (s *StubEngine) Available() bool { return !s.Unavailable }

// Speak records the utterance and blocks per the stub configuration.
func (s *StubEngine) Speak(ctx context.Context, u Utterance) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, u.Text)
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if s.Hold {
		<-ctx.Done()
		return ctx.Err()
	}

	latency := s.Latency
	if latency == 0 {
		latency = time.Millisecond
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(latency):
		return nil
	}
}

// Spoken returns the utterances spoken so far.
func (s *StubEngine) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.spoken))
	copy(out, s.spoken)
	return out
}

// MaxInFlight returns the peak number of concurrently playing utterances.
func (s *StubEngine) MaxInFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxInFlight
}
