// Package speech provides text-to-speech playback with an exclusive
// engine handle: at most one utterance is in flight system-wide, and
// every new playback request stops the previous one first.
package speech

import (
	"context"
	"errors"
	"sync"
)

// ErrUnavailable indicates the platform has no usable speech engine.
// It is a capability error, reported once and never fatal.
var ErrUnavailable = errors.New("speech synthesis is not available")

// Utterance is one unit of speech playback.
type Utterance struct {
	Text string
	// Rate scales playback speed; 0 means the engine default.
	Rate float64
}

// Engine synthesizes and plays a single utterance.
type Engine interface {
	// Name returns the engine identifier.
	Name() string

	// Available reports whether the engine can synthesize speech.
	Available() bool

	// Speak synthesizes and plays the utterance, blocking until it
	// finishes or ctx is cancelled.
	Speak(ctx context.Context, u Utterance) error
}

// Controller owns the exclusive engine handle. Start stops any prior
// utterance synchronously before beginning the next one.
type Controller struct {
	engine Engine

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	speaking bool
}

// NewController creates a playback controller over the given engine.
func NewController(engine Engine) *Controller {
	return &Controller{engine: engine}
}

// Available reports whether speech synthesis can be used at all.
func (c *Controller) Available() bool {
	return c.engine != nil && c.engine.Available()
}

// Start begins playback of text, stopping any current utterance first.
// onEnd is invoked exactly once when playback stops; completed is true
// only when the utterance played to its natural end.
func (c *Controller) Start(ctx context.Context, text string, onEnd func(completed bool)) error {
	if !c.Available() {
		return ErrUnavailable
	}

	// Stop the previous utterance and wait for it to unwind so two
	// utterances never overlap.
	c.mu.Lock()
	prev := c.stopLocked()
	c.mu.Unlock()
	if prev != nil {
		<-prev
	}

	c.mu.Lock()
	playCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.speaking = true
	c.mu.Unlock()

	go func() {
		err := c.engine.Speak(playCtx, Utterance{Text: text})
		completed := err == nil && playCtx.Err() == nil

		c.mu.Lock()
		if c.done == done {
			c.speaking = false
			c.cancel = nil
			c.done = nil
		}
		c.mu.Unlock()

		close(done)
		if onEnd != nil {
			onEnd(completed)
		}
	}()

	return nil
}

// Stop cancels the current utterance, if any, and waits for it to end.
func (c *Controller) Stop() {
	c.mu.Lock()
	done := c.stopLocked()
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// stopLocked cancels current playback and returns its done channel.
// Caller must hold the lock.
func (c *Controller) stopLocked() chan struct{} {
	if c.cancel != nil {
		c.cancel()
	}
	done := c.done
	c.cancel = nil
	c.done = nil
	c.speaking = false
	return done
}

// Speaking reports whether an utterance is currently in flight.
func (c *Controller) Speaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking
}
