// Package waiting provides cancellable delays, reconnect backoffs and
// resettable countdowns so code that sleeps stays testable.
package waiting

import (
	"sync"
	"time"
)

// Delay is a duration that some code waits for.
type Delay interface {
	// IsZero returns whether this is a zero-duration delay.
	IsZero() bool

	// Wait returns a channel that is closed after the delay elapses,
	// and a cancel function that must be used if the result is no longer
	// needed.
	Wait() (<-chan struct{}, func())
}

// NewDelay returns a Delay of the given duration.
func NewDelay(duration time.Duration) Delay {
	return &realDelay{duration}
}

// NoDelay returns a zero delay whose Wait channel is already closed.
func NoDelay() Delay {
	return NewDelay(0)
}

type realDelay struct {
	duration time.Duration
}

func (d *realDelay) IsZero() bool {
	return d.duration == 0
}

func (d *realDelay) Wait() (<-chan struct{}, func()) {
	if d.IsZero() {
		ch := make(chan struct{})
		close(ch)
		return ch, func() {}
	}

	ch := make(chan struct{})
	cancel := make(chan struct{})

	go func() {
		defer close(ch)
		select {
		case <-time.After(d.duration):
		case <-cancel:
		}
	}()
	return ch, func() { close(cancel) }
}

// Backoff hands out successively longer delays for retry loops.
//
// Next doubles the delay up to the configured maximum. Reset puts it back
// at the initial duration after a successful attempt.
type Backoff struct {
	mu      sync.Mutex
	initial time.Duration
	max     time.Duration
	current time.Duration
}

// NewBackoff returns a Backoff starting at initial and capped at max.
// Non-positive arguments are raised to sane minimums.
func NewBackoff(initial, max time.Duration) *Backoff {
	if initial <= 0 {
		initial = time.Second
	}
	if max < initial {
		max = initial
	}
	return &Backoff{initial: initial, max: max, current: initial}
}

// Next returns the duration to wait before the next attempt and advances
// the sequence.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.current
	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Reset puts the sequence back at the initial delay.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
}

// Stopwatch is a countdown that can be reset before it runs out.
type Stopwatch interface {
	// IsDone returns whether the countdown hit zero.
	IsDone() bool

	// Reset puts the countdown back at its starting duration.
	Reset()
}

// NewStopwatch returns a running Stopwatch with the given duration.
func NewStopwatch(duration time.Duration) Stopwatch {
	s := &realStopwatch{duration: duration}
	s.Reset()
	return s
}

type realStopwatch struct {
	mu       sync.Mutex
	duration time.Duration
	deadline time.Time
}

func (s *realStopwatch) IsDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().After(s.deadline)
}

func (s *realStopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadline = time.Now().Add(s.duration)
}
