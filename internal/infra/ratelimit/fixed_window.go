// Package ratelimit provides the per-client request counter behind the HTTP
// rate limiter.
package ratelimit

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Store counts requests per client. It satisfies echo's RateLimiterStore and
// can report how long a denied client must wait.
type Store interface {
	middleware.RateLimiterStore

	// RetryAfter returns the time left in the identifier's current window.
	RetryAfter(identifier string) time.Duration
}

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindowStore allows at most limit requests per identifier in each
// window. Expired windows are dropped by Sweep, which a background loop
// started with Start calls every sweepInterval. It is safe for concurrent use.
type FixedWindowStore struct {
	mu      sync.Mutex
	windows map[string]*window

	limit         int
	window        time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	clients prometheus.Gauge

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option customises a FixedWindowStore.
type Option func(*FixedWindowStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *FixedWindowStore) {
		s.now = now
	}
}

// WithClientsGauge reports the number of tracked identifiers.
func WithClientsGauge(g prometheus.Gauge) Option {
	return func(s *FixedWindowStore) {
		s.clients = g
	}
}

// NewFixedWindowStore builds a store; call Start to run the sweeper.
func NewFixedWindowStore(limit int, windowSize, sweepInterval time.Duration, opts ...Option) *FixedWindowStore {
	s := &FixedWindowStore{
		windows:       make(map[string]*window),
		limit:         limit,
		window:        windowSize,
		sweepInterval: sweepInterval,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Allow counts one request for identifier and reports whether it fits the window.
func (s *FixedWindowStore) Allow(identifier string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[identifier]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(s.window)}
		s.windows[identifier] = w
		s.reportClients()
	}

	if w.count >= s.limit {
		return false, nil
	}
	w.count++

	return true, nil
}

// RetryAfter returns the remaining time of identifier's window, or zero when
// no window is open.
func (s *FixedWindowStore) RetryAfter(identifier string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[identifier]
	if !ok {
		return 0
	}

	remaining := w.resetAt.Sub(s.now())
	if remaining < 0 {
		return 0
	}

	return remaining
}

// Sweep drops expired windows and returns how many were removed.
func (s *FixedWindowStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, id)
			removed++
		}
	}
	s.reportClients()

	return removed
}

// Len returns the number of tracked identifiers.
func (s *FixedWindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.windows)
}

// Start runs Sweep every sweepInterval until Close is called.
func (s *FixedWindowStore) Start() {
	if s.sweepInterval <= 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Close stops the sweeper and waits for it to exit. It is safe to call more than once.
func (s *FixedWindowStore) Close() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
}

// reportClients must be called with mu held.
func (s *FixedWindowStore) reportClients() {
	if s.clients != nil {
		s.clients.Set(float64(len(s.windows)))
	}
}
