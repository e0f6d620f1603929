// Package netmon answers "are we online right now?" and notifies interested
// parties when connectivity comes back.
package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/Samuel-SouzaZz/devquest/internal/logging"
)

// Prober is a point-in-time reachability check. The API client's Ping
// satisfies it.
type Prober interface {
	Ping(ctx context.Context) error
}

// Monitor polls a Prober and fires callbacks on offline→online transitions.
// A nil prober degrades to "assume online" rather than failing, so the rest
// of the app keeps working on platforms without a monitoring backend.
type Monitor struct {
	prober  Prober
	timeout time.Duration
	log     logging.Logger

	mu        sync.Mutex
	nextID    int
	callbacks map[int]func()
	wasOnline bool
	primed    bool
}

func New(prober Prober, timeout time.Duration, log logging.Logger) *Monitor {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	return &Monitor{
		prober:    prober,
		timeout:   timeout,
		log:       log,
		callbacks: make(map[int]func()),
	}
}

// IsOnline performs a fresh probe; the result is never cached, because
// connectivity can change between calls.
func (m *Monitor) IsOnline(ctx context.Context) bool {
	if m.prober == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.prober.Ping(ctx) == nil
}

// OnRestored registers fn to run when connectivity transitions from offline
// to online. Returns an unsubscribe function; unsubscribing one callback
// does not affect others.
func (m *Monitor) OnRestored(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.callbacks[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.callbacks, id)
	}
}

// Watch polls every interval until ctx is done, firing restored callbacks on
// each offline→online transition. Run it in its own goroutine.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Observe(ctx)

	for {
		select {
		case <-ticker.C:
			m.Observe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Observe takes one connectivity sample and fires callbacks if it completes
// an offline→online transition. Exposed so tests and manual triggers can
// drive the state machine without the ticker.
func (m *Monitor) Observe(ctx context.Context) {
	online := m.IsOnline(ctx)

	m.mu.Lock()
	restored := m.primed && !m.wasOnline && online
	if m.primed && m.wasOnline != online {
		if online {
			m.log.Info(ctx, "connectivity restored")
		} else {
			m.log.Info(ctx, "connectivity lost")
		}
	}
	m.wasOnline = online
	m.primed = true

	var fns []func()
	if restored {
		fns = make([]func(), 0, len(m.callbacks))
		for _, fn := range m.callbacks {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
