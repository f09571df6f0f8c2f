// File: services/delay.go
package services

import (
	"sync"
	"time"
)

// Task is a scheduled callback that can be cancelled before it fires.
type Task interface {
	// Cancel stops the task; it reports false if the task already ran or was cancelled.
	Cancel() bool
}

// Delayer schedules callbacks. Production code uses ClockDelayer; tests use ManualDelayer.
type Delayer interface {
	AfterFunc(d time.Duration, fn func()) Task
}

// ClockDelayer schedules on the wall clock.
type ClockDelayer struct{}

type timerTask struct{ t *time.Timer }

func (t timerTask) Cancel() bool { return t.t.Stop() }

// AfterFunc runs fn on its own goroutine after d.
func (ClockDelayer) AfterFunc(d time.Duration, fn func()) Task {
	return timerTask{t: time.AfterFunc(d, fn)}
}

// ------------------- manual delayer -------------------

// ManualDelayer fires callbacks only when Advance is called. Safe for concurrent use.
type ManualDelayer struct {
	mu      sync.Mutex
	now     time.Duration
	pending []*manualTask
}

type manualTask struct {
	owner     *ManualDelayer
	at        time.Duration
	fn        func()
	done      bool
	cancelled bool
}

// AfterFunc records fn to run once the clock has advanced by d.
func (m *ManualDelayer) AfterFunc(d time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTask{owner: m, at: m.now + d, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

func (t *manualTask) Cancel() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.done || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}

// Advance moves the clock forward and runs every due callback in schedule order.
// Callbacks run on the caller's goroutine, outside the lock, so they may schedule more work.
func (m *ManualDelayer) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		var next *manualTask
		for _, t := range m.pending {
			if t.done || t.cancelled || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			m.now = target
			m.compact()
			m.mu.Unlock()
			return
		}
		next.done = true
		if next.at > m.now {
			m.now = next.at
		}
		m.mu.Unlock()
		next.fn()
	}
}

// Pending counts callbacks that have neither run nor been cancelled.
func (m *ManualDelayer) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		if !t.done && !t.cancelled {
			n++
		}
	}
	return n
}

func (m *ManualDelayer) compact() {
	kept := m.pending[:0]
	for _, t := range m.pending {
		if !t.done && !t.cancelled {
			kept = append(kept, t)
		}
	}
	m.pending = kept
}
