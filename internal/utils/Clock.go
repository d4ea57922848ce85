package utils

import (
	"sync"
	"time"
)

const day = 24 * time.Hour

// Clock is the time source for anything that stamps exports or computes
// upcoming birthdays.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// MockClock is a settable Clock for tests. Safe for concurrent handlers.
type MockClock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

func (m *MockClock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

func (m *MockClock) SetNow(now time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (m *MockClock) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from the day of `from` to the day of `to`,
// both taken in UTC. Negative when `to` is earlier.
func DaysBetween(from, to time.Time) int {
	return int(StartOfDay(to.UTC()).Sub(StartOfDay(from.UTC())) / day)
}
