// Package timeutil provides a testable abstraction over the wall clock.
//
// The analysis itself is timeless (frames carry their own numbering); only the
// report header and the report filename read the clock, so tests inject a
// MockClock to get stable filenames.
package timeutil

import (
	"sync"
	"time"
)

// ReportStampLayout is the layout embedded in report filenames.
const ReportStampLayout = "20060102150405"

// ReportHeaderLayout is the layout printed under the report title.
const ReportHeaderLayout = "2006-01-02 15:04:05"

// Clock provides an abstraction over time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the duration since t.
	Since(t time.Time) time.Duration
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed since t.
func (RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// MockClock is a manually controlled clock for testing.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a new MockClock set to the given time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the mocked current time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set sets the mock clock to a specific time.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the mock clock forward by the given duration.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Since returns the duration since t.
func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// ReportStamp formats t for use in a report filename.
func ReportStamp(t time.Time) string {
	return t.Format(ReportStampLayout)
}
