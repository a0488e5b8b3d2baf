package data

import "time"

// TimeProvider abstracts time.Now for deterministic tests.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider returns the actual current time.
type RealTimeProvider struct{}

func (RealTimeProvider) Now() time.Time { return time.Now() }
