package services

import "time"

// Clock supplies "now" to everything that compares against today
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// DefaultClock is the clock handlers hand to services. Tests swap it.
var DefaultClock Clock = SystemClock{}
