package policies

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}

// NowOr falls back to the system clock when c is nil.
func NowOr(c Clock) time.Time {
	if c == nil {
		return SystemClock{}.Now()
	}
	return c.Now()
}
