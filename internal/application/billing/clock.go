package billing

import "time"

// Clock supplies timestamps for payment dates and commission calculation
// times. Injected so tests can pin time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewRealClock returns a Clock backed by the system time
func NewRealClock() Clock {
	return realClock{}
}
