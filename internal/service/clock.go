package service

import "time"

// Clock returns the current time. Services call it once per operation.
type Clock func() time.Time

// UTCNow is the production clock.
func UTCNow() time.Time {
	return time.Now().UTC()
}

func (c Clock) now() time.Time {
	if c == nil {
		return UTCNow()
	}
	return c().UTC()
}
