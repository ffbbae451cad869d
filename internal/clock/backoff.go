package clock

import "time"

// Backoff computes capped exponential delays for retry loops.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
}

// Delay returns the wait before retry number attempt (1-based).
func (b Backoff) Delay(attempt uint32) time.Duration {
	if b.Initial <= 0 {
		return 0
	}
	delay := b.Initial
	for i := uint32(1); i < attempt; i++ {
		delay *= 2
		if b.Max > 0 && delay >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && delay > b.Max {
		return b.Max
	}
	return delay
}
