package shell

import "time"

// Clock abstracts wall-clock reads and deferred execution so the midnight
// rollover can be driven by a fake in tests instead of real waits.
type Clock interface {
	Now() time.Time
	// AfterFunc runs f in its own goroutine after d elapses. The returned
	// stop cancels the pending call; it reports false when f already ran.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// SystemClock is the real-time Clock used outside tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) AfterFunc(d time.Duration, f func()) func() bool {
	t := time.AfterFunc(d, f)
	return t.Stop
}

// untilNextMidnight returns the duration from now to the next local
// midnight.
func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return next.Sub(now)
}
