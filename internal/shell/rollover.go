package shell

import (
	"context"
	"time"

	"fintrack/internal/monthkey"
)

// StartRollover arms the month-rollover schedule: an immediate check, a
// one-shot wake-up at the next local midnight, then a daily wake-up. A
// session left open across a month boundary must not keep showing the
// stale month. Safe to call once per authenticated session; StopRollover
// cancels whatever is pending.
func (s *Shell) StartRollover(ctx context.Context) {
	s.checkRollover(ctx)
	s.armTimer(ctx, untilNextMidnight(s.clock.Now()))
}

// StopRollover cancels the pending wake-up. It must run when the session
// ends or the shell shuts down, or timers leak across logout/login
// cycles.
func (s *Shell) StopRollover() {
	s.mu.Lock()
	stop := s.stopTimer
	s.stopTimer = nil
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (s *Shell) armTimer(ctx context.Context, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return
	}
	if s.stopTimer != nil {
		s.stopTimer()
	}
	s.stopTimer = s.clock.AfterFunc(d, func() {
		s.checkRollover(ctx)
		s.armTimer(ctx, 24*time.Hour)
	})
}

// checkRollover switches to the wall-clock month if the selection has
// fallen behind, re-fetching for the new month.
func (s *Shell) checkRollover(ctx context.Context) {
	current := monthkey.FromTime(s.clock.Now())
	s.mu.Lock()
	if s.state != StateAuthenticated || s.month == current {
		s.mu.Unlock()
		return
	}
	previous := s.month
	s.month = current
	s.mu.Unlock()

	s.logger.Info("month rolled over", "from", previous, "to", current)
	s.fetch(ctx)
}
