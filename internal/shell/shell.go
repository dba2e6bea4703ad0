// Package shell orchestrates the client: session bootstrap, month
// selection and rollover, data loading and mutations against the remote
// API. It is the only place state transitions happen; everything it
// delegates to is either pure (aggregate, monthkey) or a side-store
// (session, budget).
package shell

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/monthkey"
	"fintrack/internal/session"
)

type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Shell is safe for concurrent use: the rollover timer fires on its own
// goroutine.
type Shell struct {
	api      *api.Client
	sessions *session.Manager
	clock    Clock
	logger   *log.Logger

	mu           sync.Mutex
	state        State
	user         core.User
	month        monthkey.Key
	transactions []core.Transaction
	lastErr      string
	fetchGen     uint64
	stopTimer    func() bool
}

func New(apiClient *api.Client, sessions *session.Manager, clock Clock, logger *log.Logger) *Shell {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Shell{
		api:      apiClient,
		sessions: sessions,
		clock:    clock,
		logger:   logger.WithComponent("shell"),
		state:    StateLoading,
		month:    monthkey.FromTime(clock.Now()),
	}
}

// Bootstrap restores a stored session if one exists and loads the current
// month. A corrupt session record is treated as logged out, not fatal.
func (s *Shell) Bootstrap(ctx context.Context) {
	sess, ok, err := s.sessions.Get()
	if err != nil {
		s.logger.Warn("discarding unreadable session", "error", err)
		_ = s.sessions.Clear()
	}
	if err != nil || !ok {
		s.mu.Lock()
		s.state = StateUnauthenticated
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = sess.User
	s.month = monthkey.FromTime(s.clock.Now())
	s.mu.Unlock()

	s.logger.Info("session restored", "user", sess.User.Email, "month", s.Month())
	s.fetch(ctx)
}

// Login authenticates against the remote API and persists the session.
func (s *Shell) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.establish(ctx, resp)
}

// Register validates locally, then creates the account. Validation
// failures never reach the network.
func (s *Shell) Register(ctx context.Context, reg core.Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	resp, err := s.api.Register(ctx, reg)
	if err != nil {
		return err
	}
	return s.establish(ctx, resp)
}

func (s *Shell) establish(ctx context.Context, resp api.AuthResponse) error {
	if err := s.sessions.Set(resp.Token, resp.User()); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = resp.User()
	s.month = monthkey.FromTime(s.clock.Now())
	s.lastErr = ""
	s.mu.Unlock()

	s.logger.Info("logged in", "user", resp.Email)
	s.fetch(ctx)
	return nil
}

// Logout clears the session, stops the rollover timer and discards the
// in-memory list. The selected month resets to the current one.
func (s *Shell) Logout() error {
	s.StopRollover()
	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	s.mu.Lock()
	s.state = StateUnauthenticated
	s.user = core.User{}
	s.month = monthkey.FromTime(s.clock.Now())
	s.transactions = nil
	s.lastErr = ""
	s.fetchGen++ // orphan any in-flight fetch
	s.mu.Unlock()

	s.logger.Info("logged out")
	return nil
}

// SelectMonth switches to an arbitrary month and loads it.
func (s *Shell) SelectMonth(ctx context.Context, month monthkey.Key) {
	s.mu.Lock()
	s.month = month
	s.mu.Unlock()
	s.logger.Info("month selected", "month", month, "label", month.Label())
	s.fetch(ctx)
}

// JumpToCurrentMonth switches back to the wall-clock month. A no-op when
// already there.
func (s *Shell) JumpToCurrentMonth(ctx context.Context) {
	current := monthkey.FromTime(s.clock.Now())
	s.mu.Lock()
	if s.month == current {
		s.mu.Unlock()
		return
	}
	s.month = current
	s.mu.Unlock()
	s.fetch(ctx)
}

// Refresh re-fetches the selected month from the server.
func (s *Shell) Refresh(ctx context.Context) {
	s.fetch(ctx)
}

// AddTransaction stamps the selected month onto input, creates it
// remotely, appends the created record, then re-fetches the whole month.
// The re-fetch is deliberate: the server list is the source of truth and
// one extra round trip buys reconciliation over optimistic drift.
func (s *Shell) AddTransaction(ctx context.Context, input core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	month := s.month
	s.mu.Unlock()
	input.MonthYear = month
	if input.TransactionDate.IsZero() {
		// Default to now, unless a past or future month is selected; the
		// date must fall inside the stamped bucket.
		now := s.clock.Now()
		if t, err := month.Time(); err == nil && monthkey.FromTime(now) != month {
			input.TransactionDate = t
		} else {
			input.TransactionDate = now
		}
	}

	if err := input.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.api.CreateTransaction(ctx, input)
	if err != nil {
		s.recordError(err)
		return core.Transaction{}, err
	}

	s.mu.Lock()
	s.transactions = append(s.transactions, created)
	s.mu.Unlock()

	s.logger.Info("transaction added", "id", created.ID, "type", created.Type, "amount", created.Amount)
	s.fetch(ctx)
	return created, nil
}

// DeleteTransaction removes id remotely, filters it from the in-memory
// list (a no-op when absent) and re-fetches. The API call is the one that
// fails for an unknown id.
func (s *Shell) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.api.DeleteTransaction(ctx, id); err != nil {
		s.recordError(err)
		return err
	}

	s.mu.Lock()
	kept := s.transactions[:0]
	for _, tx := range s.transactions {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	s.transactions = kept
	s.mu.Unlock()

	s.logger.Info("transaction deleted", "id", id)
	s.fetch(ctx)
	return nil
}

// fetch loads the selected month. Failures leave the previous list in
// place and surface as a dismissible error; a response superseded by a
// newer fetch or a logout is discarded.
func (s *Shell) fetch(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateAuthenticated {
		s.mu.Unlock()
		return
	}
	s.fetchGen++
	gen := s.fetchGen
	month := s.month
	s.mu.Unlock()

	txs, err := s.api.Transactions(ctx, month)
	if err != nil {
		s.logger.Warn("fetch failed", "month", month, "error", err)
		s.recordError(err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.fetchGen {
		s.logger.Debug("stale fetch discarded", "month", month)
		return
	}
	s.transactions = txs
	s.lastErr = ""
}

func (s *Shell) recordError(err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
}

// CurrentState returns the state machine's state.
func (s *Shell) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Month returns the selected month key.
func (s *Shell) Month() monthkey.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.month
}

// User returns the authenticated identity, zero when logged out.
func (s *Shell) User() core.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Transactions returns a copy of the loaded list.
func (s *Shell) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// LastError returns the current dismissible error message, empty when
// none.
func (s *Shell) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// DismissError clears the error banner.
func (s *Shell) DismissError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}
