package shell

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/kvstore"
	"fintrack/internal/log"
	"fintrack/internal/monthkey"
	"fintrack/internal/session"
)

// fakeClock is a manually advanced clock. AfterFunc callbacks run
// synchronously inside Advance, on the test goroutine.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	fn      func()
	stopped bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) func() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		fired := t.stopped
		t.stopped = true
		return !fired
	}
}

// Advance moves the clock forward and fires every due timer in order.
// Callbacks may arm new timers; those fire too if already due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due *fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.at.After(c.now) {
				due = t
				break
			}
		}
		if due != nil {
			due.stopped = true
		}
		c.mu.Unlock()

		if due == nil {
			return
		}
		due.fn()
	}
}

// fakeServer is an in-memory transaction service backing the httptest
// handler.
type fakeServer struct {
	mu       sync.Mutex
	byMonth  map[monthkey.Key][]core.Transaction
	nextID   int
	failList bool
	hits     int
}

func newFakeServer() *fakeServer {
	return &fakeServer{byMonth: map[monthkey.Key][]core.Transaction{}, nextID: 1}
}

func (f *fakeServer) seed(tx core.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tx.ID == "" {
		tx.ID = fmt.Sprintf("tx-%d", f.nextID)
		f.nextID++
	}
	f.byMonth[tx.MonthYear] = append(f.byMonth[tx.MonthYear], tx)
}

func (f *fakeServer) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits++

	switch {
	case r.Method == http.MethodPost && (r.URL.Path == "/auth/login" || r.URL.Path == "/auth/register"):
		json.NewEncoder(w).Encode(api.AuthResponse{
			Token:     "tok-1",
			Email:     "ada@example.com",
			UserID:    "7",
			FirstName: "Ada",
			LastName:  "Lovelace",
		})

	case r.Method == http.MethodGet && r.URL.Path == "/transactions":
		if f.failList {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		month := monthkey.Key(r.URL.Query().Get("monthYear"))
		txs := f.byMonth[month]
		if txs == nil {
			txs = []core.Transaction{}
		}
		json.NewEncoder(w).Encode(txs)

	case r.Method == http.MethodPost && r.URL.Path == "/transactions":
		var tx core.Transaction
		if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		tx.ID = fmt.Sprintf("tx-%d", f.nextID)
		f.nextID++
		f.byMonth[tx.MonthYear] = append(f.byMonth[tx.MonthYear], tx)
		json.NewEncoder(w).Encode(tx)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/transactions/"):
		id := strings.TrimPrefix(r.URL.Path, "/transactions/")
		for month, txs := range f.byMonth {
			kept := txs[:0]
			for _, tx := range txs {
				if tx.ID != id {
					kept = append(kept, tx)
				}
			}
			f.byMonth[month] = kept
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.NotFound(w, r)
	}
}

type harness struct {
	shell    *Shell
	clock    *fakeClock
	server   *fakeServer
	sessions *session.Manager
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()

	server := newFakeServer()
	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)

	sessions := session.NewManager(kvstore.NewMemory())
	client := api.NewClient(srv.URL, 5*time.Second, sessions.Token)
	clock := newFakeClock(now)
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})

	return &harness{
		shell:    New(client, sessions, clock, logger),
		clock:    clock,
		server:   server,
		sessions: sessions,
	}
}

func march(day int) time.Time {
	return time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC)
}

func TestBootstrapWithoutSession(t *testing.T) {
	h := newHarness(t, march(15))
	require.Equal(t, StateLoading, h.shell.CurrentState())

	h.shell.Bootstrap(context.Background())

	assert.Equal(t, StateUnauthenticated, h.shell.CurrentState())
	assert.Equal(t, 0, h.server.requestCount())
}

func TestBootstrapRestoresSession(t *testing.T) {
	h := newHarness(t, march(15))
	require.NoError(t, h.sessions.Set("tok-1", core.User{Email: "ada@example.com", UserID: "7"}))
	h.server.seed(core.Transaction{Amount: core.NewAmount(40), Type: core.Expense, MonthYear: "2024-03", TransactionDate: march(2)})

	h.shell.Bootstrap(context.Background())

	assert.Equal(t, StateAuthenticated, h.shell.CurrentState())
	assert.Equal(t, "ada@example.com", h.shell.User().Email)
	assert.Equal(t, monthkey.Key("2024-03"), h.shell.Month())
	assert.Len(t, h.shell.Transactions(), 1)
}

func TestBootstrapDiscardsCorruptSession(t *testing.T) {
	store := kvstore.NewMemory()
	require.NoError(t, store.Set(kvstore.KeyToken, "tok"))
	require.NoError(t, store.Set(kvstore.KeyUser, "{broken"))

	h := newHarness(t, march(15))
	h.sessions = session.NewManager(store)
	h.shell.sessions = h.sessions

	h.shell.Bootstrap(context.Background())

	assert.Equal(t, StateUnauthenticated, h.shell.CurrentState())
	assert.False(t, h.sessions.IsAuthenticated())
}

func TestLoginEstablishesSessionAndLoadsMonth(t *testing.T) {
	h := newHarness(t, march(15))
	h.server.seed(core.Transaction{Amount: core.NewAmount(1500), Type: core.Income, MonthYear: "2024-03", TransactionDate: march(1)})

	require.NoError(t, h.shell.Login(context.Background(), "ada@example.com", "pw"))

	assert.Equal(t, StateAuthenticated, h.shell.CurrentState())
	assert.Equal(t, "7", h.shell.User().UserID)
	assert.True(t, h.sessions.IsAuthenticated())
	require.Len(t, h.shell.Transactions(), 1)
	assert.Equal(t, core.Income, h.shell.Transactions()[0].Type)
}

func TestRegisterValidatesBeforeNetwork(t *testing.T) {
	h := newHarness(t, march(15))

	err := h.shell.Register(context.Background(), core.Registration{
		Email:           "grace@example.com",
		Password:        "pw",
		ConfirmPassword: "different",
		FirstName:       "Grace",
		LastName:        "Hopper",
	})

	require.ErrorIs(t, err, core.ErrPasswordMismatch)
	assert.Equal(t, 0, h.server.requestCount())
	assert.Equal(t, StateLoading, h.shell.CurrentState())
}

func TestAddTransactionStampsSelectedMonth(t *testing.T) {
	h := newHarness(t, march(15))
	require.NoError(t, h.shell.Login(context.Background(), "ada@example.com", "pw"))
	h.shell.SelectMonth(context.Background(), "2024-01")

	created, err := h.shell.AddTransaction(context.Background(), core.Transaction{
		Amount:   core.NewAmount(25),
		Type:     core.Expense,
		Category: "food",
	})
	require.NoError(t, err)

	assert.Equal(t, "tx-1", created.ID)
	assert.Equal(t, monthkey.Key("2024-01"), created.MonthYear)
	assert.False(t, created.TransactionDate.IsZero())

	// The list reflects the post-create server state.
	require.Len(t, h.shell.Transactions(), 1)
	assert.Equal(t, "tx-1", h.shell.Transactions()[0].ID)
}

func TestAddTransactionRejectsInvalidInputLocally(t *testing.T) {
	h := newHarness(t, march(15))
	require.NoError(t, h.shell.Login(context.Background(), "ada@example.com", "pw"))
	before := h.server.requestCount()

	_, err := h.shell.AddTransaction(context.Background(), core.Transaction{
		Amount: core.NewAmount(0),
		Type:   core.Expense,
	})

	require.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Equal(t, before, h.server.requestCount())
}

func TestDeleteTransaction(t *testing.T) {
	h := newHarness(t, march(15))
	h.server.seed(core.Transaction{ID: "tx-a", Amount: core.NewAmount(10), Type: core.Expense, MonthYear: "2024-03", TransactionDate: march(2)})
	h.server.seed(core.Transaction{ID: "tx-b", Amount: core.NewAmount(20), Type: core.Expense, MonthYear: "2024-03", TransactionDate: march(3)})
	require.NoError(t, h.shell.Login(context.Background(), "ada@example.com", "pw"))
	require.Len(t, h.shell.Transactions(), 2)

	require.NoError(t, h.shell.DeleteTransaction(context.Background(), "tx-a"))

	txs := h.shell.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "tx-b", txs[0].ID)
}

func TestFetchFailureKeepsPreviousList(t *testing.T) {
	h := newHarness(t, march(15))
	h.server.seed(core.Transaction{ID: "tx-a", Amount: core.NewAmount(10), Type: core.Expense, MonthYear: "2024-03", TransactionDate: march(2)})
	require.NoError(t, h.shell.Login(context.Background(), "ada@example.com", "pw"))
	require.Len(t, h.shell.Transactions(), 1)

	h.server.mu.Lock()
	h.server.failList = true
	h.server.mu.Unlock()

	h.shell.Refresh(context.Background())

	assert.Len(t, h.shell.Transactions(), 1, "stale data beats no data")
	assert.NotEmpty(t, h.shell.LastError())

	h.shell.DismissError()
	assert.Empty(t, h.shell.LastError())
}

func TestSuccessfulFetchClearsError(t *testing.T) {
	h := newHarness(t, march(15))
	require.NoError(t, h.shell.Login(context.Background(), "ada@example.com", "pw"))

	h.server.mu.Lock()
	h.server.failList = true
	h.server.mu.Unlock()
	h.shell.Refresh(context.Background())
	require.NotEmpty(t, h.shell.LastError())

	h.server.mu.Lock()
	h.server.failList = false
	h.server.mu.Unlock()
	h.shell.Refresh(context.Background())

	assert.Empty(t, h.shell.LastError())
}

func TestJumpToCurrentMonth(t *testing.T) {
	h := newHarness(t, march(15))
	require.NoError(t, h.shell.Login(context.Background(), "ada@example.com", "pw"))

	h.shell.SelectMonth(context.Background(), "2023-11")
	require.Equal(t, monthkey.Key("2023-11"), h.shell.Month())

	h.shell.JumpToCurrentMonth(context.Background())
	assert.Equal(t, monthkey.Key("2024-03"), h.shell.Month())
}

func TestLogoutResetsState(t *testing.T) {
	h := newHarness(t, march(15))
	h.server.seed(core.Transaction{Amount: core.NewAmount(10), Type: core.Expense, MonthYear: "2024-03", TransactionDate: march(2)})
	require.NoError(t, h.shell.Login(context.Background(), "ada@example.com", "pw"))
	h.shell.SelectMonth(context.Background(), "2023-11")

	require.NoError(t, h.shell.Logout())

	assert.Equal(t, StateUnauthenticated, h.shell.CurrentState())
	assert.Equal(t, core.User{}, h.shell.User())
	assert.Equal(t, monthkey.Key("2024-03"), h.shell.Month())
	assert.Empty(t, h.shell.Transactions())
	assert.False(t, h.sessions.IsAuthenticated())
}

func TestRolloverAcrossMidnight(t *testing.T) {
	start := time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC)
	h := newHarness(t, start)
	h.server.seed(core.Transaction{Amount: core.NewAmount(5), Type: core.Expense, MonthYear: "2024-04", TransactionDate: start.Add(2 * time.Hour)})
	require.NoError(t, h.shell.Login(context.Background(), "ada@example.com", "pw"))
	require.Equal(t, monthkey.Key("2024-03"), h.shell.Month())

	h.shell.StartRollover(context.Background())
	h.clock.Advance(2 * time.Hour)

	assert.Equal(t, monthkey.Key("2024-04"), h.shell.Month())
	require.Len(t, h.shell.Transactions(), 1)
	assert.Equal(t, monthkey.Key("2024-04"), h.shell.Transactions()[0].MonthYear)
}

func TestRolloverImmediateCheckOnStart(t *testing.T) {
	// Selection fell behind before the schedule was armed; the initial
	// check catches up without waiting for midnight.
	start := time.Date(2024, time.April, 1, 0, 30, 0, 0, time.UTC)
	h := newHarness(t, start)
	require.NoError(t, h.shell.Login(context.Background(), "ada@example.com", "pw"))
	h.shell.SelectMonth(context.Background(), "2024-03")

	h.shell.StartRollover(context.Background())

	assert.Equal(t, monthkey.Key("2024-04"), h.shell.Month())
}

func TestStopRolloverCancelsPendingWakeup(t *testing.T) {
	start := time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC)
	h := newHarness(t, start)
	require.NoError(t, h.shell.Login(context.Background(), "ada@example.com", "pw"))

	h.shell.StartRollover(context.Background())
	h.shell.StopRollover()
	h.clock.Advance(2 * time.Hour)

	assert.Equal(t, monthkey.Key("2024-03"), h.shell.Month())
}

func TestRolloverDoesNothingWhileLoggedOut(t *testing.T) {
	start := time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC)
	h := newHarness(t, start)
	h.shell.Bootstrap(context.Background())

	h.shell.StartRollover(context.Background())
	h.clock.Advance(2 * time.Hour)

	assert.Equal(t, StateUnauthenticated, h.shell.CurrentState())
	assert.Equal(t, 0, h.server.requestCount())
}

func TestUntilNextMidnight(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Duration
	}{
		{time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC), time.Hour},
		{time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 24 * time.Hour},
		{time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC), 11*time.Hour + 30*time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, untilNextMidnight(tt.now), "now=%s", tt.now)
	}
}
