// Package kvstore provides the persistent string-keyed store the client
// keeps its session and budget state in. Collaborators receive a Store
// explicitly instead of reading a process-wide singleton, so tests can
// substitute the in-memory implementation.
package kvstore

import (
	"errors"
	"sync"
)

// ErrMalformedValue wraps JSON decode failures on persisted values so
// callers can distinguish corrupt state from storage failures.
var ErrMalformedValue = errors.New("malformed persisted value")

// Store is a synchronous string-keyed store. Get reports presence
// separately from errors; a missing key is not an error.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Well-known keys. Budget snapshots use BudgetKey(userID).
const (
	KeyToken = "token"
	KeyUser  = "user"

	budgetKeyPrefix = "budgets_"
)

// BudgetKey returns the storage key holding userID's budget snapshot.
func BudgetKey(userID string) string {
	return budgetKeyPrefix + userID
}

// Memory is a map-backed Store for tests and ephemeral runs.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
