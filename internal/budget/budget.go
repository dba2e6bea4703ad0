// Package budget keeps each user's per-category monthly limits in the
// local key-value store. Edits go through a draft: changes accumulate in
// a scratch copy and reach the persisted snapshot only on an explicit
// commit, so an abandoned edit never leaks into what is displayed or
// stored.
package budget

import (
	"encoding/json"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/kvstore"
)

// Category is one recognized budget category with its default monthly
// limit. The catalog pre-fills new users' snapshots; a zero limit means
// the category is inactive.
type Category struct {
	ID      string
	Name    string
	Default core.Amount
}

// Categories is the recognized category catalog, in display order.
var Categories = []Category{
	{ID: "food", Name: "Food & Dining", Default: core.NewAmount(300)},
	{ID: "transport", Name: "Transport", Default: core.NewAmount(150)},
	{ID: "shopping", Name: "Shopping", Default: core.NewAmount(200)},
	{ID: "bills", Name: "Bills & Utilities", Default: core.NewAmount(300)},
	{ID: "entertainment", Name: "Entertainment", Default: core.NewAmount(100)},
	{ID: "health", Name: "Health", Default: core.NewAmount(100)},
	{ID: "education", Name: "Education", Default: core.NewAmount(50)},
	{ID: "other", Name: "Other", Default: core.NewAmount(100)},
}

// Snapshot maps category id to monthly limit. Unset categories are
// treated as zero.
type Snapshot map[string]core.Amount

// Limit returns the limit for a category, zero when unset.
func (s Snapshot) Limit(categoryID string) core.Amount {
	return s[categoryID]
}

// Total sums every category limit in the snapshot.
func (s Snapshot) Total() core.Amount {
	var total core.Amount
	for _, v := range s {
		total = total.Add(v)
	}
	return total
}

func (s Snapshot) clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Defaults builds the catalog-filled snapshot new users start from.
func Defaults() Snapshot {
	s := make(Snapshot, len(Categories))
	for _, c := range Categories {
		s[c.ID] = c.Default
	}
	return s
}

// Store persists one snapshot per user.
type Store struct {
	store kvstore.Store
}

func NewStore(store kvstore.Store) *Store {
	return &Store{store: store}
}

// Load reads userID's snapshot. A user with no snapshot gets the default
// one, which is persisted immediately so later loads see the same values.
func (s *Store) Load(userID string) (Snapshot, error) {
	raw, ok, err := s.store.Get(kvstore.BudgetKey(userID))
	if err != nil {
		return nil, fmt.Errorf("read budgets: %w", err)
	}
	if !ok {
		defaults := Defaults()
		if err := s.Save(userID, defaults); err != nil {
			return nil, fmt.Errorf("persist default budgets: %w", err)
		}
		return defaults, nil
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("%w: budget record: %v", kvstore.ErrMalformedValue, err)
	}
	return snap, nil
}

// Save replaces userID's persisted snapshot wholesale.
func (s *Store) Save(userID string, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode budgets: %w", err)
	}
	if err := s.store.Set(kvstore.BudgetKey(userID), string(raw)); err != nil {
		return fmt.Errorf("write budgets: %w", err)
	}
	return nil
}

// Draft is an in-progress edit of a snapshot. It holds a copy; the
// original is untouched until the caller commits and saves.
type Draft struct {
	values Snapshot
}

// Begin starts an edit session over a copy of snap.
func Begin(snap Snapshot) *Draft {
	return &Draft{values: snap.clone()}
}

// Set replaces one category's draft limit.
func (d *Draft) Set(categoryID string, limit core.Amount) {
	d.values[categoryID] = limit
}

// Increment adds a fixed bonus to one category's draft limit, the "quick
// increment" edit.
func (d *Draft) Increment(categoryID string, bonus core.Amount) {
	d.values[categoryID] = d.values[categoryID].Add(bonus)
}

// Limit returns the draft limit for a category.
func (d *Draft) Limit(categoryID string) core.Amount {
	return d.values[categoryID]
}

// Commit returns the draft's contents for persisting. The returned
// snapshot is detached from the draft.
func (d *Draft) Commit() Snapshot {
	return d.values.clone()
}
