// Package aggregate derives summaries, category breakdowns and yearly
// series from an in-memory transaction list. Every function here is pure
// and total: no I/O, no errors, zeros for empty input.
package aggregate

import (
	"sort"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/monthkey"
)

type (
	// Summary is the income/expense/balance/count aggregate over a
	// transaction set.
	Summary struct {
		Income   core.Amount `json:"income"`
		Expenses core.Amount `json:"expenses"`
		Balance  core.Amount `json:"balance"`
		Count    int         `json:"count"`
	}

	// CategoryAmount is one slice of a per-category breakdown.
	CategoryAmount struct {
		Name  string      `json:"name"`
		Value core.Amount `json:"value"`
	}

	// MonthPoint is one month of a yearly series.
	MonthPoint struct {
		Name     string       `json:"name"`
		MonthKey monthkey.Key `json:"monthKey"`
		Income   core.Amount  `json:"income"`
		Expenses core.Amount  `json:"expenses"`
		Balance  core.Amount  `json:"balance"`
	}

	// YearTotals sums a whole calendar year.
	YearTotals struct {
		TotalIncome   core.Amount `json:"totalIncome"`
		TotalExpenses core.Amount `json:"totalExpenses"`
		Balance       core.Amount `json:"balance"`
	}
)

// Summarize sums amounts across the list, branching on type. Any type
// other than the income literal counts as an expense.
func Summarize(txs []core.Transaction) Summary {
	var s Summary
	for _, tx := range txs {
		if tx.Type.IsIncome() {
			s.Income = s.Income.Add(tx.Amount)
		} else {
			s.Expenses = s.Expenses.Add(tx.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expenses)
	s.Count = len(txs)
	return s
}

// CategoryBreakdown groups transactions of the given type by category and
// sums each group. Grouping is case-insensitive on the tag; output names
// are the capitalized tag. Groups appear in first-encounter order.
func CategoryBreakdown(txs []core.Transaction, typ core.TransactionType) []CategoryAmount {
	totals := make(map[string]core.Amount)
	var order []string

	for _, tx := range txs {
		if matchesType(tx, typ) {
			key := tx.NormalizedCategory()
			if _, seen := totals[key]; !seen {
				order = append(order, key)
			}
			totals[key] = totals[key].Add(tx.Amount)
		}
	}

	out := make([]CategoryAmount, 0, len(order))
	for _, key := range order {
		out = append(out, CategoryAmount{Name: capitalize(key), Value: totals[key]})
	}
	return out
}

// YearlySeries returns one point per calendar month of year, in order.
// The result always has exactly 12 entries; months without transactions
// carry zeros.
func YearlySeries(txs []core.Transaction, year int) []MonthPoint {
	series := make([]MonthPoint, 0, 12)
	for month := 1; month <= 12; month++ {
		key := monthkey.ForMonth(year, month)
		p := MonthPoint{Name: key.ShortLabel(), MonthKey: key}
		for _, tx := range txs {
			if tx.MonthYear != key {
				continue
			}
			if tx.Type.IsIncome() {
				p.Income = p.Income.Add(tx.Amount)
			} else {
				p.Expenses = p.Expenses.Add(tx.Amount)
			}
		}
		p.Balance = p.Income.Sub(p.Expenses)
		series = append(series, p)
	}
	return series
}

// YearlyTotals sums income and expenses across every transaction whose
// month key falls in year, independent of the per-month series.
func YearlyTotals(txs []core.Transaction, year int) YearTotals {
	var t YearTotals
	for _, tx := range txs {
		if !tx.MonthYear.InYear(year) {
			continue
		}
		if tx.Type.IsIncome() {
			t.TotalIncome = t.TotalIncome.Add(tx.Amount)
		} else {
			t.TotalExpenses = t.TotalExpenses.Add(tx.Amount)
		}
	}
	t.Balance = t.TotalIncome.Sub(t.TotalExpenses)
	return t
}

// DistinctMonths extracts the unique month keys present in the list,
// newest first. Months with no transactions do not appear.
func DistinctMonths(txs []core.Transaction) []monthkey.Key {
	seen := make(map[monthkey.Key]struct{})
	var months []monthkey.Key
	for _, tx := range txs {
		if _, ok := seen[tx.MonthYear]; ok {
			continue
		}
		seen[tx.MonthYear] = struct{}{}
		months = append(months, tx.MonthYear)
	}
	// Key ordering is chronological, so descending string order is
	// newest-first.
	sort.Slice(months, func(i, j int) bool { return months[i] > months[j] })
	return months
}

func matchesType(tx core.Transaction, typ core.TransactionType) bool {
	if typ == core.Income {
		return tx.Type.IsIncome()
	}
	return !tx.Type.IsIncome()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
