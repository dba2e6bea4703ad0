package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/monthkey"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	// DefaultCategory is used when a transaction carries no category tag.
	DefaultCategory = "uncategorized"
)

type (
	TransactionType string

	// Amount is a monetary value. The zero value is zero money.
	Amount struct {
		decimal.Decimal
	}

	// Transaction is a single recorded income or expense event. Transactions
	// are never mutated in place: they are created by user submission and
	// removed by explicit delete.
	Transaction struct {
		ID              string          `json:"id"`
		Amount          Amount          `json:"amount"`
		Type            TransactionType `json:"type"`
		Category        string          `json:"category"`
		Description     string          `json:"description,omitempty"`
		TransactionDate time.Time       `json:"transactionDate"`
		MonthYear       monthkey.Key    `json:"monthYear"`
	}

	User struct {
		Email     string `json:"email"`
		UserID    string `json:"userId"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}

	// Session pairs a bearer token with the user it identifies. Both are
	// set and cleared together; a session missing either does not exist.
	Session struct {
		Token string
		User  User
	}
)

var (
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrInvalidType      = errors.New("type must be income or expense")
	ErrMonthMismatch    = errors.New("monthYear does not match transaction date")
	ErrEmptyEmail       = errors.New("email is required")
	ErrEmptyPassword    = errors.New("password is required")
	ErrEmptyName        = errors.New("first and last name are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// NewAmount builds an Amount from a float input, e.g. a parsed form field.
func NewAmount(v float64) Amount {
	return Amount{decimal.NewFromFloat(v)}
}

// ParseAmount converts free-form input to an Amount. It is total: anything
// that does not parse as a decimal number yields zero rather than an error.
// Callers relying on the zero fallback should say so where they call it.
func ParseAmount(s string) Amount {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}
	}
	return Amount{d}
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{a.Decimal.Add(b.Decimal)}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{a.Decimal.Sub(b.Decimal)}
}

// Positive reports whether the amount is strictly greater than zero.
func (a Amount) Positive() bool {
	return a.Decimal.IsPositive()
}

// Equal reports whether two amounts represent the same value, independent
// of exponent.
func (a Amount) Equal(b Amount) bool {
	return a.Decimal.Equal(b.Decimal)
}

// String renders the amount with two decimal places, the display
// convention for all monetary values in the app.
func (a Amount) String() string {
	return a.Decimal.StringFixed(2)
}

// UnmarshalJSON accepts JSON numbers and numeric strings. Anything else,
// null included, decodes to zero: bad amounts in server payloads must not
// take down the aggregation pipeline.
func (a *Amount) UnmarshalJSON(b []byte) error {
	if err := a.Decimal.UnmarshalJSON(b); err != nil {
		a.Decimal = decimal.Decimal{}
	}
	return nil
}

func (a Amount) Validate() error {
	if !a.Positive() {
		return ErrInvalidAmount
	}
	return nil
}

// IsIncome reports whether the type is the income literal. Every other
// value, including empty, falls into the expense bucket when aggregating.
func (t TransactionType) IsIncome() bool {
	return t == Income
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

// NormalizedCategory returns the lowercase category tag, defaulting when
// the transaction carries none.
func (tx Transaction) NormalizedCategory() string {
	c := strings.ToLower(strings.TrimSpace(tx.Category))
	if c == "" {
		return DefaultCategory
	}
	return c
}

func (tx Transaction) Validate() error {
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if tx.MonthYear != "" && !tx.TransactionDate.IsZero() {
		if monthkey.FromTime(tx.TransactionDate) != tx.MonthYear {
			return ErrMonthMismatch
		}
	}
	return nil
}

// Registration is the input to account creation. ConfirmPassword is
// checked locally before any network call is made.
type Registration struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return ErrEmptyEmail
	}
	if r.Password == "" {
		return ErrEmptyPassword
	}
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return ErrEmptyName
	}
	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}
