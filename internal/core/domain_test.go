package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseAmountIsTotal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{name: "plain", in: "42.50", want: 42.50},
		{name: "whitespace", in: "  7 ", want: 7},
		{name: "garbage falls back to zero", in: "abc", want: 0},
		{name: "empty falls back to zero", in: "", want: 0},
		{name: "negative parses", in: "-3", want: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.in)
			if !got.Equal(NewAmount(tt.want)) {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAmountUnmarshalFallsBackToZero(t *testing.T) {
	var tx Transaction
	payload := `{"id":"1","amount":{"bad":"shape"},"type":"expense","monthYear":"2024-03"}`
	if err := json.Unmarshal([]byte(payload), &tx); err != nil {
		t.Fatalf("unmarshal should not fail on bad amount: %v", err)
	}
	if !tx.Amount.IsZero() {
		t.Errorf("amount = %v, want zero", tx.Amount)
	}
}

func TestAmountUnmarshalNumberAndString(t *testing.T) {
	var tx Transaction
	if err := json.Unmarshal([]byte(`{"amount":12.5}`), &tx); err != nil {
		t.Fatal(err)
	}
	if !tx.Amount.Equal(NewAmount(12.5)) {
		t.Errorf("number amount = %v", tx.Amount)
	}
	if err := json.Unmarshal([]byte(`{"amount":"99.90"}`), &tx); err != nil {
		t.Fatal(err)
	}
	if !tx.Amount.Equal(NewAmount(99.90)) {
		t.Errorf("string amount = %v", tx.Amount)
	}
}

func TestTransactionValidate(t *testing.T) {
	march := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		tx      Transaction
		wantErr error
	}{
		{
			name: "valid",
			tx:   Transaction{Amount: NewAmount(10), Type: Expense, TransactionDate: march, MonthYear: "2024-03"},
		},
		{
			name:    "zero amount",
			tx:      Transaction{Amount: Amount{}, Type: Expense},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			tx:      Transaction{Amount: NewAmount(-5), Type: Income},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "bad type",
			tx:      Transaction{Amount: NewAmount(5), Type: "transfer"},
			wantErr: ErrInvalidType,
		},
		{
			name:    "month mismatch",
			tx:      Transaction{Amount: NewAmount(5), Type: Income, TransactionDate: march, MonthYear: "2024-04"},
			wantErr: ErrMonthMismatch,
		},
		{
			name: "no month set skips the match check",
			tx:   Transaction{Amount: NewAmount(5), Type: Income, TransactionDate: march},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistrationValidate(t *testing.T) {
	valid := Registration{
		Email:           "a@b.c",
		Password:        "secret",
		ConfirmPassword: "secret",
		FirstName:       "Ada",
		LastName:        "Lovelace",
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid registration rejected: %v", err)
	}

	mismatch := valid
	mismatch.ConfirmPassword = "other"
	if err := mismatch.Validate(); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("mismatch error = %v, want ErrPasswordMismatch", err)
	}

	noEmail := valid
	noEmail.Email = "  "
	if err := noEmail.Validate(); !errors.Is(err, ErrEmptyEmail) {
		t.Errorf("missing email error = %v", err)
	}

	noName := valid
	noName.LastName = ""
	if err := noName.Validate(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("missing name error = %v", err)
	}
}

func TestNormalizedCategory(t *testing.T) {
	if got := (Transaction{Category: " Food "}).NormalizedCategory(); got != "food" {
		t.Errorf("got %q", got)
	}
	if got := (Transaction{}).NormalizedCategory(); got != DefaultCategory {
		t.Errorf("got %q, want %q", got, DefaultCategory)
	}
}
