// Package export writes transaction data out of the app: JSON for full
// backups, CSV for the current month, and an optional Google Sheets
// append for spreadsheet users.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"fintrack/internal/core"
)

// CSVHeader matches the column layout of the CSV export.
var CSVHeader = []string{"Date", "Type", "Category", "Description", "Amount"}

// JSON writes the full transaction list as indented JSON.
func JSON(w io.Writer, txs []core.Transaction) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(txs); err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	return nil
}

// CSV writes the list in Date,Type,Category,Description,Amount order.
// encoding/csv handles quoting for fields containing commas or quotes.
func CSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txs {
		row := []string{
			tx.TransactionDate.Format("2006-01-02"),
			string(tx.Type),
			tx.Category,
			tx.Description,
			tx.Amount.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
