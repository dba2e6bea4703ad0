package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func sampleTransactions() []core.Transaction {
	return []core.Transaction{
		{
			ID:              "1",
			Amount:          core.NewAmount(1500),
			Type:            core.Income,
			Category:        "salary",
			Description:     "March salary",
			TransactionDate: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
			MonthYear:       "2024-03",
		},
		{
			ID:              "2",
			Amount:          core.NewAmount(9.5),
			Type:            core.Expense,
			Category:        "food",
			Description:     `lunch, "al taglio"`,
			TransactionDate: time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC),
			MonthYear:       "2024-03",
		},
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sampleTransactions()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"2024-03-01", "income", "salary", "March salary", "1500.00"}, rows[1])
	// Comma and quotes in the description survive the round trip.
	assert.Equal(t, []string{"2024-03-04", "expense", "food", `lunch, "al taglio"`, "9.50"}, rows[2])
}

func TestCSVEmptyListStillWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, nil))

	assert.Equal(t, strings.Join(CSVHeader, ",")+"\n", buf.String())
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleTransactions()))

	var decoded []core.Transaction
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "1", decoded[0].ID)
	assert.True(t, decoded[1].Amount.Equal(core.NewAmount(9.5)))

	// Indented output, one field per line.
	assert.Contains(t, buf.String(), "\n  {")
}

func TestJSONEmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, nil))
	assert.Equal(t, "null\n", buf.String())
}
