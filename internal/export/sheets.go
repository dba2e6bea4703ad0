package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Sheets appends transaction rows to a Google spreadsheet. Credentials
// come from the OAuth client/token pair that cmd/oauth-init produces.
type Sheets struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// NewSheets builds the exporter from config. Call only when
// cfg.SheetsConfigured() holds.
func NewSheets(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Sheets, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	clientJSON, err := readEither(cfg.GoogleOAuthClientJSON, cfg.GoogleOAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("oauth client credentials: %w", err)
	}
	tokenJSON, err := readEither(cfg.GoogleOAuthTokenJSON, cfg.GoogleOAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("decode oauth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithHTTPClient(oauthCfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Sheets{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

// Append writes one row per transaction below the existing data, adding
// the header row to an empty sheet first.
func (s *Sheets) Append(ctx context.Context, txs []core.Transaction) error {
	if s.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if len(txs) == 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A:A", s.sheetName)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get sheet dimensions for %s: %w", s.sheetName, err)
	}

	var rows [][]any
	if len(resp.Values) == 0 {
		header := make([]any, len(CSVHeader))
		for i, h := range CSVHeader {
			header[i] = h
		}
		rows = append(rows, header)
	}
	for _, tx := range txs {
		rows = append(rows, []any{
			tx.TransactionDate.Format("2006-01-02"),
			string(tx.Type),
			tx.Category,
			tx.Description,
			tx.Amount.String(),
		})
	}

	vr := &gsheet.ValueRange{Values: rows}
	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", s.sheetName, err)
	}

	s.logger.Info("transactions exported to sheet",
		log.FieldSheetsRef, s.sheetName,
		"rows", len(rows))
	return nil
}

// readEither prefers inline JSON and falls back to reading a file.
func readEither(inline, file string) ([]byte, error) {
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		return b, nil
	}
	return nil, errors.New("not configured")
}
