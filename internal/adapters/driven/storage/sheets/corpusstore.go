// Package sheets reads the course corpus from a Google Sheets spreadsheet.
//
// The first row of the range holds the column headers (Kurskode, Kursnavn,
// Learning outcome - Knowledge, ...); each further row is one course. The
// sheet is read once when the store is opened. Derived fields are kept in
// memory only and recomputed on the next start.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/tabular"
	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/logger"
)

// DefaultRange reads the whole first sheet.
const DefaultRange = "Sheet1"

// Config holds spreadsheet access settings.
type Config struct {
	// SpreadsheetID is the ID from the spreadsheet URL (required).
	SpreadsheetID string

	// Range is the A1 range holding the table (default: Sheet1).
	Range string

	// APIKey grants read access to publicly shared sheets.
	APIKey string

	// AccessToken is an OAuth2 bearer token for private sheets.
	// Takes precedence over APIKey.
	AccessToken string

	// Endpoint overrides the API base URL.
	Endpoint string
}

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

// CorpusStore is a read-only corpus loaded from a spreadsheet.
type CorpusStore struct {
	*memory.CorpusStore
}

// OpenCorpusStore fetches the sheet and parses every row.
func OpenCorpusStore(ctx context.Context, cfg Config) (*CorpusStore, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, fmt.Errorf("%w: spreadsheet ID is required", domain.ErrInvalidInput)
	}
	if cfg.Range == "" {
		cfg.Range = DefaultRange
	}

	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	resp, err := svc.Spreadsheets.Values.Get(cfg.SpreadsheetID, cfg.Range).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet %s: %w", cfg.SpreadsheetID, err)
	}

	courses := ParseRows(resp.Values)
	logger.Info("Loaded %d courses from spreadsheet %s", len(courses), cfg.SpreadsheetID)
	return &CorpusStore{CorpusStore: memory.NewCorpusStore(courses...)}, nil
}

func clientOptions(cfg Config) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	switch {
	case cfg.AccessToken != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
		opts = append(opts, option.WithTokenSource(ts))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		return nil, errors.New("sheets: an API key or access token is required")
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	return opts, nil
}

// ParseRows converts a header row plus data rows into courses. Rows without
// a course code are skipped with a warning.
func ParseRows(values [][]any) []domain.Course {
	if len(values) == 0 {
		return nil
	}
	headers := cells(values[0])

	courses := make([]domain.Course, 0, len(values)-1)
	for i, row := range values[1:] {
		c := tabular.FromRecord(tabular.FromRow(headers, cells(row)))
		if c.IsEphemeral() {
			if len(row) > 0 {
				logger.Warn("spreadsheet row %d has no %s, skipping", i+2, tabular.ColCode)
			}
			continue
		}
		courses = append(courses, c)
	}
	return courses
}

func cells(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v != nil {
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

// Upsert is not supported; edit the spreadsheet instead.
func (s *CorpusStore) Upsert(_ context.Context, _ domain.Course) error {
	return fmt.Errorf("%w: spreadsheet corpus", domain.ErrReadOnly)
}
