package sheets

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/xavierca1/leadflow/internal/ingestion"
)

const defaultPageSize = 500

var ErrSheetNotFound = errors.New("sheet not found in spreadsheet")

// valuesClient is the slice of the Sheets API the adapter needs.
type valuesClient interface {
	Values(ctx context.Context, spreadsheetID, a1Range string) ([][]interface{}, error)
	// SheetRows maps each sheet title to its grid row count.
	SheetRows(ctx context.Context, spreadsheetID string) (map[string]int, error)
}

// RemoteSource reads rows from a Google Sheet page by page.
type RemoteSource struct {
	client   valuesClient
	pageSize int
}

// NewRemoteSource authenticates with a service-account key.
func NewRemoteSource(ctx context.Context, credentialsJSON []byte) (*RemoteSource, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, sheetsapi.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	svc, err := sheetsapi.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newRemoteSource(&apiClient{svc: svc}, defaultPageSize), nil
}

func newRemoteSource(client valuesClient, pageSize int) *RemoteSource {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &RemoteSource{client: client, pageSize: pageSize}
}

func (s *RemoteSource) FetchRows(ctx context.Context, src ingestion.Source, afterRow int) (*ingestion.FetchResult, error) {
	gridRows, err := s.gridRows(ctx, src.SpreadsheetID, src.SheetName)
	if err != nil {
		return nil, unreachable(err)
	}

	headerValues, err := s.client.Values(ctx, src.SpreadsheetID, quoteSheet(src.SheetName)+"!1:1")
	if err != nil {
		return nil, unreachable(err)
	}
	var header []string
	if len(headerValues) > 0 {
		header = NormalizeHeader(cellStrings(headerValues[0]))
	}

	if afterRow < 1 {
		afterRow = 1
	}
	var rows []ingestion.RawRow
	for start := afterRow + 1; start <= gridRows; start += s.pageSize {
		end := start + s.pageSize - 1
		if end > gridRows {
			end = gridRows
		}
		a1 := fmt.Sprintf("%s!A%d:ZZ%d", quoteSheet(src.SheetName), start, end)
		values, err := s.client.Values(ctx, src.SpreadsheetID, a1)
		if err != nil {
			return nil, unreachable(err)
		}
		for _, v := range values {
			rows = append(rows, ToRawRow(header, cellStrings(v)))
		}
		// The API trims trailing empty rows, so a short page is the last one.
		if len(values) < end-start+1 {
			break
		}
	}

	return &ingestion.FetchResult{Rows: rows, RowsRead: len(rows)}, nil
}

// ValidateAccess checks that the service account can read sheetName.
func (s *RemoteSource) ValidateAccess(ctx context.Context, spreadsheetID, sheetName string) error {
	_, err := s.gridRows(ctx, spreadsheetID, sheetName)
	return err
}

func (s *RemoteSource) gridRows(ctx context.Context, spreadsheetID, sheetName string) (int, error) {
	counts, err := s.client.SheetRows(ctx, spreadsheetID)
	if err != nil {
		return 0, err
	}
	n, ok := counts[sheetName]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)
	}
	return n, nil
}

func unreachable(err error) error {
	return fmt.Errorf("%w: %v", ingestion.ErrSourceUnreachable, err)
}

func cellStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c == nil {
			continue
		}
		out[i] = fmt.Sprint(c)
	}
	return out
}

type apiClient struct {
	svc *sheetsapi.Service
}

func (c *apiClient) Values(ctx context.Context, spreadsheetID, a1Range string) ([][]interface{}, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, a1Range).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (c *apiClient) SheetRows(ctx context.Context, spreadsheetID string) (map[string]int, error) {
	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties(title,gridProperties.rowCount)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties == nil {
			continue
		}
		rows := 0
		if sh.Properties.GridProperties != nil {
			rows = int(sh.Properties.GridProperties.RowCount)
		}
		out[sh.Properties.Title] = rows
	}
	return out, nil
}
