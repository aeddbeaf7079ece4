package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadflow/internal/ingestion"
)

// fakeSheet serves a grid of rows; row 1 is the header.
type fakeSheet struct {
	title    string
	gridRows int
	grid     [][]interface{}
	ranges   []string
	err      error
}

func (f *fakeSheet) SheetRows(context.Context, string) (map[string]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string]int{f.title: f.gridRows}, nil
}

func (f *fakeSheet) Values(_ context.Context, _ string, a1 string) ([][]interface{}, error) {
	f.ranges = append(f.ranges, a1)
	rng := a1[strings.LastIndex(a1, "!")+1:]
	if rng == "1:1" {
		return f.grid[:1], nil
	}
	var start, end int
	if _, err := fmt.Sscanf(rng, "A%d:ZZ%d", &start, &end); err != nil {
		return nil, err
	}
	if start > len(f.grid) {
		return nil, nil
	}
	if end > len(f.grid) {
		end = len(f.grid)
	}
	return f.grid[start-1 : end], nil
}

func TestRemoteSourcePagesFromCursor(t *testing.T) {
	grid := [][]interface{}{{"Name", "Phone"}}
	for i := 0; i < 7; i++ {
		grid = append(grid, []interface{}{fmt.Sprintf("Lead %d", i+2), fmt.Sprintf("55501%02d", i)})
	}
	fake := &fakeSheet{title: "Leads Q1", gridRows: 1000, grid: grid}
	src := newRemoteSource(fake, 3)

	res, err := src.FetchRows(context.Background(), ingestion.Source{SpreadsheetID: "abc", SheetName: "Leads Q1"}, 2)
	require.NoError(t, err)

	require.Len(t, res.Rows, 6)
	assert.Equal(t, "Lead 3", res.Rows[0]["name"])
	assert.Equal(t, "Lead 8", res.Rows[5]["name"])
	assert.Equal(t, 6, res.RowsRead)
	assert.Equal(t, []string{
		"'Leads Q1'!1:1",
		"'Leads Q1'!A3:ZZ5",
		"'Leads Q1'!A6:ZZ8",
		"'Leads Q1'!A9:ZZ11",
	}, fake.ranges)
}

func TestRemoteSourceStopsAtGridEnd(t *testing.T) {
	fake := &fakeSheet{title: "S", gridRows: 3, grid: [][]interface{}{
		{"name", "phone"}, {"A", "1"}, {}, {"C", "3"},
	}}

	res, err := newRemoteSource(fake, 10).FetchRows(context.Background(), ingestion.Source{SheetName: "S"}, 1)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "", res.Rows[1]["name"])
}

func TestRemoteSourceErrorsAreUnreachable(t *testing.T) {
	fake := &fakeSheet{err: errors.New("403: caller does not have permission")}
	_, err := newRemoteSource(fake, 10).FetchRows(context.Background(), ingestion.Source{SheetName: "S"}, 1)
	assert.ErrorIs(t, err, ingestion.ErrSourceUnreachable)

	missing := &fakeSheet{title: "Other", gridRows: 10, grid: [][]interface{}{{"name"}}}
	_, err = newRemoteSource(missing, 10).FetchRows(context.Background(), ingestion.Source{SheetName: "S"}, 1)
	assert.ErrorIs(t, err, ingestion.ErrSourceUnreachable)
	assert.ErrorIs(t, newRemoteSource(missing, 10).ValidateAccess(context.Background(), "id", "S"), ErrSheetNotFound)
}

func TestExtractSpreadsheetID(t *testing.T) {
	id, err := ExtractSpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-d_9xyz/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, "1AbC-d_9xyz", id)

	_, err = ExtractSpreadsheetID("https://example.com/sheet")
	assert.ErrorIs(t, err, ErrInvalidSheetURL)
}

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "'Bob''s Leads'", quoteSheet("Bob's Leads"))
}
