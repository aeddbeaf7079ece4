// Package sheets reads lead rows from spreadsheets: local .xlsx workbooks
// through excelize and remote Google Sheets through the Sheets v4 API.
package sheets

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/xavierca1/leadflow/internal/ingestion"
)

// legacyColumns is the column order of the original lead-form export, used
// when a sheet has no header row.
var legacyColumns = []string{
	"id", "created_time", "ad_id", "ad_name", "adset_id", "adset_name",
	"campaign_id", "campaign_name", "form_id", "form_name", "is_organic",
	"platform", "configuration_requested", "email", "full_name", "phone_number", "lead_status",
}

// Table is a worksheet split into normalized header and data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadWorkbook loads the first worksheet of an xlsx stream.
func ReadWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return firstSheet(f)
}

// ReadWorkbookFile loads the first worksheet of the xlsx file at path.
func ReadWorkbookFile(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return firstSheet(f)
}

func firstSheet(f *excelize.File) (*Table, error) {
	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(names[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", names[0], err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}
	return &Table{Header: NormalizeHeader(rows[0]), Rows: rows[1:]}, nil
}

// NormalizeHeader maps raw header cells onto the column vocabulary.
func NormalizeHeader(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = ingestion.NormalizeColumn(c)
	}
	return out
}

// RawRows converts the data rows to column maps.
func (t *Table) RawRows() []ingestion.RawRow {
	out := make([]ingestion.RawRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, ToRawRow(t.Header, r))
	}
	return out
}

// ToRawRow zips header and cells. Short rows leave trailing columns empty;
// cells beyond the header are dropped.
func ToRawRow(header, cells []string) ingestion.RawRow {
	if !hasHeader(header) {
		header = legacyColumns
	}
	row := make(ingestion.RawRow, len(header))
	for i, col := range header {
		if col == "" {
			continue
		}
		v := ""
		if i < len(cells) {
			v = strings.TrimSpace(cells[i])
		}
		if _, seen := row[col]; seen && v == "" {
			continue
		}
		row[col] = v
	}
	return row
}

func hasHeader(header []string) bool {
	for _, h := range header {
		if h != "" {
			return true
		}
	}
	return false
}
