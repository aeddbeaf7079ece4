package ingestion

import (
	"context"
	"fmt"
	"time"
)

type SourceKind string

const (
	SourceKindSheet  SourceKind = "google_sheet"
	SourceKindFile   SourceKind = "excel_file"
	SourceKindUpload SourceKind = "upload"
)

const (
	// FileSourceID is the cursor key used for the EXCEL_FILE_PATH feed.
	FileSourceID = "excel-import-config"
	// UploadSourceID is the log key used for manual spreadsheet uploads.
	UploadSourceID = "manual-upload"
)

// Source is a resolved feed the engine can read from.
type Source struct {
	ID            string
	Kind          SourceKind
	Label         string // default lead source label
	Platform      string // default platform when the row has none
	SpreadsheetID string
	SheetName     string
	FilePath      string
	PollInterval  time.Duration
}

// RawRow maps normalized column names to cell values.
type RawRow map[string]string

type FetchResult struct {
	Rows []RawRow
	// RowsRead counts the data rows the backend read to serve the call. Zero
	// means only Rows were read.
	RowsRead int
}

// RowSource returns the rows strictly after afterRow (1-based sheet row
// numbers, row 1 being the header). Unreadable sources must fail with an
// error wrapping ErrSourceUnreachable rather than return an empty result.
type RowSource interface {
	FetchRows(ctx context.Context, src Source, afterRow int) (*FetchResult, error)
}

// SourceRouter dispatches to the backend registered for a source kind.
type SourceRouter map[SourceKind]RowSource

func (r SourceRouter) FetchRows(ctx context.Context, src Source, afterRow int) (*FetchResult, error) {
	backend, ok := r[src.Kind]
	if !ok || backend == nil {
		return nil, fmt.Errorf("%w: no backend for %s", ErrSourceUnreachable, src.Kind)
	}
	return backend.FetchRows(ctx, src, afterRow)
}
