package sheets

import (
	"context"
	"fmt"
	"os"

	"github.com/xavierca1/leadflow/internal/ingestion"
)

// FileSource reads the workbook named by the source's FilePath on every call.
type FileSource struct{}

func NewFileSource() *FileSource {
	return &FileSource{}
}

func (s *FileSource) FetchRows(ctx context.Context, src ingestion.Source, afterRow int) (*ingestion.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ingestion.ErrSourceUnreachable, err)
	}
	if src.FilePath == "" {
		return nil, fmt.Errorf("%w: no file path configured", ingestion.ErrSourceUnreachable)
	}
	if _, err := os.Stat(src.FilePath); err != nil {
		return nil, fmt.Errorf("%w: %v", ingestion.ErrSourceUnreachable, err)
	}

	table, err := ReadWorkbookFile(src.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ingestion.ErrSourceUnreachable, err)
	}

	// Data row i sits on sheet row i+2.
	skip := afterRow - 1
	if skip < 0 {
		skip = 0
	}
	if skip > len(table.Rows) {
		skip = len(table.Rows)
	}

	out := make([]ingestion.RawRow, 0, len(table.Rows)-skip)
	for _, cells := range table.Rows[skip:] {
		out = append(out, ToRawRow(table.Header, cells))
	}
	// The whole workbook is read on every call.
	return &ingestion.FetchResult{Rows: out, RowsRead: len(table.Rows)}, nil
}
