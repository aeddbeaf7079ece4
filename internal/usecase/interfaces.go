package usecase

import (
	"context"

	"github.com/xavierca1/leadflow/internal/infra/worker"
	"github.com/xavierca1/leadflow/internal/ingestion"
)

// ImportScheduler is the subset of the background scheduler the import use
// case drives.
type ImportScheduler interface {
	Trigger(ctx context.Context, sourceID string) worker.TriggerResult
	RunExclusive(ctx context.Context, fn func(ctx context.Context) error) error
}

type UploadIngester interface {
	IngestUpload(ctx context.Context, req ingestion.UploadRequest) (*ingestion.Result, error)
}

// SheetAccessValidator checks that a spreadsheet tab is readable.
type SheetAccessValidator interface {
	ValidateAccess(ctx context.Context, spreadsheetID, sheetName string) error
}
