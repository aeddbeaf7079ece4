package entity

import (
	"context"
	"time"
)

// SourceConfiguration describes one polled remote spreadsheet.
type SourceConfiguration struct {
	ID                  string    `json:"id"`
	GoogleSheetURL      string    `json:"google_sheet_url"`
	SpreadsheetID       string    `json:"spreadsheet_id"`
	SheetName           string    `json:"sheet_name"`
	IsActive            bool      `json:"is_active"`
	PollIntervalMinutes int       `json:"poll_interval_minutes"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (c *SourceConfiguration) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMinutes) * time.Minute
}

type ConfigurationUpdate struct {
	IsActive            *bool
	PollIntervalMinutes *int
}

type ConfigurationRepositoryInterface interface {
	// Create stores cfg and, when cfg is active, deactivates every other configuration.
	Create(ctx context.Context, cfg *SourceConfiguration) error
	FindByID(ctx context.Context, id string) (*SourceConfiguration, error)
	// FindActive returns ErrNotFound when no configuration is active.
	FindActive(ctx context.Context) (*SourceConfiguration, error)
	Update(ctx context.Context, id string, upd ConfigurationUpdate) (*SourceConfiguration, error)
}

// ImportCursor is the per-source bookmark of ingestion progress.
type ImportCursor struct {
	SourceID          string     `json:"source_id"`
	LastProcessedRow  int        `json:"last_processed_row"`
	LastProcessedID   string     `json:"last_processed_id,omitempty"`
	LastProcessedTime *time.Time `json:"last_processed_time,omitempty"`
	LastRunAt         time.Time  `json:"last_run_at"`
	NextRunAt         time.Time  `json:"next_run_at"`
}

type CursorRepositoryInterface interface {
	// Find returns ErrNotFound when the source has never completed a run.
	Find(ctx context.Context, sourceID string) (*ImportCursor, error)
	// Upsert keeps the stored LastProcessedID/Time when the new value is empty.
	Upsert(ctx context.Context, cur *ImportCursor) error
}

type ImportStatus string

const (
	ImportSuccess ImportStatus = "success"
	ImportPartial ImportStatus = "partial"
	ImportError   ImportStatus = "error"
)

// ImportLog is the append-only audit record of one run.
type ImportLog struct {
	ID                string       `json:"id"`
	SourceID          string       `json:"source_id"`
	RunAt             time.Time    `json:"run_at"`
	Status            ImportStatus `json:"status"`
	RowsScanned       int          `json:"rows_scanned"`
	NewRowsDetected   int          `json:"new_rows_detected"`
	LeadsInserted     int          `json:"leads_inserted"`
	DuplicatesSkipped int          `json:"duplicates_skipped"`
	Errors            []string     `json:"errors"`
}

type ImportLogRepositoryInterface interface {
	Append(ctx context.Context, entry *ImportLog) error
	// ListBySource returns entries most recent first.
	ListBySource(ctx context.Context, sourceID string, limit int) ([]*ImportLog, error)
}
