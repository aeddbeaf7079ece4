package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/xavierca1/leadflow/internal/entity"
)

const configurationColumns = `id, google_sheet_url, spreadsheet_id, sheet_name, is_active, poll_interval_minutes, created_at, updated_at`

type ConfigurationRepository struct {
	DB *sqlx.DB
}

func NewConfigurationRepository(db *sqlx.DB) *ConfigurationRepository {
	return &ConfigurationRepository{DB: db}
}

type configurationRow struct {
	ID                  string    `db:"id"`
	GoogleSheetURL      string    `db:"google_sheet_url"`
	SpreadsheetID       string    `db:"spreadsheet_id"`
	SheetName           string    `db:"sheet_name"`
	IsActive            bool      `db:"is_active"`
	PollIntervalMinutes int       `db:"poll_interval_minutes"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func (r configurationRow) toEntity() *entity.SourceConfiguration {
	c := entity.SourceConfiguration(r)
	return &c
}

func (r *ConfigurationRepository) Create(ctx context.Context, cfg *entity.SourceConfiguration) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if cfg.IsActive {
		if _, err := tx.ExecContext(ctx, `UPDATE import_configurations SET is_active = FALSE, updated_at = NOW() WHERE is_active`); err != nil {
			return fmt.Errorf("deactivate configurations: %w", err)
		}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO import_configurations (`+configurationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		cfg.ID, cfg.GoogleSheetURL, cfg.SpreadsheetID, cfg.SheetName, cfg.IsActive,
		cfg.PollIntervalMinutes, cfg.CreatedAt, cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert configuration: %w", err)
	}
	return tx.Commit()
}

func (r *ConfigurationRepository) FindByID(ctx context.Context, id string) (*entity.SourceConfiguration, error) {
	var row configurationRow
	if err := r.DB.GetContext(ctx, &row, `SELECT `+configurationColumns+` FROM import_configurations WHERE id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	return row.toEntity(), nil
}

func (r *ConfigurationRepository) FindActive(ctx context.Context) (*entity.SourceConfiguration, error) {
	var row configurationRow
	err := r.DB.GetContext(ctx, &row, `
		SELECT `+configurationColumns+` FROM import_configurations
		WHERE is_active ORDER BY created_at DESC LIMIT 1`)
	if err != nil {
		return nil, notFound(err)
	}
	return row.toEntity(), nil
}

func (r *ConfigurationRepository) Update(ctx context.Context, id string, upd entity.ConfigurationUpdate) (*entity.SourceConfiguration, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if upd.IsActive != nil && *upd.IsActive {
		if _, err := tx.ExecContext(ctx, `UPDATE import_configurations SET is_active = FALSE, updated_at = NOW() WHERE is_active AND id <> $1`, id); err != nil {
			return nil, fmt.Errorf("deactivate configurations: %w", err)
		}
	}

	var row configurationRow
	err = tx.GetContext(ctx, &row, `
		UPDATE import_configurations SET
			is_active = COALESCE($2, is_active),
			poll_interval_minutes = COALESCE($3, poll_interval_minutes),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+configurationColumns,
		id, upd.IsActive, upd.PollIntervalMinutes,
	)
	if err != nil {
		return nil, notFound(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

type CursorRepository struct {
	DB *sqlx.DB
}

func NewCursorRepository(db *sqlx.DB) *CursorRepository {
	return &CursorRepository{DB: db}
}

type cursorRow struct {
	SourceID          string         `db:"source_id"`
	LastProcessedRow  int            `db:"last_processed_row"`
	LastProcessedID   sql.NullString `db:"last_processed_id"`
	LastProcessedTime sql.NullTime   `db:"last_processed_time"`
	LastRunAt         time.Time      `db:"last_run_at"`
	NextRunAt         time.Time      `db:"next_run_at"`
}

func (r *CursorRepository) Find(ctx context.Context, sourceID string) (*entity.ImportCursor, error) {
	var row cursorRow
	err := r.DB.GetContext(ctx, &row, `
		SELECT source_id, last_processed_row, last_processed_id, last_processed_time, last_run_at, next_run_at
		FROM import_cursors WHERE source_id = $1`, sourceID)
	if err != nil {
		return nil, notFound(err)
	}
	cur := &entity.ImportCursor{
		SourceID:         row.SourceID,
		LastProcessedRow: row.LastProcessedRow,
		LastProcessedID:  row.LastProcessedID.String,
		LastRunAt:        row.LastRunAt,
		NextRunAt:        row.NextRunAt,
	}
	if row.LastProcessedTime.Valid {
		t := row.LastProcessedTime.Time
		cur.LastProcessedTime = &t
	}
	return cur, nil
}

// Upsert refuses to move last_processed_row backwards even under concurrent writers.
func (r *CursorRepository) Upsert(ctx context.Context, cur *entity.ImportCursor) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO import_cursors (source_id, last_processed_row, last_processed_id, last_processed_time, last_run_at, next_run_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source_id) DO UPDATE SET
			last_processed_row = EXCLUDED.last_processed_row,
			last_processed_id = COALESCE(EXCLUDED.last_processed_id, import_cursors.last_processed_id),
			last_processed_time = COALESCE(EXCLUDED.last_processed_time, import_cursors.last_processed_time),
			last_run_at = EXCLUDED.last_run_at,
			next_run_at = EXCLUDED.next_run_at
		WHERE import_cursors.last_processed_row <= EXCLUDED.last_processed_row`,
		cur.SourceID, cur.LastProcessedRow, nullString(cur.LastProcessedID), cur.LastProcessedTime,
		cur.LastRunAt, cur.NextRunAt,
	)
	if err != nil {
		return fmt.Errorf("upsert cursor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("upsert cursor %s: stored row is ahead of %d", cur.SourceID, cur.LastProcessedRow)
	}
	return nil
}

type ImportLogRepository struct {
	DB *sqlx.DB
}

func NewImportLogRepository(db *sqlx.DB) *ImportLogRepository {
	return &ImportLogRepository{DB: db}
}

type importLogRow struct {
	ID                string         `db:"id"`
	SourceID          string         `db:"source_id"`
	RunAt             time.Time      `db:"run_at"`
	Status            string         `db:"status"`
	RowsScanned       int            `db:"rows_scanned"`
	NewRowsDetected   int            `db:"new_rows_detected"`
	LeadsInserted     int            `db:"leads_inserted"`
	DuplicatesSkipped int            `db:"duplicates_skipped"`
	Errors            pq.StringArray `db:"errors"`
}

func (r *ImportLogRepository) Append(ctx context.Context, e *entity.ImportLog) error {
	errs := e.Errors
	if errs == nil {
		errs = []string{}
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO import_logs (id, source_id, run_at, status, rows_scanned, new_rows_detected, leads_inserted, duplicates_skipped, errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.SourceID, e.RunAt, string(e.Status), e.RowsScanned, e.NewRowsDetected,
		e.LeadsInserted, e.DuplicatesSkipped, pq.Array(errs),
	)
	if err != nil {
		return fmt.Errorf("append import log: %w", err)
	}
	return nil
}

func (r *ImportLogRepository) ListBySource(ctx context.Context, sourceID string, limit int) ([]*entity.ImportLog, error) {
	var rows []importLogRow
	err := r.DB.SelectContext(ctx, &rows, `
		SELECT id, source_id, run_at, status, rows_scanned, new_rows_detected, leads_inserted, duplicates_skipped, errors
		FROM import_logs WHERE source_id = $1
		ORDER BY run_at DESC LIMIT $2`, sourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list import logs: %w", err)
	}
	out := make([]*entity.ImportLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, &entity.ImportLog{
			ID:                row.ID,
			SourceID:          row.SourceID,
			RunAt:             row.RunAt,
			Status:            entity.ImportStatus(row.Status),
			RowsScanned:       row.RowsScanned,
			NewRowsDetected:   row.NewRowsDetected,
			LeadsInserted:     row.LeadsInserted,
			DuplicatesSkipped: row.DuplicatesSkipped,
			Errors:            append([]string{}, row.Errors...),
		})
	}
	return out, nil
}
