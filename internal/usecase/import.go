package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/entity"
	"github.com/xavierca1/leadflow/internal/infra/sheets"
	"github.com/xavierca1/leadflow/internal/infra/worker"
	"github.com/xavierca1/leadflow/internal/ingestion"
)

const (
	defaultPollMinutes = 10
	defaultLogLimit    = 50
	maxLogLimit        = 100
)

type ImportUseCase struct {
	Configs   entity.ConfigurationRepositoryInterface
	Cursors   *ingestion.CursorStore
	Logs      entity.ImportLogRepositoryInterface
	Scheduler ImportScheduler
	Uploads   UploadIngester
	// Sheets is nil when no Google credentials are configured; sheet access
	// is then checked on the first run instead.
	Sheets SheetAccessValidator
	Logger logrus.FieldLogger
}

// GetConfiguration returns the active configuration, or nil when none is.
func (uc *ImportUseCase) GetConfiguration(ctx context.Context) (*entity.SourceConfiguration, error) {
	cfg, err := uc.Configs.FindActive(ctx)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, technical("failed to load import configuration", err)
	}
	return cfg, nil
}

// CreateConfiguration stores a new active sheet configuration, deactivating
// the previous one.
func (uc *ImportUseCase) CreateConfiguration(ctx context.Context, input CreateConfigurationInput) (*entity.SourceConfiguration, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	spreadsheetID, err := sheets.ExtractSpreadsheetID(input.GoogleSheetURL)
	if err != nil {
		return nil, invalidConfiguration("invalid Google Sheet URL")
	}
	if uc.Sheets != nil {
		if err := uc.Sheets.ValidateAccess(ctx, spreadsheetID, input.SheetName); err != nil {
			uc.Logger.WithError(err).WithField("spreadsheet_id", spreadsheetID).Warn("sheet access check failed")
			return nil, invalidConfiguration("sheet is not readable: " + err.Error())
		}
	}

	interval := input.PollIntervalMinutes
	if interval == 0 {
		interval = defaultPollMinutes
	}
	now := time.Now().UTC()
	cfg := &entity.SourceConfiguration{
		ID:                  uuid.New().String(),
		GoogleSheetURL:      input.GoogleSheetURL,
		SpreadsheetID:       spreadsheetID,
		SheetName:           input.SheetName,
		IsActive:            true,
		PollIntervalMinutes: interval,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := uc.Configs.Create(ctx, cfg); err != nil {
		return nil, technical("failed to save import configuration", err)
	}

	uc.Logger.WithFields(logrus.Fields{"source_id": cfg.ID, "spreadsheet_id": spreadsheetID}).Info("import configuration created")
	return cfg, nil
}

func (uc *ImportUseCase) UpdateConfiguration(ctx context.Context, id string, input UpdateConfigurationInput) (*entity.SourceConfiguration, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	cfg, err := uc.Configs.Update(ctx, id, entity.ConfigurationUpdate{
		IsActive:            input.IsActive,
		PollIntervalMinutes: input.PollIntervalMinutes,
	})
	if errors.Is(err, entity.ErrNotFound) {
		return nil, notFound("configuration")
	}
	if err != nil {
		return nil, technical("failed to update import configuration", err)
	}
	return cfg, nil
}

func (uc *ImportUseCase) State(ctx context.Context, sourceID string) (*entity.ImportCursor, error) {
	cur, err := uc.Cursors.Get(ctx, sourceID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, notFound("import state")
	}
	if err != nil {
		return nil, technical("failed to load import state", err)
	}
	return cur, nil
}

// ListLogs returns the most recent entries first. A zero limit means the default.
func (uc *ImportUseCase) ListLogs(ctx context.Context, sourceID string, limit int) ([]*entity.ImportLog, error) {
	if limit == 0 {
		limit = defaultLogLimit
	}
	if limit < 1 || limit > maxLogLimit {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: "limit: must be between 1 and 100",
			Fields:  []ValidationError{{Field: "limit", Message: "must be between 1 and 100"}},
		}
	}
	logs, err := uc.Logs.ListBySource(ctx, sourceID, limit)
	if err != nil {
		return nil, technical("failed to list import logs", err)
	}
	return logs, nil
}

// Trigger starts a background run and never waits for it. An explicit
// configuration id must exist.
func (uc *ImportUseCase) Trigger(ctx context.Context, actor *entity.User, sourceID string) (worker.TriggerResult, error) {
	if sourceID != "" && sourceID != ingestion.FileSourceID {
		_, err := uc.Configs.FindByID(ctx, sourceID)
		if errors.Is(err, entity.ErrNotFound) {
			return worker.TriggerResult{}, notFound("import configuration")
		}
		if err != nil {
			return worker.TriggerResult{}, technical("failed to load import configuration", err)
		}
	}
	uc.Logger.WithFields(logrus.Fields{"user_id": actor.ID, "source_id": sourceID}).Info("manual import triggered")
	return uc.Scheduler.Trigger(ctx, sourceID), nil
}

// Upload ingests an xlsx workbook synchronously. Leads are assigned to the
// uploader and no cursor is touched.
func (uc *ImportUseCase) Upload(ctx context.Context, actor *entity.User, file io.Reader, source string) (*UploadOutput, error) {
	table, err := sheets.ReadWorkbook(file)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: "could not read spreadsheet: " + err.Error()}
	}

	var res *ingestion.Result
	err = uc.Scheduler.RunExclusive(ctx, func(ctx context.Context) error {
		var runErr error
		res, runErr = uc.Uploads.IngestUpload(ctx, ingestion.UploadRequest{
			Rows:     table.RawRows(),
			Label:    UploadLabel(source),
			UploadBy: actor.ID,
		})
		return runErr
	})
	if errors.Is(err, worker.ErrRunInProgress) {
		return nil, &DomainError{Code: CodeRunInProgress, Message: err.Error()}
	}
	if err != nil && res == nil {
		return nil, technical("upload failed", err)
	}

	out := &UploadOutput{
		RowsScanned:       res.RowsScanned,
		NewRowsDetected:   res.NewRowsDetected,
		LeadsInserted:     res.LeadsInserted,
		DuplicatesSkipped: res.DuplicatesSkipped,
		Errors:            res.Errors,
	}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	return out, nil
}

// UploadLabel maps the upload form's source choice to the lead source label.
func UploadLabel(source string) string {
	switch source {
	case "cold_calls":
		return "Cold Calls"
	case "marketing_campaign":
		return "Marketing Campaign"
	case "website":
		return "Website"
	}
	return "Manual Import"
}
