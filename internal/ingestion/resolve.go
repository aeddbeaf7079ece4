package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/leadflow/internal/entity"
)

// ConfiguredSources resolves a run's source: a configured local file wins,
// otherwise the active remote sheet configuration is used.
type ConfiguredSources struct {
	configs      entity.ConfigurationRepositoryInterface
	filePath     string
	fileInterval time.Duration
}

func NewConfiguredSources(configs entity.ConfigurationRepositoryInterface, filePath string, fileInterval time.Duration) *ConfiguredSources {
	if fileInterval <= 0 {
		fileInterval = DefaultPollInterval
	}
	return &ConfiguredSources{configs: configs, filePath: filePath, fileInterval: fileInterval}
}

func (r *ConfiguredSources) Resolve(ctx context.Context, sourceID string) (*Source, error) {
	if r.filePath != "" && (sourceID == "" || sourceID == FileSourceID) {
		return &Source{
			ID:           FileSourceID,
			Kind:         SourceKindFile,
			Label:        "Excel Import",
			Platform:     "Excel File",
			FilePath:     r.filePath,
			PollInterval: r.fileInterval,
		}, nil
	}

	if sourceID != "" {
		cfg, err := r.configs.FindByID(ctx, sourceID)
		if err != nil {
			return nil, fmt.Errorf("load configuration: %w", err)
		}
		return SheetSource(cfg), nil
	}

	cfg, err := r.configs.FindActive(ctx)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active configuration: %w", err)
	}
	return SheetSource(cfg), nil
}

// SheetSource adapts a stored configuration to a readable source.
func SheetSource(cfg *entity.SourceConfiguration) *Source {
	interval := cfg.PollInterval()
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Source{
		ID:            cfg.ID,
		Kind:          SourceKindSheet,
		Label:         "Google Sheet",
		Platform:      "Google Sheet",
		SpreadsheetID: cfg.SpreadsheetID,
		SheetName:     cfg.SheetName,
		PollInterval:  interval,
	}
}
