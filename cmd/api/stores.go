package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/entity"
	"github.com/xavierca1/leadflow/internal/infra/database"
	"github.com/xavierca1/leadflow/internal/infra/memory"
)

type stores struct {
	db            *sqlx.DB
	leads         entity.LeadRepositoryInterface
	users         entity.UserRepositoryInterface
	interactions  entity.InteractionRepositoryInterface
	notifications entity.NotificationRepositoryInterface
	configs       entity.ConfigurationRepositoryInterface
	cursors       entity.CursorRepositoryInterface
	logs          entity.ImportLogRepositoryInterface
}

// openStores connects to Postgres when a URL is configured and falls back to
// the in-memory repositories otherwise. Both start with the seed team.
func openStores(ctx context.Context, databaseURL string, logger logrus.FieldLogger) (*stores, error) {
	if databaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		return &stores{
			leads:         memory.NewLeadRepository(),
			users:         memory.NewUserRepository(memory.SeedUsers()...),
			interactions:  memory.NewInteractionRepository(),
			notifications: memory.NewNotificationRepository(),
			configs:       memory.NewConfigurationRepository(),
			cursors:       memory.NewCursorRepository(),
			logs:          memory.NewImportLogRepository(),
		}, nil
	}

	db, err := database.NewDBConnection(databaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	users := database.NewUserRepository(db)
	if err := users.EnsureUsers(ctx, memory.SeedUsers()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed users: %w", err)
	}

	return &stores{
		db:            db,
		leads:         database.NewLeadRepository(db),
		users:         users,
		interactions:  database.NewInteractionRepository(db),
		notifications: database.NewNotificationRepository(db),
		configs:       database.NewConfigurationRepository(db),
		cursors:       database.NewCursorRepository(db),
		logs:          database.NewImportLogRepository(db),
	}, nil
}

func (s *stores) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
