package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/leadflow/internal/entity"
)

const interactionColumns = `id, lead_id, interest_level, budget, call_status, follow_up_date_time, notes, created_by, created_at`

type interactionRow struct {
	ID               string       `db:"id"`
	LeadID           string       `db:"lead_id"`
	InterestLevel    string       `db:"interest_level"`
	Budget           float64      `db:"budget"`
	CallStatus       string       `db:"call_status"`
	FollowUpDateTime sql.NullTime `db:"follow_up_date_time"`
	Notes            string       `db:"notes"`
	CreatedBy        string       `db:"created_by"`
	CreatedAt        time.Time    `db:"created_at"`
}

func (r interactionRow) toEntity() *entity.Interaction {
	it := &entity.Interaction{
		ID:            r.ID,
		LeadID:        r.LeadID,
		InterestLevel: entity.InterestLevel(r.InterestLevel),
		Budget:        r.Budget,
		CallStatus:    entity.CallStatus(r.CallStatus),
		Notes:         r.Notes,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
	}
	if r.FollowUpDateTime.Valid {
		t := r.FollowUpDateTime.Time
		it.FollowUpDateTime = &t
	}
	return it
}

type InteractionRepository struct {
	DB *sqlx.DB
}

func NewInteractionRepository(db *sqlx.DB) *InteractionRepository {
	return &InteractionRepository{DB: db}
}

func (r *InteractionRepository) Create(ctx context.Context, it *entity.Interaction) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO interactions (`+interactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		it.ID, it.LeadID, string(it.InterestLevel), it.Budget, string(it.CallStatus),
		it.FollowUpDateTime, it.Notes, it.CreatedBy, it.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

func (r *InteractionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM interactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete interaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *InteractionRepository) ListByLeadID(ctx context.Context, leadID string) ([]*entity.Interaction, error) {
	return r.list(ctx, `SELECT `+interactionColumns+` FROM interactions WHERE lead_id = $1 ORDER BY created_at DESC`, leadID)
}

func (r *InteractionRepository) ListWithFollowUps(ctx context.Context) ([]*entity.Interaction, error) {
	return r.list(ctx, `
		SELECT `+interactionColumns+` FROM interactions
		WHERE follow_up_date_time IS NOT NULL OR call_status = 'follow_up_needed'
		ORDER BY created_at DESC`)
}

func (r *InteractionRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Interaction, error) {
	var rows []interactionRow
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	out := make([]*entity.Interaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
