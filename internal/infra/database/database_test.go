package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/leadflow/internal/entity"
)

func TestLeadListQueryDefaults(t *testing.T) {
	query, args := leadListQuery(entity.LeadFilter{})

	assert.Contains(t, query, "FROM leads WHERE NOT is_deleted")
	assert.Contains(t, query, "ORDER BY created_at DESC")
	assert.Empty(t, args)
}

func TestLeadListQueryFilters(t *testing.T) {
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	query, args := leadListQuery(entity.LeadFilter{
		AssignedUserID: "agent-1",
		Source:         "Website",
		Project:        "Skyline",
		Search:         "asha",
		CreatedFrom:    &from,
	})

	assert.Contains(t, query, "assigned_user_id = $1")
	assert.Contains(t, query, "source = $2")
	assert.Contains(t, query, "$3 = ANY(interested_projects)")
	assert.Contains(t, query, "client_name ILIKE $4")
	assert.Contains(t, query, "created_at >= $7")
	assert.Equal(t, []any{"agent-1", "Website", "Skyline", "%asha%", "%asha%", "%asha%", from}, args)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(sql.ErrNoRows), entity.ErrNotFound)
	other := errors.New("timeout")
	assert.Equal(t, other, notFound(other))
}

func TestLeadRowToEntity(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	row := leadRow{
		ID:              "lead-1",
		ClientName:      "Asha Rao",
		ContactNumber:   "5550100",
		Email:           sql.NullString{String: "asha@example.com", Valid: true},
		InterestedAreas: pq.StringArray{"Baner"},
		Ownership:       "self",
		Furnishing:      "semi",
		IsOrganic:       sql.NullBool{Bool: true, Valid: true},
		LeadCreatedTime: sql.NullTime{Time: created, Valid: true},
	}

	l := row.toEntity()

	assert.Equal(t, "asha@example.com", l.Email)
	assert.Equal(t, []string{"Baner"}, l.InterestedAreas)
	assert.Equal(t, []string{}, l.InterestedProjects)
	assert.Equal(t, entity.FurnishingSemi, l.Furnishing)
	assert.Empty(t, l.InterestLevel)
	if assert.NotNil(t, l.IsOrganic) {
		assert.True(t, *l.IsOrganic)
	}
	assert.Equal(t, created, *l.LeadCreatedTime)
}
