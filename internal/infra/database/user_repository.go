package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/leadflow/internal/entity"
)

type userRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Email     string         `db:"email"`
	Phone     sql.NullString `db:"phone"`
	Role      string         `db:"role"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r userRow) toEntity() *entity.User {
	return &entity.User{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone.String,
		Role:      entity.UserRole(r.Role),
		CreatedAt: r.CreatedAt,
	}
}

type UserRepository struct {
	DB *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var row userRow
	err := r.DB.GetContext(ctx, &row,
		`SELECT id, name, email, phone, role, created_at FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return row.toEntity(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	var rows []userRow
	err := r.DB.SelectContext(ctx, &rows,
		`SELECT id, name, email, phone, role, created_at FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]*entity.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// EnsureUsers inserts the given users unless a user with the same id exists.
func (r *UserRepository) EnsureUsers(ctx context.Context, users []*entity.User) error {
	for _, u := range users {
		_, err := r.DB.ExecContext(ctx, `
			INSERT INTO users (id, name, email, phone, role, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT DO NOTHING`,
			u.ID, u.Name, u.Email, nullString(u.Phone), string(u.Role), u.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	return nil
}
