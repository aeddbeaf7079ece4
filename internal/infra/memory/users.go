package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/leadflow/internal/entity"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

func NewUserRepository(users ...*entity.User) *UserRepository {
	r := &UserRepository{users: map[string]*entity.User{}}
	for _, u := range users {
		r.Add(u)
	}
	return r
}

func (r *UserRepository) Add(u *entity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *u
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	r.users[c.ID] = &c
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *UserRepository) List(_ context.Context) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// SeedUsers is the default team of a fresh in-memory install.
func SeedUsers() []*entity.User {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []*entity.User{
		{ID: "admin-1", Name: "Admin User", Email: "admin@leadflow.local", Role: entity.RoleAdmin, CreatedAt: base},
		{ID: "manager-1", Name: "Manager User", Email: "manager@leadflow.local", Role: entity.RoleManager, CreatedAt: base.Add(time.Second)},
		{ID: "agent-1", Name: "Agent User", Email: "agent@leadflow.local", Role: entity.RoleAgent, CreatedAt: base.Add(2 * time.Second)},
	}
}
