package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xavierca1/leadflow/internal/entity"
)

var errNoUsers = errors.New("no users available for assignment")

// RoundRobinAssigner hands unattended imports to agents in turn, falling back
// to the first user when no agent exists.
type RoundRobinAssigner struct {
	users entity.UserRepositoryInterface

	mu   sync.Mutex
	next int
}

func NewRoundRobinAssigner(users entity.UserRepositoryInterface) *RoundRobinAssigner {
	return &RoundRobinAssigner{users: users}
}

func (a *RoundRobinAssigner) Next(ctx context.Context) (string, error) {
	users, err := a.users.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return "", errNoUsers
	}

	var agents []*entity.User
	for _, u := range users {
		if u.Role == entity.RoleAgent {
			agents = append(agents, u)
		}
	}
	if len(agents) == 0 {
		return users[0].ID, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	id := agents[a.next%len(agents)].ID
	a.next++
	return id, nil
}
