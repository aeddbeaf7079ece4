package ingestion_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadflow/internal/entity"
	"github.com/xavierca1/leadflow/internal/infra/memory"
	"github.com/xavierca1/leadflow/internal/ingestion"
)

func TestRoundRobinAssignerRotatesAgents(t *testing.T) {
	users := memory.NewUserRepository(append(memory.SeedUsers(),
		&entity.User{ID: "agent-2", Name: "Second Agent", Role: entity.RoleAgent},
	)...)
	a := ingestion.NewRoundRobinAssigner(users)

	got := []string{}
	for i := 0; i < 4; i++ {
		id, err := a.Next(context.Background())
		require.NoError(t, err)
		got = append(got, id)
	}
	assert.Equal(t, []string{"agent-1", "agent-2", "agent-1", "agent-2"}, got)
}

func TestRoundRobinAssignerFallsBackToFirstUser(t *testing.T) {
	users := memory.NewUserRepository(memory.SeedUsers()[:2]...)
	id, err := ingestion.NewRoundRobinAssigner(users).Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin-1", id)

	_, err = ingestion.NewRoundRobinAssigner(memory.NewUserRepository()).Next(context.Background())
	assert.Error(t, err)
}
