package usecase

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadflow/internal/entity"
	"github.com/xavierca1/leadflow/internal/infra/memory"
)

var (
	admin   = &entity.User{ID: "admin-1", Name: "Admin User", Role: entity.RoleAdmin}
	manager = &entity.User{ID: "manager-1", Name: "Manager User", Role: entity.RoleManager}
	agent   = &entity.User{ID: "agent-1", Name: "Agent User", Role: entity.RoleAgent}
	agent2  = &entity.User{ID: "agent-2", Name: "Second Agent", Role: entity.RoleAgent}
)

func newLeadUseCase() (*LeadUseCase, *memory.LeadRepository) {
	logger, _ := test.NewNullLogger()
	leads := memory.NewLeadRepository()
	users := memory.NewUserRepository(admin, manager, agent, agent2)
	return NewLeadUseCase(leads, users, logger), leads
}

func leadInput(name, phone string) CreateLeadInput {
	return CreateLeadInput{
		ClientName:    name,
		ContactNumber: phone,
		Source:        "Walk-in",
		Ownership:     entity.OwnershipInvestment,
	}
}

func TestCreateLeadAssignsCreatorAndDefaults(t *testing.T) {
	uc, _ := newLeadUseCase()

	lead, err := uc.Create(context.Background(), agent, leadInput("Asha Rao", "+1 555 0100"))

	require.NoError(t, err)
	assert.Equal(t, agent.ID, lead.AssignedUserID)
	assert.Equal(t, entity.FurnishingUnfurnished, lead.Furnishing)
	assert.Equal(t, entity.OwnershipInvestment, lead.Ownership)
	assert.NotEmpty(t, lead.ID)
}

func TestCreateLeadValidation(t *testing.T) {
	uc, _ := newLeadUseCase()

	_, err := uc.Create(context.Background(), agent, CreateLeadInput{Ownership: "rent"})

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeValidation, de.Code)
	fields := map[string]string{}
	for _, f := range de.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "is required", fields["client_name"])
	assert.Equal(t, "is required", fields["contact_number"])
	assert.Contains(t, fields["ownership"], "self investment")
}

func TestCreateLeadDuplicatePhoneIsConflict(t *testing.T) {
	uc, _ := newLeadUseCase()
	ctx := context.Background()

	_, err := uc.Create(ctx, agent, leadInput("Asha Rao", "555-0100"))
	require.NoError(t, err)
	_, err = uc.Create(ctx, manager, leadInput("A. Rao", "(555) 0100"))

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeConflict, de.Code)
}

func TestCreateLeadExplicitAssignee(t *testing.T) {
	uc, _ := newLeadUseCase()
	ctx := context.Background()

	in := leadInput("Asha Rao", "5550100")
	in.AssignedUserID = agent2.ID
	lead, err := uc.Create(ctx, manager, in)
	require.NoError(t, err)
	assert.Equal(t, agent2.ID, lead.AssignedUserID)

	in = leadInput("Ben Cruz", "5550101")
	in.AssignedUserID = agent2.ID
	lead, err = uc.Create(ctx, agent, in)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, lead.AssignedUserID, "agents cannot hand leads off")

	in = leadInput("Chen Li", "5550102")
	in.AssignedUserID = "ghost"
	_, err = uc.Create(ctx, admin, in)
	assert.True(t, IsDomainError(err))
}

func TestAgentsOnlySeeTheirLeads(t *testing.T) {
	uc, _ := newLeadUseCase()
	ctx := context.Background()

	mine, err := uc.Create(ctx, agent, leadInput("Asha Rao", "5550100"))
	require.NoError(t, err)
	theirs, err := uc.Create(ctx, agent2, leadInput("Ben Cruz", "5550101"))
	require.NoError(t, err)

	list, err := uc.List(ctx, agent, entity.LeadFilter{AssignedUserID: agent2.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	all, err := uc.List(ctx, manager, entity.LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = uc.Get(ctx, agent, theirs.ID)
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeForbidden, de.Code)

	err = uc.Delete(ctx, agent, theirs.ID)
	assert.ErrorAs(t, err, &de)
}

func TestUpdateAndDeleteLead(t *testing.T) {
	uc, _ := newLeadUseCase()
	ctx := context.Background()

	lead, err := uc.Create(ctx, agent, leadInput("Asha Rao", "5550100"))
	require.NoError(t, err)

	name := "Asha R. Rao"
	semi := entity.FurnishingSemi
	updated, err := uc.Update(ctx, agent, lead.ID, UpdateLeadInput{ClientName: &name, Furnishing: &semi, InterestedProjects: []string{"Palm Grove"}})
	require.NoError(t, err)
	assert.Equal(t, name, updated.ClientName)
	assert.Equal(t, entity.FurnishingSemi, updated.Furnishing)
	assert.Equal(t, []string{"Palm Grove"}, updated.InterestedProjects)

	bad := entity.Furnishing("luxury")
	_, err = uc.Update(ctx, agent, lead.ID, UpdateLeadInput{Furnishing: &bad})
	assert.True(t, IsDomainError(err))

	require.NoError(t, uc.Delete(ctx, agent, lead.ID))
	_, err = uc.Get(ctx, agent, lead.ID)
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeNotFound, de.Code)
}
