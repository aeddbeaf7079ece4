package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadflow/internal/entity"
	"github.com/xavierca1/leadflow/internal/infra/memory"
)

type failingUpdates struct {
	*memory.LeadRepository
}

func (failingUpdates) Update(context.Context, string, entity.LeadUpdate) (*entity.Lead, error) {
	return nil, errors.New("connection reset")
}

var clock = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func seedLead(t *testing.T, repo *memory.LeadRepository, id, phone, owner string) *entity.Lead {
	t.Helper()
	lead, err := entity.NewLead(entity.Lead{ClientName: "Client " + id, ContactNumber: phone, Source: "fb", AssignedUserID: owner})
	require.NoError(t, err)
	lead.ID = id
	require.NoError(t, repo.Create(context.Background(), lead))
	return lead
}

func newInteractionUseCase(leads entity.LeadRepositoryInterface) (*InteractionUseCase, *memory.InteractionRepository) {
	logger, _ := test.NewNullLogger()
	items := memory.NewInteractionRepository()
	uc := NewInteractionUseCase(leads, items, logger)
	uc.now = func() time.Time { return clock }
	return uc, items
}

func at(d time.Duration) *time.Time {
	t := clock.Add(d)
	return &t
}

func TestCreateInteractionUpdatesLead(t *testing.T) {
	leads := memory.NewLeadRepository()
	seedLead(t, leads, "lead-1", "5550100", agent.ID)
	uc, _ := newInteractionUseCase(leads)

	it, err := uc.Create(context.Background(), agent, CreateInteractionInput{
		LeadID:        "lead-1",
		InterestLevel: entity.InterestHot,
		Budget:        250000,
		CallStatus:    entity.CallConnected,
		Notes:         "wants a 2BHK",
	})
	require.NoError(t, err)
	assert.Equal(t, agent.ID, it.CreatedBy)
	assert.Equal(t, clock, it.CreatedAt)

	lead, err := leads.FindByID(context.Background(), "lead-1")
	require.NoError(t, err)
	assert.Equal(t, entity.InterestHot, lead.InterestLevel)
	assert.Equal(t, entity.CallConnected, lead.CallStatus)
}

func TestCreateInteractionRollsBackWhenLeadUpdateFails(t *testing.T) {
	leads := memory.NewLeadRepository()
	seedLead(t, leads, "lead-1", "5550100", agent.ID)
	uc, items := newInteractionUseCase(failingUpdates{leads})

	_, err := uc.Create(context.Background(), agent, CreateInteractionInput{
		LeadID: "lead-1", InterestLevel: entity.InterestWarm, CallStatus: entity.CallNotReceived,
	})

	assert.True(t, IsTechnicalError(err))
	left, err := items.ListByLeadID(context.Background(), "lead-1")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestCreateInteractionRejectsBadInput(t *testing.T) {
	leads := memory.NewLeadRepository()
	seedLead(t, leads, "lead-1", "5550100", agent2.ID)
	uc, _ := newInteractionUseCase(leads)
	ctx := context.Background()

	_, err := uc.Create(ctx, agent, CreateInteractionInput{LeadID: "lead-1", InterestLevel: "lukewarm", CallStatus: entity.CallConnected})
	assert.True(t, IsDomainError(err))

	_, err = uc.Create(ctx, agent, CreateInteractionInput{LeadID: "lead-1", InterestLevel: entity.InterestCold, CallStatus: entity.CallConnected})
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeForbidden, de.Code)

	_, err = uc.Create(ctx, agent, CreateInteractionInput{LeadID: "nope", InterestLevel: entity.InterestCold, CallStatus: entity.CallConnected})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeNotFound, de.Code)
}

func TestFollowUpsUseLatestInteractionPerLead(t *testing.T) {
	leads := memory.NewLeadRepository()
	seedLead(t, leads, "lead-1", "5550100", agent.ID)
	seedLead(t, leads, "lead-2", "5550101", agent.ID)
	seedLead(t, leads, "lead-3", "5550102", agent.ID)
	seedLead(t, leads, "lead-4", "5550103", agent2.ID)
	uc, items := newInteractionUseCase(leads)
	ctx := context.Background()

	add := func(id, lead string, created time.Duration, status entity.CallStatus, followUp *time.Time) {
		require.NoError(t, items.Create(ctx, &entity.Interaction{
			ID: id, LeadID: lead, InterestLevel: entity.InterestWarm, CallStatus: status,
			FollowUpDateTime: followUp, CreatedAt: clock.Add(created),
		}))
	}
	add("i1", "lead-1", -48*time.Hour, entity.CallFollowUpNeeded, at(2*time.Hour))
	add("i2", "lead-1", -time.Hour, entity.CallFollowUpNeeded, at(24*time.Hour))
	add("i3", "lead-2", -2*time.Hour, entity.CallFollowUpNeeded, nil)
	add("i4", "lead-3", -72*time.Hour, entity.CallFollowUpNeeded, at(-24*time.Hour))
	add("i5", "lead-4", -time.Hour, entity.CallFollowUpNeeded, at(time.Hour))

	upcoming, err := uc.Upcoming(ctx, agent)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "i3", upcoming[0].ID, "unscheduled follow-ups sort as due now")
	assert.Equal(t, "i2", upcoming[1].ID)
	assert.Equal(t, "Client lead-1", upcoming[1].ClientName)

	overdue, err := uc.Overdue(ctx, agent)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "lead-3", overdue[0].LeadID)

	other, err := uc.Upcoming(ctx, agent2)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "i5", other[0].ID)
}
