package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/entity"
)

type InteractionUseCase struct {
	Leads        entity.LeadRepositoryInterface
	Interactions entity.InteractionRepositoryInterface
	Logger       logrus.FieldLogger
	now          func() time.Time
}

func NewInteractionUseCase(
	leads entity.LeadRepositoryInterface,
	interactions entity.InteractionRepositoryInterface,
	logger logrus.FieldLogger,
) *InteractionUseCase {
	return &InteractionUseCase{Leads: leads, Interactions: interactions, Logger: logger, now: time.Now}
}

func (uc *InteractionUseCase) ListByLead(ctx context.Context, actor *entity.User, leadID string) ([]*entity.Interaction, error) {
	if _, err := loadLead(ctx, uc.Leads, actor, leadID); err != nil {
		return nil, err
	}
	items, err := uc.Interactions.ListByLeadID(ctx, leadID)
	if err != nil {
		return nil, technical("failed to list interactions", err)
	}
	return items, nil
}

// Create logs a call and copies its interest level and call status onto the
// lead. The interaction is removed again if the lead cannot be updated.
func (uc *InteractionUseCase) Create(ctx context.Context, actor *entity.User, input CreateInteractionInput) (*entity.Interaction, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := loadLead(ctx, uc.Leads, actor, input.LeadID); err != nil {
		return nil, err
	}

	it := &entity.Interaction{
		ID:               uuid.New().String(),
		LeadID:           input.LeadID,
		InterestLevel:    input.InterestLevel,
		Budget:           input.Budget,
		CallStatus:       input.CallStatus,
		FollowUpDateTime: input.FollowUpDateTime,
		Notes:            input.Notes,
		CreatedAt:        uc.now().UTC(),
		CreatedBy:        actor.ID,
	}

	tx := NewTransaction(uc.Logger)
	tx.AddOperation("create_interaction",
		func(ctx context.Context) error { return uc.Interactions.Create(ctx, it) },
		func(ctx context.Context) error { return uc.Interactions.Delete(ctx, it.ID) },
	)
	tx.AddOperation("update_lead_status",
		func(ctx context.Context) error {
			_, err := uc.Leads.Update(ctx, input.LeadID, entity.LeadUpdate{
				InterestLevel: &input.InterestLevel,
				CallStatus:    &input.CallStatus,
			})
			return err
		},
		nil,
	)
	if err := tx.Execute(ctx); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, notFound("lead")
		}
		return nil, technical("failed to log interaction", err)
	}

	uc.Logger.WithFields(logrus.Fields{
		"lead_id":        it.LeadID,
		"interaction_id": it.ID,
		"call_status":    it.CallStatus,
	}).Info("interaction logged")
	return it, nil
}

// Upcoming lists, per lead assigned to the actor, the latest interaction
// that has a future follow-up or asks for one without a time. Soonest first;
// unscheduled ones sort as due now.
func (uc *InteractionUseCase) Upcoming(ctx context.Context, actor *entity.User) ([]FollowUp, error) {
	now := uc.now()
	return uc.followUps(ctx, actor, now, func(it *entity.Interaction) bool {
		if it.FollowUpDateTime != nil {
			return !it.FollowUpDateTime.Before(now)
		}
		return it.CallStatus == entity.CallFollowUpNeeded
	})
}

// Overdue lists, per lead assigned to the actor, the latest interaction whose
// follow-up time has passed. Oldest first.
func (uc *InteractionUseCase) Overdue(ctx context.Context, actor *entity.User) ([]FollowUp, error) {
	now := uc.now()
	return uc.followUps(ctx, actor, now, func(it *entity.Interaction) bool {
		return it.FollowUpDateTime != nil && it.FollowUpDateTime.Before(now)
	})
}

func (uc *InteractionUseCase) followUps(ctx context.Context, actor *entity.User, now time.Time, keep func(*entity.Interaction) bool) ([]FollowUp, error) {
	items, err := uc.Interactions.ListWithFollowUps(ctx)
	if err != nil {
		return nil, technical("failed to list follow-ups", err)
	}

	byLead := map[string][]*entity.Interaction{}
	for _, it := range items {
		if keep(it) {
			byLead[it.LeadID] = append(byLead[it.LeadID], it)
		}
	}

	out := make([]FollowUp, 0, len(byLead))
	for leadID, group := range byLead {
		lead, err := uc.Leads.FindByID(ctx, leadID)
		if errors.Is(err, entity.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, technical("failed to load lead", err)
		}
		if lead.IsDeleted || lead.AssignedUserID != actor.ID {
			continue
		}
		latest := entity.LatestInteraction(group)
		out = append(out, FollowUp{
			ID:               latest.ID,
			LeadID:           lead.ID,
			ClientName:       lead.ClientName,
			ContactNumber:    lead.ContactNumber,
			FollowUpDateTime: latest.FollowUpDateTime,
			Notes:            latest.Notes,
			InterestLevel:    latest.InterestLevel,
			CallStatus:       latest.CallStatus,
		})
	}

	due := func(f FollowUp) time.Time {
		if f.FollowUpDateTime == nil {
			return now
		}
		return *f.FollowUpDateTime
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := due(out[i]), due(out[j])
		if a.Equal(b) {
			return out[i].LeadID < out[j].LeadID
		}
		return a.Before(b)
	})
	return out, nil
}
