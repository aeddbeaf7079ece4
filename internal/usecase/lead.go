package usecase

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/entity"
)

type LeadUseCase struct {
	Leads  entity.LeadRepositoryInterface
	Users  entity.UserRepositoryInterface
	Logger logrus.FieldLogger
}

func NewLeadUseCase(leads entity.LeadRepositoryInterface, users entity.UserRepositoryInterface, logger logrus.FieldLogger) *LeadUseCase {
	return &LeadUseCase{Leads: leads, Users: users, Logger: logger}
}

// List scopes agents to the leads assigned to them.
func (uc *LeadUseCase) List(ctx context.Context, actor *entity.User, filter entity.LeadFilter) ([]*entity.Lead, error) {
	if actor.Role == entity.RoleAgent {
		filter.AssignedUserID = actor.ID
	}
	leads, err := uc.Leads.List(ctx, filter)
	if err != nil {
		return nil, technical("failed to list leads", err)
	}
	return leads, nil
}

func (uc *LeadUseCase) FilterValues(ctx context.Context) (*entity.FilterValues, error) {
	values, err := uc.Leads.DistinctFilterValues(ctx)
	if err != nil {
		return nil, technical("failed to load filter values", err)
	}
	return values, nil
}

func (uc *LeadUseCase) Get(ctx context.Context, actor *entity.User, id string) (*entity.Lead, error) {
	return loadLead(ctx, uc.Leads, actor, id)
}

func (uc *LeadUseCase) Create(ctx context.Context, actor *entity.User, input CreateLeadInput) (*entity.Lead, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	assignee, err := uc.assignee(ctx, actor, input.AssignedUserID)
	if err != nil {
		return nil, err
	}

	lead, err := entity.NewLead(entity.Lead{
		ClientName:         input.ClientName,
		ContactNumber:      input.ContactNumber,
		Email:              input.Email,
		Source:             input.Source,
		InterestedAreas:    input.InterestedAreas,
		InterestedProjects: input.InterestedProjects,
		Ownership:          input.Ownership,
		Furnishing:         input.Furnishing,
		AssignedUserID:     assignee,
	})
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}

	if err := uc.Leads.Create(ctx, lead); err != nil {
		if errors.Is(err, entity.ErrDuplicateLead) {
			return nil, &DomainError{Code: CodeConflict, Message: "a lead with this phone, email or external id already exists"}
		}
		return nil, technical("failed to create lead", err)
	}

	uc.Logger.WithFields(logrus.Fields{"lead_id": lead.ID, "assigned_user_id": assignee}).Info("lead created")
	return lead, nil
}

func (uc *LeadUseCase) Update(ctx context.Context, actor *entity.User, id string, input UpdateLeadInput) (*entity.Lead, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := loadLead(ctx, uc.Leads, actor, id); err != nil {
		return nil, err
	}

	lead, err := uc.Leads.Update(ctx, id, entity.LeadUpdate{
		ClientName:         input.ClientName,
		ContactNumber:      input.ContactNumber,
		Source:             input.Source,
		InterestedAreas:    input.InterestedAreas,
		InterestedProjects: input.InterestedProjects,
		Ownership:          input.Ownership,
		Furnishing:         input.Furnishing,
	})
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return nil, notFound("lead")
	case errors.Is(err, entity.ErrDuplicateLead):
		return nil, &DomainError{Code: CodeConflict, Message: "another lead already uses this phone or email"}
	case err != nil:
		return nil, technical("failed to update lead", err)
	}
	return lead, nil
}

func (uc *LeadUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	if _, err := loadLead(ctx, uc.Leads, actor, id); err != nil {
		return err
	}
	if err := uc.Leads.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return notFound("lead")
		}
		return technical("failed to delete lead", err)
	}
	uc.Logger.WithField("lead_id", id).Info("lead deleted")
	return nil
}

// assignee lets admins and managers hand a lead to someone else; agents
// always own what they create.
func (uc *LeadUseCase) assignee(ctx context.Context, actor *entity.User, requested string) (string, error) {
	if requested == "" || requested == actor.ID || actor.Role == entity.RoleAgent {
		return actor.ID, nil
	}
	if _, err := uc.Users.FindByID(ctx, requested); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return "", &DomainError{
				Code:    CodeValidation,
				Message: "assigned_user_id: unknown user",
				Fields:  []ValidationError{{Field: "assigned_user_id", Message: "unknown user"}},
			}
		}
		return "", technical("failed to load user", err)
	}
	return requested, nil
}

// loadLead fetches a live lead the actor may see.
func loadLead(ctx context.Context, leads entity.LeadRepositoryInterface, actor *entity.User, id string) (*entity.Lead, error) {
	lead, err := leads.FindByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) || (err == nil && lead.IsDeleted) {
		return nil, notFound("lead")
	}
	if err != nil {
		return nil, technical("failed to load lead", err)
	}
	if actor.Role == entity.RoleAgent && lead.AssignedUserID != actor.ID {
		return nil, forbidden("access denied")
	}
	return lead, nil
}
