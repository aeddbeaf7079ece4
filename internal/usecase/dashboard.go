package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/leadflow/internal/entity"
)

type DashboardUseCase struct {
	Leads        entity.LeadRepositoryInterface
	Interactions entity.InteractionRepositoryInterface
	now          func() time.Time
}

func NewDashboardUseCase(leads entity.LeadRepositoryInterface, interactions entity.InteractionRepositoryInterface) *DashboardUseCase {
	return &DashboardUseCase{Leads: leads, Interactions: interactions, now: time.Now}
}

// Stats covers the leads the actor can see; agents only see their own.
func (uc *DashboardUseCase) Stats(ctx context.Context, actor *entity.User) (*DashboardStats, error) {
	filter := entity.LeadFilter{}
	if actor.Role == entity.RoleAgent {
		filter.AssignedUserID = actor.ID
	}
	leads, err := uc.Leads.List(ctx, filter)
	if err != nil {
		return nil, technical("failed to list leads", err)
	}

	now := uc.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	stats := &DashboardStats{
		TotalActiveLeads:     len(leads),
		LeadsBySource:        map[string]int{},
		LeadsByInterestLevel: map[string]int{string(entity.InterestCold): 0, string(entity.InterestWarm): 0, string(entity.InterestHot): 0},
	}

	for _, lead := range leads {
		stats.LeadsBySource[lead.Source]++

		items, err := uc.Interactions.ListByLeadID(ctx, lead.ID)
		if err != nil {
			return nil, technical("failed to list interactions", err)
		}
		for _, it := range items {
			if !it.CreatedAt.Before(dayStart) && it.CreatedAt.Before(dayEnd) {
				stats.CallsMadeToday++
			}
			if f := it.FollowUpDateTime; f != nil {
				if !f.Before(dayStart) && f.Before(dayEnd) {
					stats.FollowUpsToday++
				}
				if f.Before(now) {
					stats.OverdueFollowUps++
				}
			}
		}
		if latest := entity.LatestInteraction(items); latest != nil {
			stats.LeadsByInterestLevel[string(latest.InterestLevel)]++
		}
	}
	return stats, nil
}
