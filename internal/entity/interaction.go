package entity

import (
	"context"
	"time"
)

type InterestLevel string

const (
	InterestCold InterestLevel = "cold"
	InterestWarm InterestLevel = "warm"
	InterestHot  InterestLevel = "hot"
)

// Rank orders interest levels, cold < warm < hot.
func (l InterestLevel) Rank() int {
	switch l {
	case InterestCold:
		return 1
	case InterestWarm:
		return 2
	case InterestHot:
		return 3
	}
	return 0
}

type CallStatus string

const (
	CallNotReceived    CallStatus = "not_received"
	CallConnected      CallStatus = "connected"
	CallFollowUpNeeded CallStatus = "follow_up_needed"
	CallNotInterested  CallStatus = "not_interested"
)

type Interaction struct {
	ID               string        `json:"id"`
	LeadID           string        `json:"lead_id"`
	InterestLevel    InterestLevel `json:"interest_level"`
	Budget           float64       `json:"budget"`
	CallStatus       CallStatus    `json:"call_status"`
	FollowUpDateTime *time.Time    `json:"follow_up_date_time,omitempty"`
	Notes            string        `json:"notes"`
	CreatedAt        time.Time     `json:"created_at"`
	CreatedBy        string        `json:"created_by"`
}

// LatestInteraction picks the most recent interaction. Equal timestamps are
// broken by the higher interest level.
func LatestInteraction(items []*Interaction) *Interaction {
	var latest *Interaction
	for _, it := range items {
		if latest == nil ||
			it.CreatedAt.After(latest.CreatedAt) ||
			(it.CreatedAt.Equal(latest.CreatedAt) && it.InterestLevel.Rank() > latest.InterestLevel.Rank()) {
			latest = it
		}
	}
	return latest
}

type InteractionRepositoryInterface interface {
	Create(ctx context.Context, it *Interaction) error
	Delete(ctx context.Context, id string) error
	// ListByLeadID returns interactions newest first.
	ListByLeadID(ctx context.Context, leadID string) ([]*Interaction, error)
	// ListWithFollowUps returns every interaction that has a follow-up time
	// or a follow_up_needed status, newest first.
	ListWithFollowUps(ctx context.Context) ([]*Interaction, error)
}
