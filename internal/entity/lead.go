package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Ownership string

const (
	OwnershipSelf       Ownership = "self"
	OwnershipInvestment Ownership = "investment"
)

type Furnishing string

const (
	FurnishingUnfurnished Furnishing = "unfurnished"
	FurnishingSemi        Furnishing = "semi"
	FurnishingFully       Furnishing = "fully"
)

type Lead struct {
	ID                 string        `json:"id"`
	ExternalLeadID     string        `json:"external_lead_id,omitempty"`
	ClientName         string        `json:"client_name"`
	ContactNumber      string        `json:"contact_number"`
	Email              string        `json:"email,omitempty"`
	Source             string        `json:"source"`
	InterestedAreas    []string      `json:"interested_areas"`
	InterestedProjects []string      `json:"interested_projects"`
	Ownership          Ownership     `json:"ownership"`
	Furnishing         Furnishing    `json:"furnishing"`
	InterestLevel      InterestLevel `json:"interest_level,omitempty"`
	CallStatus         CallStatus    `json:"call_status,omitempty"`
	AssignedUserID     string        `json:"assigned_user_id"`
	IsDeleted          bool          `json:"is_deleted"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	// Provenance copied from ad platforms / spreadsheets.
	Platform               string     `json:"platform,omitempty"`
	CampaignName           string     `json:"campaign_name,omitempty"`
	AdName                 string     `json:"ad_name,omitempty"`
	AdsetName              string     `json:"adset_name,omitempty"`
	FormName               string     `json:"form_name,omitempty"`
	ConfigurationRequested string     `json:"configuration_requested,omitempty"`
	IsOrganic              *bool      `json:"is_organic,omitempty"`
	LeadCreatedTime        *time.Time `json:"lead_created_time,omitempty"`
	LeadStatus             string     `json:"lead_status,omitempty"`
}

// NewLead fills id, timestamps and enum defaults.
func NewLead(l Lead) (*Lead, error) {
	now := time.Now().UTC()
	lead := l
	lead.ID = uuid.New().String()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	lead.IsDeleted = false
	if lead.Ownership == "" {
		lead.Ownership = OwnershipSelf
	}
	if lead.Furnishing == "" {
		lead.Furnishing = FurnishingUnfurnished
	}
	if lead.InterestedAreas == nil {
		lead.InterestedAreas = []string{}
	}
	if lead.InterestedProjects == nil {
		lead.InterestedProjects = []string{}
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (l *Lead) Validate() error {
	if strings.TrimSpace(l.ClientName) == "" {
		return errors.New("client name is required")
	}
	if strings.TrimSpace(l.ContactNumber) == "" {
		return errors.New("contact number is required")
	}
	if strings.TrimSpace(l.AssignedUserID) == "" {
		return errors.New("assigned user is required")
	}
	switch l.Ownership {
	case OwnershipSelf, OwnershipInvestment:
	default:
		return errors.New("ownership must be self or investment")
	}
	switch l.Furnishing {
	case FurnishingUnfurnished, FurnishingSemi, FurnishingFully:
	default:
		return errors.New("furnishing must be unfurnished, semi or fully")
	}
	return nil
}

type LeadFilter struct {
	Search         string
	AssignedUserID string
	Source         string
	Ownership      Ownership
	Furnishing     Furnishing
	Project        string
	InterestedArea string
	InterestLevel  InterestLevel
	CallStatus     CallStatus
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	ModifiedFrom   *time.Time
	ModifiedTo     *time.Time
}

// LeadUpdate carries the optional fields of a partial update.
type LeadUpdate struct {
	ClientName         *string
	ContactNumber      *string
	Source             *string
	InterestedAreas    []string
	InterestedProjects []string
	Ownership          *Ownership
	Furnishing         *Furnishing
	InterestLevel      *InterestLevel
	CallStatus         *CallStatus
}

type FilterValues struct {
	Sources         []string `json:"sources"`
	Projects        []string `json:"projects"`
	InterestedAreas []string `json:"interested_areas"`
}

type LeadRepositoryInterface interface {
	// List returns non-deleted leads matching the filter, newest first.
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	// Create returns ErrDuplicateLead when a non-deleted lead already owns
	// the external id, email or normalized phone.
	Create(ctx context.Context, lead *Lead) error
	Update(ctx context.Context, id string, upd LeadUpdate) (*Lead, error)
	SoftDelete(ctx context.Context, id string) error
	DistinctFilterValues(ctx context.Context) (*FilterValues, error)
}
