package usecase

import (
	"time"

	"github.com/xavierca1/leadflow/internal/entity"
)

type CreateLeadInput struct {
	ClientName         string            `json:"client_name" validate:"required"`
	ContactNumber      string            `json:"contact_number" validate:"required"`
	Email              string            `json:"email" validate:"omitempty,email"`
	Source             string            `json:"source" validate:"required"`
	InterestedAreas    []string          `json:"interested_areas"`
	InterestedProjects []string          `json:"interested_projects"`
	Ownership          entity.Ownership  `json:"ownership" validate:"omitempty,oneof=self investment"`
	Furnishing         entity.Furnishing `json:"furnishing" validate:"omitempty,oneof=unfurnished semi fully"`
	AssignedUserID     string            `json:"assigned_user_id"`
}

type UpdateLeadInput struct {
	ClientName         *string            `json:"client_name" validate:"omitempty,min=1"`
	ContactNumber      *string            `json:"contact_number" validate:"omitempty,min=1"`
	Source             *string            `json:"source"`
	InterestedAreas    []string           `json:"interested_areas"`
	InterestedProjects []string           `json:"interested_projects"`
	Ownership          *entity.Ownership  `json:"ownership" validate:"omitempty,oneof=self investment"`
	Furnishing         *entity.Furnishing `json:"furnishing" validate:"omitempty,oneof=unfurnished semi fully"`
}

type CreateInteractionInput struct {
	LeadID           string               `json:"lead_id" validate:"required"`
	InterestLevel    entity.InterestLevel `json:"interest_level" validate:"required,oneof=cold warm hot"`
	Budget           float64              `json:"budget" validate:"min=0"`
	CallStatus       entity.CallStatus    `json:"call_status" validate:"required,oneof=not_received connected follow_up_needed not_interested"`
	FollowUpDateTime *time.Time           `json:"follow_up_date_time"`
	Notes            string               `json:"notes"`
}

// FollowUp is the latest follow-up-bearing interaction of one lead.
type FollowUp struct {
	ID               string               `json:"id"`
	LeadID           string               `json:"lead_id"`
	ClientName       string               `json:"client_name"`
	ContactNumber    string               `json:"contact_number"`
	FollowUpDateTime *time.Time           `json:"follow_up_date_time,omitempty"`
	Notes            string               `json:"notes"`
	InterestLevel    entity.InterestLevel `json:"interest_level"`
	CallStatus       entity.CallStatus    `json:"call_status"`
}

type DashboardStats struct {
	CallsMadeToday       int            `json:"calls_made_today"`
	FollowUpsToday       int            `json:"follow_ups_today"`
	OverdueFollowUps     int            `json:"overdue_follow_ups"`
	TotalActiveLeads     int            `json:"total_active_leads"`
	LeadsBySource        map[string]int `json:"leads_by_source"`
	LeadsByInterestLevel map[string]int `json:"leads_by_interest_level"`
}

type CreateConfigurationInput struct {
	GoogleSheetURL      string `json:"google_sheet_url" validate:"required,url"`
	SheetName           string `json:"sheet_name" validate:"required"`
	PollIntervalMinutes int    `json:"poll_interval_minutes" validate:"min=0"`
}

type UpdateConfigurationInput struct {
	IsActive            *bool `json:"is_active"`
	PollIntervalMinutes *int  `json:"poll_interval_minutes" validate:"omitempty,min=1"`
}

type UploadOutput struct {
	RowsScanned       int      `json:"rows_scanned"`
	NewRowsDetected   int      `json:"new_rows_detected"`
	LeadsInserted     int      `json:"leads_inserted"`
	DuplicatesSkipped int      `json:"duplicates_skipped"`
	Errors            []string `json:"errors"`
}
