package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/leadflow/internal/entity"
	"github.com/xavierca1/leadflow/internal/infra/sheets"
)

var leadsReportHeader = []string{
	"Lead ID", "Client Name", "Contact Number", "Email", "Source",
	"Interested Areas", "Interested Projects", "Ownership", "Furnishing",
	"Assigned To", "Created Date", "Last Updated", "Platform", "Campaign",
	"Ad Name", "Form Name",
}

type Report struct {
	FileName string
	Content  []byte
	Count    int
}

type ReportUseCase struct {
	Leads entity.LeadRepositoryInterface
	Users entity.UserRepositoryInterface
	now   func() time.Time
}

func NewReportUseCase(leads entity.LeadRepositoryInterface, users entity.UserRepositoryInterface) *ReportUseCase {
	return &ReportUseCase{Leads: leads, Users: users, now: time.Now}
}

// LeadsReport exports the leads the actor can see as an xlsx workbook.
func (uc *ReportUseCase) LeadsReport(ctx context.Context, actor *entity.User, filter entity.LeadFilter) (*Report, error) {
	if actor.Role == entity.RoleAgent {
		filter.AssignedUserID = actor.ID
	}
	leads, err := uc.Leads.List(ctx, filter)
	if err != nil {
		return nil, technical("failed to list leads", err)
	}
	users, err := uc.Users.List(ctx)
	if err != nil {
		return nil, technical("failed to list users", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	rows := make([][]string, 0, len(leads))
	for _, l := range leads {
		assigned := names[l.AssignedUserID]
		if assigned == "" {
			assigned = "Unknown"
		}
		rows = append(rows, []string{
			l.ID, l.ClientName, l.ContactNumber, l.Email, l.Source,
			strings.Join(l.InterestedAreas, ", "), strings.Join(l.InterestedProjects, ", "),
			string(l.Ownership), string(l.Furnishing), assigned,
			l.CreatedAt.Format("2006-01-02"), l.UpdatedAt.Format("2006-01-02"),
			l.Platform, l.CampaignName, l.AdName, l.FormName,
		})
	}

	content, err := sheets.WriteWorkbook("Leads", leadsReportHeader, rows)
	if err != nil {
		return nil, technical("failed to render report", err)
	}
	return &Report{
		FileName: fmt.Sprintf("Leads_Report_%d.xlsx", uc.now().Unix()),
		Content:  content,
		Count:    len(rows),
	}, nil
}
