package ingestion

import (
	"strings"
	"time"
	"unicode"

	"github.com/xavierca1/leadflow/internal/contact"
	"github.com/xavierca1/leadflow/internal/entity"
)

// Column aliases, first non-empty wins.
var (
	nameColumns       = []string{"name", "client_name", "full_name"}
	phoneColumns      = []string{"phone", "phone_number", "contact_number"}
	externalIDColumns = []string{"id", "external_id", "lead_id"}
	configColumns     = []string{"configuration_requested", "configuration_you_are_looking_for_", "configuration_you_are_looking_for"}
	createdColumns    = []string{"lead_created_time", "created_time"}
	timestampColumns  = []string{"timestamp", "date"}
)

// NormalizeColumn turns a spreadsheet header into the column vocabulary:
// lowercase, with every run of non-alphanumerics collapsed to '_'.
func NormalizeColumn(header string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(header)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	if pendingSep && b.Len() > 0 {
		b.WriteByte('_')
	}
	return b.String()
}

// CandidateRow is a spreadsheet row after alias resolution, before any
// business rule is applied.
type CandidateRow struct {
	RowNumber int

	ExternalID         string
	Name               string
	Phone              string // vendor prefix stripped
	Email              string
	Source             string
	InterestedAreas    []string
	InterestedProjects []string
	Ownership          entity.Ownership
	Furnishing         entity.Furnishing
	AssignedUserID     string

	Platform               string
	CampaignName           string
	AdName                 string
	AdsetName              string
	FormName               string
	ConfigurationRequested string
	IsOrganic              *bool
	LeadCreatedTime        *time.Time
	LeadStatus             string

	// SourceTime is the row's own timestamp, kept on the cursor.
	SourceTime *time.Time

	rawName  string
	rawPhone string
	empty    bool
}

// ResolveRow applies the alias table and the test-row filters. It never fails;
// Validate decides whether the row may be inserted.
func ResolveRow(raw RawRow, rowNumber int) CandidateRow {
	c := CandidateRow{RowNumber: rowNumber, empty: isEmptyRow(raw)}

	c.rawName = first(raw, nameColumns...)
	c.rawPhone = first(raw, phoneColumns...)
	c.Name = c.rawName
	c.Phone = contact.StripVendorPrefix(c.rawPhone)

	if id := first(raw, externalIDColumns...); id != "" && !IsTestExternalID(id) {
		c.ExternalID = id
	}
	if email := raw["email"]; strings.TrimSpace(email) != "" && !IsPlaceholderEmail(email) {
		c.Email = strings.TrimSpace(email)
	}

	c.Source = strings.TrimSpace(raw["source"])
	c.InterestedAreas = splitList(raw["interested_areas"])
	c.InterestedProjects = splitList(raw["interested_projects"])
	c.Ownership = ParseOwnership(raw["ownership"])
	c.Furnishing = ParseFurnishing(raw["furnishing"])
	c.AssignedUserID = strings.TrimSpace(raw["assigned_user_id"])

	c.Platform = strings.TrimSpace(raw["platform"])
	c.CampaignName = strings.TrimSpace(raw["campaign_name"])
	c.AdName = strings.TrimSpace(raw["ad_name"])
	c.AdsetName = strings.TrimSpace(raw["adset_name"])
	c.FormName = strings.TrimSpace(raw["form_name"])
	c.ConfigurationRequested = first(raw, configColumns...)
	c.LeadStatus = strings.TrimSpace(raw["lead_status"])
	if v := strings.TrimSpace(raw["is_organic"]); v != "" {
		organic := strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
		c.IsOrganic = &organic
	}
	if t, ok := parseTime(first(raw, createdColumns...)); ok {
		c.LeadCreatedTime = &t
	}

	c.SourceTime = c.LeadCreatedTime
	if c.SourceTime == nil {
		if t, ok := parseTime(first(raw, timestampColumns...)); ok {
			c.SourceTime = &t
		}
	}
	return c
}

// Validate returns an empty string for insertable rows, otherwise the reason
// the row is rejected.
func (c CandidateRow) Validate() string {
	if c.empty {
		return "empty row"
	}
	if c.rawName == "" || IsTestName(c.rawName) {
		return "invalid or test name"
	}
	if c.rawPhone == "" || IsTestPhone(c.rawPhone) {
		return "invalid or test phone number"
	}
	if contact.NormalizePhone(c.Phone) == "" {
		return "phone number has no digits"
	}
	return ""
}

// ToLead builds the creation payload. src supplies the labels used when the
// row carries none; assignee is used when the row names no user.
func (c CandidateRow) ToLead(src Source, assignee string) entity.Lead {
	lead := entity.Lead{
		ExternalLeadID:         c.ExternalID,
		ClientName:             c.Name,
		ContactNumber:          c.Phone,
		Email:                  c.Email,
		Source:                 c.Source,
		InterestedAreas:        c.InterestedAreas,
		InterestedProjects:     c.InterestedProjects,
		Ownership:              c.Ownership,
		Furnishing:             c.Furnishing,
		AssignedUserID:         assignee,
		Platform:               c.Platform,
		CampaignName:           c.CampaignName,
		AdName:                 c.AdName,
		AdsetName:              c.AdsetName,
		FormName:               c.FormName,
		ConfigurationRequested: c.ConfigurationRequested,
		IsOrganic:              c.IsOrganic,
		LeadCreatedTime:        c.LeadCreatedTime,
		LeadStatus:             c.LeadStatus,
	}
	if lead.Source == "" {
		lead.Source = src.Label
	}
	if lead.Platform == "" {
		lead.Platform = src.Platform
	}
	if len(lead.InterestedAreas) == 0 && c.ConfigurationRequested != "" && src.Kind == SourceKindSheet {
		lead.InterestedAreas = []string{c.ConfigurationRequested}
	}
	return lead
}

func ParseOwnership(v string) entity.Ownership {
	if strings.EqualFold(strings.TrimSpace(v), string(entity.OwnershipInvestment)) {
		return entity.OwnershipInvestment
	}
	return entity.OwnershipSelf
}

func ParseFurnishing(v string) entity.Furnishing {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "fully", "full":
		return entity.FurnishingFully
	case "semi":
		return entity.FurnishingSemi
	}
	return entity.FurnishingUnfurnished
}

// Template rows shipped with lead-form exports.

func IsTestName(v string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(v)), "<test lead")
}

func IsTestPhone(v string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(v)), "p:<test lead")
}

func IsTestExternalID(v string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(v)), "<test")
}

func IsPlaceholderEmail(v string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(v)), "test@")
}

func first(raw RawRow, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(raw[k]); v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isEmptyRow(raw RawRow) bool {
	for _, v := range raw {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

func parseTime(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
