package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadflow/internal/entity"
)

func TestNormalizeColumn(t *testing.T) {
	cases := map[string]string{
		"Full Name":                          "full_name",
		"  Phone-Number ":                    "phone_number",
		"configuration you are looking for?": "configuration_you_are_looking_for_",
		"__id":                               "id",
		"Lead Created Time":                  "lead_created_time",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeColumn(in), in)
	}
}

func TestResolveRowAliases(t *testing.T) {
	c := ResolveRow(RawRow{
		"full_name":           "Asha Rao",
		"contact_number":      "p:+91 98450 12345",
		"lead_id":             "l:42",
		"email":               "asha@example.com",
		"interested_areas":    " Whitefield, ,Indiranagar ",
		"interested_projects": "Palm Grove",
		"ownership":           "Investment",
		"furnishing":          "FULL",
		"is_organic":          "yes",
		"lead_created_time":   "2024-03-01T10:15:00+05:30",
	}, 9)

	assert.Equal(t, 9, c.RowNumber)
	assert.Equal(t, "Asha Rao", c.Name)
	assert.Equal(t, "+91 98450 12345", c.Phone)
	assert.Equal(t, "l:42", c.ExternalID)
	assert.Equal(t, "asha@example.com", c.Email)
	assert.Equal(t, []string{"Whitefield", "Indiranagar"}, c.InterestedAreas)
	assert.Equal(t, []string{"Palm Grove"}, c.InterestedProjects)
	assert.Equal(t, entity.OwnershipInvestment, c.Ownership)
	assert.Equal(t, entity.FurnishingFully, c.Furnishing)
	require.NotNil(t, c.IsOrganic)
	assert.True(t, *c.IsOrganic)
	require.NotNil(t, c.LeadCreatedTime)
	assert.Equal(t, time.Date(2024, 3, 1, 4, 45, 0, 0, time.UTC), *c.LeadCreatedTime)
	assert.Equal(t, c.LeadCreatedTime, c.SourceTime)
	assert.Empty(t, c.Validate())
}

func TestResolveRowDropsTestMarkers(t *testing.T) {
	c := ResolveRow(RawRow{
		"name":  "Real Person",
		"phone": "5550100",
		"id":    "<test lead id>",
		"email": "test@fb.com",
	}, 2)

	assert.Empty(t, c.ExternalID)
	assert.Empty(t, c.Email)
	assert.Empty(t, c.Validate())
}

func TestValidateReasons(t *testing.T) {
	cases := []struct {
		row  RawRow
		want string
	}{
		{RawRow{"name": " ", "phone": ""}, "empty row"},
		{RawRow{"name": "<test lead: dummy>", "phone": "5550100"}, "invalid or test name"},
		{RawRow{"phone": "5550100"}, "invalid or test name"},
		{RawRow{"name": "Asha"}, "invalid or test phone number"},
		{RawRow{"name": "Asha", "phone": "p:<test lead: dummy data for phone_number>"}, "invalid or test phone number"},
		{RawRow{"name": "Asha", "phone": "n/a"}, "phone number has no digits"},
		{RawRow{"name": "Asha", "phone": "5550100"}, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveRow(tc.row, 2).Validate(), tc.row)
	}
}

func TestParseEnums(t *testing.T) {
	assert.Equal(t, entity.OwnershipSelf, ParseOwnership(""))
	assert.Equal(t, entity.OwnershipSelf, ParseOwnership("end use"))
	assert.Equal(t, entity.OwnershipInvestment, ParseOwnership(" INVESTMENT "))

	assert.Equal(t, entity.FurnishingFully, ParseFurnishing("fully"))
	assert.Equal(t, entity.FurnishingSemi, ParseFurnishing("Semi"))
	assert.Equal(t, entity.FurnishingUnfurnished, ParseFurnishing("bare"))
}

func TestToLeadDefaults(t *testing.T) {
	c := ResolveRow(RawRow{
		"name":                    "Asha",
		"phone":                   "5550100",
		"configuration_requested": "2 BHK",
	}, 2)

	sheet := c.ToLead(Source{Kind: SourceKindSheet, Label: "Google Sheet", Platform: "Google Sheet"}, "agent-1")
	assert.Equal(t, "Google Sheet", sheet.Source)
	assert.Equal(t, "agent-1", sheet.AssignedUserID)
	assert.Equal(t, []string{"2 BHK"}, sheet.InterestedAreas)

	upload := c.ToLead(Source{Kind: SourceKindUpload, Label: "Website", Platform: "Excel File"}, "manager-1")
	assert.Equal(t, "Website", upload.Source)
	assert.Equal(t, "Excel File", upload.Platform)
	assert.Empty(t, upload.InterestedAreas)
	assert.Equal(t, "2 BHK", upload.ConfigurationRequested)
}
