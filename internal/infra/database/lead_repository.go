package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/xavierca1/leadflow/internal/contact"
	"github.com/xavierca1/leadflow/internal/entity"
)

var leadColumns = []string{
	"id", "external_lead_id", "client_name", "contact_number", "email", "source",
	"interested_areas", "interested_projects", "ownership", "furnishing",
	"interest_level", "call_status", "assigned_user_id", "is_deleted",
	"platform", "campaign_name", "ad_name", "adset_name", "form_name",
	"configuration_requested", "is_organic", "lead_created_time", "lead_status",
	"created_at", "updated_at",
}

type leadRow struct {
	ID                     string         `db:"id"`
	ExternalLeadID         sql.NullString `db:"external_lead_id"`
	ClientName             string         `db:"client_name"`
	ContactNumber          string         `db:"contact_number"`
	Email                  sql.NullString `db:"email"`
	Source                 string         `db:"source"`
	InterestedAreas        pq.StringArray `db:"interested_areas"`
	InterestedProjects     pq.StringArray `db:"interested_projects"`
	Ownership              string         `db:"ownership"`
	Furnishing             string         `db:"furnishing"`
	InterestLevel          sql.NullString `db:"interest_level"`
	CallStatus             sql.NullString `db:"call_status"`
	AssignedUserID         string         `db:"assigned_user_id"`
	IsDeleted              bool           `db:"is_deleted"`
	Platform               sql.NullString `db:"platform"`
	CampaignName           sql.NullString `db:"campaign_name"`
	AdName                 sql.NullString `db:"ad_name"`
	AdsetName              sql.NullString `db:"adset_name"`
	FormName               sql.NullString `db:"form_name"`
	ConfigurationRequested sql.NullString `db:"configuration_requested"`
	IsOrganic              sql.NullBool   `db:"is_organic"`
	LeadCreatedTime        sql.NullTime   `db:"lead_created_time"`
	LeadStatus             sql.NullString `db:"lead_status"`
	CreatedAt              time.Time      `db:"created_at"`
	UpdatedAt              time.Time      `db:"updated_at"`
}

func (r leadRow) toEntity() *entity.Lead {
	l := &entity.Lead{
		ID:                     r.ID,
		ExternalLeadID:         r.ExternalLeadID.String,
		ClientName:             r.ClientName,
		ContactNumber:          r.ContactNumber,
		Email:                  r.Email.String,
		Source:                 r.Source,
		InterestedAreas:        append([]string{}, r.InterestedAreas...),
		InterestedProjects:     append([]string{}, r.InterestedProjects...),
		Ownership:              entity.Ownership(r.Ownership),
		Furnishing:             entity.Furnishing(r.Furnishing),
		InterestLevel:          entity.InterestLevel(r.InterestLevel.String),
		CallStatus:             entity.CallStatus(r.CallStatus.String),
		AssignedUserID:         r.AssignedUserID,
		IsDeleted:              r.IsDeleted,
		Platform:               r.Platform.String,
		CampaignName:           r.CampaignName.String,
		AdName:                 r.AdName.String,
		AdsetName:              r.AdsetName.String,
		FormName:               r.FormName.String,
		ConfigurationRequested: r.ConfigurationRequested.String,
		LeadStatus:             r.LeadStatus.String,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
	}
	if r.IsOrganic.Valid {
		v := r.IsOrganic.Bool
		l.IsOrganic = &v
	}
	if r.LeadCreatedTime.Valid {
		t := r.LeadCreatedTime.Time
		l.LeadCreatedTime = &t
	}
	return l
}

type LeadRepository struct {
	DB *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) List(ctx context.Context, f entity.LeadFilter) ([]*entity.Lead, error) {
	query, args := leadListQuery(f)
	var rows []leadRow
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	out := make([]*entity.Lead, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// leadListQuery selects live leads matching every non-empty filter field,
// newest first.
func leadListQuery(f entity.LeadFilter) (string, []any) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(leadColumns...)
	sb.From("leads")

	where := []string{"NOT is_deleted"}
	if f.AssignedUserID != "" {
		where = append(where, sb.Equal("assigned_user_id", f.AssignedUserID))
	}
	if f.Source != "" {
		where = append(where, sb.Equal("source", f.Source))
	}
	if f.Ownership != "" {
		where = append(where, sb.Equal("ownership", string(f.Ownership)))
	}
	if f.Furnishing != "" {
		where = append(where, sb.Equal("furnishing", string(f.Furnishing)))
	}
	if f.InterestLevel != "" {
		where = append(where, sb.Equal("interest_level", string(f.InterestLevel)))
	}
	if f.CallStatus != "" {
		where = append(where, sb.Equal("call_status", string(f.CallStatus)))
	}
	if f.Project != "" {
		where = append(where, fmt.Sprintf("%s = ANY(interested_projects)", sb.Var(f.Project)))
	}
	if f.InterestedArea != "" {
		where = append(where, fmt.Sprintf("%s = ANY(interested_areas)", sb.Var(f.InterestedArea)))
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		where = append(where, sb.Or(
			sb.ILike("client_name", pattern),
			sb.ILike("contact_number", pattern),
			sb.ILike("email", pattern),
		))
	}
	if f.CreatedFrom != nil {
		where = append(where, sb.GreaterEqualThan("created_at", *f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		where = append(where, sb.LessEqualThan("created_at", *f.CreatedTo))
	}
	if f.ModifiedFrom != nil {
		where = append(where, sb.GreaterEqualThan("updated_at", *f.ModifiedFrom))
	}
	if f.ModifiedTo != nil {
		where = append(where, sb.LessEqualThan("updated_at", *f.ModifiedTo))
	}
	sb.Where(where...)
	sb.OrderBy("created_at").Desc()
	return sb.Build()
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(leadColumns...)
	sb.From("leads")
	sb.Where(sb.Equal("id", id), "NOT is_deleted")

	query, args := sb.Build()
	var row leadRow
	if err := r.DB.GetContext(ctx, &row, query, args...); err != nil {
		return nil, notFound(err)
	}
	return row.toEntity(), nil
}

func (r *LeadRepository) Create(ctx context.Context, l *entity.Lead) error {
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("leads")
	ib.Cols(append(leadColumns, "phone_normalized", "email_normalized")...)
	ib.Values(
		l.ID, nullString(l.ExternalLeadID), l.ClientName, l.ContactNumber, nullString(l.Email), l.Source,
		pq.Array(l.InterestedAreas), pq.Array(l.InterestedProjects), string(l.Ownership), string(l.Furnishing),
		nullString(string(l.InterestLevel)), nullString(string(l.CallStatus)), l.AssignedUserID, l.IsDeleted,
		nullString(l.Platform), nullString(l.CampaignName), nullString(l.AdName), nullString(l.AdsetName), nullString(l.FormName),
		nullString(l.ConfigurationRequested), l.IsOrganic, l.LeadCreatedTime, nullString(l.LeadStatus),
		l.CreatedAt, l.UpdatedAt,
		nullString(contact.NormalizePhone(l.ContactNumber)), nullString(contact.NormalizeEmail(l.Email)),
	)

	query, args := ib.Build()
	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return entity.ErrDuplicateLead
		}
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Update(ctx context.Context, id string, upd entity.LeadUpdate) (*entity.Lead, error) {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("leads")

	assigns := []string{ub.Assign("updated_at", time.Now().UTC())}
	if upd.ClientName != nil {
		assigns = append(assigns, ub.Assign("client_name", *upd.ClientName))
	}
	if upd.ContactNumber != nil {
		assigns = append(assigns,
			ub.Assign("contact_number", *upd.ContactNumber),
			ub.Assign("phone_normalized", nullString(contact.NormalizePhone(*upd.ContactNumber))),
		)
	}
	if upd.Source != nil {
		assigns = append(assigns, ub.Assign("source", *upd.Source))
	}
	if upd.InterestedAreas != nil {
		assigns = append(assigns, ub.Assign("interested_areas", pq.Array(upd.InterestedAreas)))
	}
	if upd.InterestedProjects != nil {
		assigns = append(assigns, ub.Assign("interested_projects", pq.Array(upd.InterestedProjects)))
	}
	if upd.Ownership != nil {
		assigns = append(assigns, ub.Assign("ownership", string(*upd.Ownership)))
	}
	if upd.Furnishing != nil {
		assigns = append(assigns, ub.Assign("furnishing", string(*upd.Furnishing)))
	}
	if upd.InterestLevel != nil {
		assigns = append(assigns, ub.Assign("interest_level", nullString(string(*upd.InterestLevel))))
	}
	if upd.CallStatus != nil {
		assigns = append(assigns, ub.Assign("call_status", nullString(string(*upd.CallStatus))))
	}
	ub.Set(assigns...)
	ub.Where(ub.Equal("id", id), "NOT is_deleted")

	query, args := ub.Build()
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateLead
		}
		return nil, fmt.Errorf("update lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, entity.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *LeadRepository) SoftDelete(ctx context.Context, id string) error {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("leads")
	ub.Set(
		ub.Assign("is_deleted", true),
		ub.Assign("updated_at", time.Now().UTC()),
	)
	ub.Where(ub.Equal("id", id), "NOT is_deleted")

	query, args := ub.Build()
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *LeadRepository) DistinctFilterValues(ctx context.Context) (*entity.FilterValues, error) {
	out := &entity.FilterValues{}
	queries := []struct {
		dst   *[]string
		query string
	}{
		{&out.Sources, `SELECT DISTINCT source FROM leads WHERE NOT is_deleted AND source <> '' ORDER BY 1`},
		{&out.Projects, `SELECT DISTINCT p FROM leads, unnest(interested_projects) AS p WHERE NOT is_deleted AND p <> '' ORDER BY 1`},
		{&out.InterestedAreas, `SELECT DISTINCT a FROM leads, unnest(interested_areas) AS a WHERE NOT is_deleted AND a <> '' ORDER BY 1`},
	}
	for _, q := range queries {
		vals := []string{}
		if err := r.DB.SelectContext(ctx, &vals, q.query); err != nil {
			return nil, fmt.Errorf("distinct filter values: %w", err)
		}
		*q.dst = vals
	}
	return out, nil
}
