// Package memory holds map-backed repositories used when no database is
// configured and as fakes in tests. They enforce the same uniqueness rules as
// the Postgres schema.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xavierca1/leadflow/internal/contact"
	"github.com/xavierca1/leadflow/internal/entity"
)

type LeadRepository struct {
	mu    sync.RWMutex
	leads map[string]*entity.Lead
	// CreateHook, when set, runs before each insert and may fail it.
	CreateHook func(l *entity.Lead) error
}

func NewLeadRepository() *LeadRepository {
	return &LeadRepository{leads: map[string]*entity.Lead{}}
}

func (r *LeadRepository) List(_ context.Context, f entity.LeadFilter) ([]*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*entity.Lead{}
	for _, l := range r.leads {
		if l.IsDeleted || !matches(l, f) {
			continue
		}
		out = append(out, cloneLead(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *LeadRepository) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.leads[id]
	if !ok || l.IsDeleted {
		return nil, entity.ErrNotFound
	}
	return cloneLead(l), nil
}

func (r *LeadRepository) Create(_ context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CreateHook != nil {
		if err := r.CreateHook(lead); err != nil {
			return err
		}
	}
	if r.conflicts(lead, "") {
		return entity.ErrDuplicateLead
	}
	r.leads[lead.ID] = cloneLead(lead)
	return nil
}

func (r *LeadRepository) Update(_ context.Context, id string, upd entity.LeadUpdate) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.leads[id]
	if !ok || l.IsDeleted {
		return nil, entity.ErrNotFound
	}
	next := cloneLead(l)
	applyUpdate(next, upd)
	if r.conflicts(next, id) {
		return nil, entity.ErrDuplicateLead
	}
	next.UpdatedAt = time.Now().UTC()
	r.leads[id] = next
	return cloneLead(next), nil
}

func (r *LeadRepository) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.leads[id]
	if !ok || l.IsDeleted {
		return entity.ErrNotFound
	}
	l.IsDeleted = true
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *LeadRepository) DistinctFilterValues(_ context.Context) (*entity.FilterValues, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources, projects, areas := set{}, set{}, set{}
	for _, l := range r.leads {
		if l.IsDeleted {
			continue
		}
		sources.add(l.Source)
		projects.add(l.InterestedProjects...)
		areas.add(l.InterestedAreas...)
	}
	return &entity.FilterValues{
		Sources:         sources.sorted(),
		Projects:        projects.sorted(),
		InterestedAreas: areas.sorted(),
	}, nil
}

// Len counts every stored lead, deleted ones included.
func (r *LeadRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.leads)
}

func (r *LeadRepository) conflicts(lead *entity.Lead, skipID string) bool {
	email := contact.NormalizeEmail(lead.Email)
	phone := contact.NormalizePhone(lead.ContactNumber)
	for id, l := range r.leads {
		if id == skipID || l.IsDeleted {
			continue
		}
		if lead.ExternalLeadID != "" && l.ExternalLeadID == lead.ExternalLeadID {
			return true
		}
		if email != "" && contact.NormalizeEmail(l.Email) == email {
			return true
		}
		if phone != "" && contact.NormalizePhone(l.ContactNumber) == phone {
			return true
		}
	}
	return false
}

func matches(l *entity.Lead, f entity.LeadFilter) bool {
	if f.AssignedUserID != "" && l.AssignedUserID != f.AssignedUserID {
		return false
	}
	if f.Source != "" && l.Source != f.Source {
		return false
	}
	if f.Ownership != "" && l.Ownership != f.Ownership {
		return false
	}
	if f.Furnishing != "" && l.Furnishing != f.Furnishing {
		return false
	}
	if f.InterestLevel != "" && l.InterestLevel != f.InterestLevel {
		return false
	}
	if f.CallStatus != "" && l.CallStatus != f.CallStatus {
		return false
	}
	if f.Project != "" && !contains(l.InterestedProjects, f.Project) {
		return false
	}
	if f.InterestedArea != "" && !contains(l.InterestedAreas, f.InterestedArea) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(l.ClientName), q) &&
			!strings.Contains(strings.ToLower(l.ContactNumber), q) &&
			!strings.Contains(strings.ToLower(l.Email), q) {
			return false
		}
	}
	if !inRange(l.CreatedAt, f.CreatedFrom, f.CreatedTo) || !inRange(l.UpdatedAt, f.ModifiedFrom, f.ModifiedTo) {
		return false
	}
	return true
}

func applyUpdate(l *entity.Lead, upd entity.LeadUpdate) {
	if upd.ClientName != nil {
		l.ClientName = *upd.ClientName
	}
	if upd.ContactNumber != nil {
		l.ContactNumber = *upd.ContactNumber
	}
	if upd.Source != nil {
		l.Source = *upd.Source
	}
	if upd.InterestedAreas != nil {
		l.InterestedAreas = append([]string{}, upd.InterestedAreas...)
	}
	if upd.InterestedProjects != nil {
		l.InterestedProjects = append([]string{}, upd.InterestedProjects...)
	}
	if upd.Ownership != nil {
		l.Ownership = *upd.Ownership
	}
	if upd.Furnishing != nil {
		l.Furnishing = *upd.Furnishing
	}
	if upd.InterestLevel != nil {
		l.InterestLevel = *upd.InterestLevel
	}
	if upd.CallStatus != nil {
		l.CallStatus = *upd.CallStatus
	}
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func cloneLead(l *entity.Lead) *entity.Lead {
	c := *l
	c.InterestedAreas = append([]string{}, l.InterestedAreas...)
	c.InterestedProjects = append([]string{}, l.InterestedProjects...)
	return &c
}

type set map[string]struct{}

func (s set) add(vals ...string) {
	for _, v := range vals {
		if v != "" {
			s[v] = struct{}{}
		}
	}
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
