package ingestion

import (
	"github.com/xavierca1/leadflow/internal/contact"
	"github.com/xavierca1/leadflow/internal/entity"
)

// DuplicateIndex answers "does this row already exist?" in constant time.
// It is built once per run and grows as the run inserts leads.
type DuplicateIndex struct {
	byExternalID map[string]string
	byEmail      map[string]string
	byPhone      map[string]string
}

func NewDuplicateIndex(leads []*entity.Lead) *DuplicateIndex {
	idx := &DuplicateIndex{
		byExternalID: make(map[string]string, len(leads)),
		byEmail:      make(map[string]string, len(leads)),
		byPhone:      make(map[string]string, len(leads)),
	}
	for _, l := range leads {
		idx.Add(l)
	}
	return idx
}

// Add registers a lead. Deleted leads are ignored.
func (i *DuplicateIndex) Add(l *entity.Lead) {
	if l == nil || l.IsDeleted {
		return
	}
	if l.ExternalLeadID != "" {
		i.byExternalID[l.ExternalLeadID] = l.ID
	}
	if e := contact.NormalizeEmail(l.Email); e != "" {
		i.byEmail[e] = l.ID
	}
	if p := contact.NormalizePhone(l.ContactNumber); p != "" {
		i.byPhone[p] = l.ID
	}
}

// Match returns the id of the lead sharing any identity key with the row.
func (i *DuplicateIndex) Match(c CandidateRow) (string, bool) {
	if c.ExternalID != "" {
		if id, ok := i.byExternalID[c.ExternalID]; ok {
			return id, true
		}
	}
	if e := contact.NormalizeEmail(c.Email); e != "" {
		if id, ok := i.byEmail[e]; ok {
			return id, true
		}
	}
	if p := contact.NormalizePhone(c.Phone); p != "" {
		if id, ok := i.byPhone[p]; ok {
			return id, true
		}
	}
	return "", false
}

func (i *DuplicateIndex) IsDuplicate(c CandidateRow) bool {
	_, ok := i.Match(c)
	return ok
}

// Len is the number of distinct identity keys held.
func (i *DuplicateIndex) Len() int {
	return len(i.byExternalID) + len(i.byEmail) + len(i.byPhone)
}
