package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/leadflow/internal/entity"
)

func TestDuplicateIndexMatchesAnyKey(t *testing.T) {
	idx := NewDuplicateIndex([]*entity.Lead{
		{ID: "a", ExternalLeadID: "l:1", ContactNumber: "+1 555 0100", Email: "Asha@Example.com"},
		{ID: "gone", ExternalLeadID: "l:2", ContactNumber: "5550999", IsDeleted: true},
	})

	id, ok := idx.Match(CandidateRow{ExternalID: "l:1"})
	assert.True(t, ok)
	assert.Equal(t, "a", id)

	assert.True(t, idx.IsDuplicate(CandidateRow{Email: " asha@example.COM "}))
	assert.True(t, idx.IsDuplicate(CandidateRow{Phone: "+15550100"}))
	assert.False(t, idx.IsDuplicate(CandidateRow{Phone: "15550100"}))

	// Deleted leads release their identity.
	assert.False(t, idx.IsDuplicate(CandidateRow{ExternalID: "l:2"}))
	assert.False(t, idx.IsDuplicate(CandidateRow{Phone: "5550999"}))
}

func TestDuplicateIndexGrowsDuringRun(t *testing.T) {
	idx := NewDuplicateIndex(nil)
	assert.Zero(t, idx.Len())

	row := CandidateRow{Phone: "555-0101"}
	assert.False(t, idx.IsDuplicate(row))

	idx.Add(&entity.Lead{ID: "b", ContactNumber: "5550101"})
	assert.True(t, idx.IsDuplicate(row))
	assert.Equal(t, 1, idx.Len())
}

func TestDuplicateIndexIgnoresEmptyKeys(t *testing.T) {
	idx := NewDuplicateIndex([]*entity.Lead{{ID: "a", ContactNumber: "5550100"}})
	assert.False(t, idx.IsDuplicate(CandidateRow{}))
	assert.False(t, idx.IsDuplicate(CandidateRow{Email: "", ExternalID: ""}))
}
