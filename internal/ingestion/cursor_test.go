package ingestion_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadflow/internal/infra/memory"
	"github.com/xavierca1/leadflow/internal/ingestion"
)

func TestCursorStartsAtHeader(t *testing.T) {
	store := ingestion.NewCursorStore(memory.NewCursorRepository())

	row, err := store.LastProcessedRow(context.Background(), "fresh")

	require.NoError(t, err)
	assert.Equal(t, 1, row)
}

func TestCursorAdvanceIsMonotonic(t *testing.T) {
	ctx := context.Background()
	store := ingestion.NewCursorStore(memory.NewCursorRepository())
	ts := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	cur, err := store.Advance(ctx, ingestion.AdvanceInput{SourceID: "s", Row: 4, ExternalID: "l:4", SourceTime: &ts, PollInterval: 5 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, 4, cur.LastProcessedRow)
	assert.Equal(t, cur.LastRunAt.Add(5*time.Minute), cur.NextRunAt)

	_, err = store.Advance(ctx, ingestion.AdvanceInput{SourceID: "s", Row: 3})
	assert.ErrorIs(t, err, ingestion.ErrCursorRegression)

	_, err = store.Advance(ctx, ingestion.AdvanceInput{SourceID: "s", Row: 0})
	assert.ErrorIs(t, err, ingestion.ErrCursorRegression)

	// Same row refreshes timestamps and keeps the last seen id.
	same, err := store.Advance(ctx, ingestion.AdvanceInput{SourceID: "s", Row: 4})
	require.NoError(t, err)
	assert.Equal(t, "l:4", same.LastProcessedID)
	require.NotNil(t, same.LastProcessedTime)
	assert.Equal(t, ts, *same.LastProcessedTime)

	row, err := store.LastProcessedRow(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 4, row)
}
