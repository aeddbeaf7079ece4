package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/leadflow/internal/entity"
)

// headerRow is the row a fresh cursor points at, so processing starts at row 2.
const headerRow = 1

type AdvanceInput struct {
	SourceID     string
	Row          int
	ExternalID   string
	SourceTime   *time.Time
	PollInterval time.Duration
}

// CursorStore persists per-source ingestion progress.
type CursorStore struct {
	repo entity.CursorRepositoryInterface
	now  func() time.Time
}

func NewCursorStore(repo entity.CursorRepositoryInterface) *CursorStore {
	return &CursorStore{repo: repo, now: time.Now}
}

func (s *CursorStore) Get(ctx context.Context, sourceID string) (*entity.ImportCursor, error) {
	return s.repo.Find(ctx, sourceID)
}

// LastProcessedRow defaults to the header row when the source has no cursor.
func (s *CursorStore) LastProcessedRow(ctx context.Context, sourceID string) (int, error) {
	cur, err := s.repo.Find(ctx, sourceID)
	if errors.Is(err, entity.ErrNotFound) {
		return headerRow, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load cursor %s: %w", sourceID, err)
	}
	if cur.LastProcessedRow < headerRow {
		return headerRow, nil
	}
	return cur.LastProcessedRow, nil
}

// Advance moves the cursor to in.Row. Repeating the current row only refreshes
// the run timestamps; a lower row fails with ErrCursorRegression.
func (s *CursorStore) Advance(ctx context.Context, in AdvanceInput) (*entity.ImportCursor, error) {
	if in.Row < headerRow {
		return nil, fmt.Errorf("%w: row %d", ErrCursorRegression, in.Row)
	}

	current, err := s.repo.Find(ctx, in.SourceID)
	switch {
	case errors.Is(err, entity.ErrNotFound):
		current = nil
	case err != nil:
		return nil, fmt.Errorf("load cursor %s: %w", in.SourceID, err)
	}
	if current != nil && in.Row < current.LastProcessedRow {
		return nil, fmt.Errorf("%w: %d < %d", ErrCursorRegression, in.Row, current.LastProcessedRow)
	}

	now := s.now().UTC()
	cur := &entity.ImportCursor{
		SourceID:          in.SourceID,
		LastProcessedRow:  in.Row,
		LastProcessedID:   in.ExternalID,
		LastProcessedTime: in.SourceTime,
		LastRunAt:         now,
		NextRunAt:         now.Add(in.PollInterval),
	}
	if current != nil {
		if cur.LastProcessedID == "" {
			cur.LastProcessedID = current.LastProcessedID
		}
		if cur.LastProcessedTime == nil {
			cur.LastProcessedTime = current.LastProcessedTime
		}
	}

	if err := s.repo.Upsert(ctx, cur); err != nil {
		return nil, fmt.Errorf("save cursor %s: %w", in.SourceID, err)
	}
	return cur, nil
}
