package ingestion

import "errors"

var (
	// ErrSourceUnreachable aborts a run before any row is processed. The
	// cursor is left untouched so the next run retries from the same row.
	ErrSourceUnreachable = errors.New("source unreachable")

	// ErrCursorRegression is returned when a cursor would move backwards.
	ErrCursorRegression = errors.New("cursor cannot move backwards")
)
