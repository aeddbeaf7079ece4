package ingestion

import "github.com/xavierca1/leadflow/internal/entity"

type OutcomeKind string

const (
	OutcomeInserted  OutcomeKind = "inserted"
	OutcomeDuplicate OutcomeKind = "duplicate"
	OutcomeInvalid   OutcomeKind = "invalid"
	OutcomeFailed    OutcomeKind = "failed"
)

// Outcome is the disposition of a single row. Invalid and Failed both carry a
// reason and both count against the run's error list.
type Outcome struct {
	Kind   OutcomeKind
	Lead   *entity.Lead
	Reason string
}

func Inserted(l *entity.Lead) Outcome { return Outcome{Kind: OutcomeInserted, Lead: l} }
func Duplicate() Outcome              { return Outcome{Kind: OutcomeDuplicate} }
func Invalid(reason string) Outcome   { return Outcome{Kind: OutcomeInvalid, Reason: reason} }
func Failed(reason string) Outcome    { return Outcome{Kind: OutcomeFailed, Reason: reason} }

// State is the engine's position in a run.
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateClassifying State = "classifying"
	StateInserting   State = "inserting"
	StateFinalizing  State = "finalizing"
	StateFailed      State = "failed"
)

type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerManual   Trigger = "manual"
	TriggerUpload   Trigger = "upload"
)

// Result summarises one run.
type Result struct {
	SourceID          string              `json:"source_id,omitempty"`
	Status            entity.ImportStatus `json:"status,omitempty"`
	RowsScanned       int                 `json:"rows_scanned"`
	NewRowsDetected   int                 `json:"new_rows_detected"`
	LeadsInserted     int                 `json:"leads_inserted"`
	DuplicatesSkipped int                 `json:"duplicates_skipped"`
	RowsRejected      int                 `json:"rows_rejected"`
	Errors            []string            `json:"errors"`
	InsertedLeads     []*entity.Lead      `json:"-"`
	LastRow           int                 `json:"last_row,omitempty"`
	// Skipped is set when the run ended without touching any source.
	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
}

func (r *Result) record(o Outcome, rowNumber int) {
	switch o.Kind {
	case OutcomeInserted:
		r.LeadsInserted++
		r.InsertedLeads = append(r.InsertedLeads, o.Lead)
	case OutcomeDuplicate:
		r.DuplicatesSkipped++
	default:
		r.RowsRejected++
		r.addError(rowNumber, o.Reason)
	}
}

func (r *Result) addError(rowNumber int, msg string) {
	r.Errors = append(r.Errors, rowError(rowNumber, msg))
}

// finalStatus: success without errors, partial when something was inserted
// despite errors, error otherwise.
func (r *Result) finalStatus() entity.ImportStatus {
	switch {
	case len(r.Errors) == 0:
		return entity.ImportSuccess
	case r.LeadsInserted > 0:
		return entity.ImportPartial
	default:
		return entity.ImportError
	}
}
