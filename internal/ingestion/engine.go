package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/entity"
)

// DefaultPollInterval applies to sources that do not configure their own.
const DefaultPollInterval = 10 * time.Minute

// SourceResolver finds the feed a run should read. A nil source with a nil
// error means there is nothing to import.
type SourceResolver interface {
	Resolve(ctx context.Context, sourceID string) (*Source, error)
}

// Assigner picks the owner of leads imported without an explicit user.
type Assigner interface {
	Next(ctx context.Context) (string, error)
}

type Dependencies struct {
	Leads    entity.LeadRepositoryInterface
	Users    entity.UserRepositoryInterface
	Cursors  *CursorStore
	Logs     entity.ImportLogRepositoryInterface
	Rows     RowSource
	Resolver SourceResolver
	Notifier Notifier
	Assigner Assigner
	Metrics  Metrics
	Logger   logrus.FieldLogger

	// FetchTimeout bounds the source read. Zero means no timeout.
	FetchTimeout time.Duration
}

type RunRequest struct {
	SourceID string
	Trigger  Trigger
	// DueSlack lets scheduled runs start slightly before the cursor's NextRunAt.
	DueSlack time.Duration
}

// UploadRequest carries the rows of a manually uploaded spreadsheet.
type UploadRequest struct {
	Rows     []RawRow
	Label    string
	UploadBy string
}

// Engine runs the ingestion pipeline: fetch rows past the cursor, classify
// each one, insert the new leads, advance the cursor row by row, log the run
// and notify sales users.
type Engine struct {
	d   Dependencies
	now func() time.Time

	mu    sync.Mutex
	state State
}

func NewEngine(d Dependencies) *Engine {
	if d.Metrics == nil {
		d.Metrics = noopMetrics{}
	}
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	if d.Assigner == nil {
		d.Assigner = NewRoundRobinAssigner(d.Users)
	}
	return &Engine{d: d, now: time.Now, state: StateIdle}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

type batch struct {
	source   Source
	rows     []RawRow
	startRow int
	index    *DuplicateIndex
	advance  bool
	assignee string
	known    map[string]bool
	log      logrus.FieldLogger
}

// Run executes one ingestion run. The returned error is non-nil only when the
// run was aborted before any row was processed; the result is still returned
// and has already been logged.
func (e *Engine) Run(ctx context.Context, req RunRequest) (*Result, error) {
	started := e.now().UTC()
	log := e.d.Logger.WithField("trigger", req.Trigger)

	src, err := e.d.Resolver.Resolve(ctx, req.SourceID)
	if err != nil {
		err = fmt.Errorf("resolve source %q: %w", req.SourceID, err)
		if req.SourceID == "" {
			return nil, err
		}
		// A named source still gets an audit entry.
		res := &Result{SourceID: req.SourceID}
		return e.abort(ctx, res, started, log.WithField("source_id", req.SourceID), err)
	}
	if src == nil {
		log.Info("no active import source, nothing to do")
		return &Result{Skipped: true, SkipReason: "no active source"}, nil
	}
	log = log.WithField("source_id", src.ID)

	if req.Trigger == TriggerSchedule {
		due, err := e.isDue(ctx, src.ID, req.DueSlack)
		if err != nil {
			log.WithError(err).Warn("could not read cursor schedule, running anyway")
		} else if !due {
			log.Debug("source not due yet")
			return &Result{SourceID: src.ID, Skipped: true, SkipReason: "not due"}, nil
		}
	}

	res := &Result{SourceID: src.ID, Errors: []string{}}

	lastRow, err := e.d.Cursors.LastProcessedRow(ctx, src.ID)
	if err != nil {
		return e.abort(ctx, res, started, log, err)
	}
	res.LastRow = lastRow

	e.setState(StateFetching)
	log.WithField("after_row", lastRow).Info("fetching rows")

	fetched, err := e.fetch(ctx, *src, lastRow)
	if err != nil {
		return e.abort(ctx, res, started, log, err)
	}

	e.setState(StateClassifying)
	existing, err := e.d.Leads.List(ctx, entity.LeadFilter{})
	if err != nil {
		return e.abort(ctx, res, started, log, fmt.Errorf("load existing leads: %w", err))
	}

	res.NewRowsDetected = len(fetched.Rows)
	res.RowsScanned = len(fetched.Rows)
	if fetched.RowsRead > res.RowsScanned {
		res.RowsScanned = fetched.RowsRead
	}

	b := &batch{
		source:   *src,
		rows:     fetched.Rows,
		startRow: lastRow,
		index:    NewDuplicateIndex(existing),
		advance:  true,
		known:    map[string]bool{},
		log:      log,
	}
	log.WithFields(logrus.Fields{"rows": len(b.rows), "rows_read": res.RowsScanned}).Info("processing new rows")

	e.process(ctx, b, res)
	e.finalize(ctx, b, res, started)
	return res, nil
}

// IngestUpload classifies and inserts the rows of an uploaded spreadsheet.
// Uploads have no cursor; the run is still logged under UploadSourceID.
func (e *Engine) IngestUpload(ctx context.Context, req UploadRequest) (*Result, error) {
	started := e.now().UTC()
	log := e.d.Logger.WithFields(logrus.Fields{"trigger": TriggerUpload, "uploaded_by": req.UploadBy})

	res := &Result{SourceID: UploadSourceID, Errors: []string{}}

	e.setState(StateClassifying)
	existing, err := e.d.Leads.List(ctx, entity.LeadFilter{})
	if err != nil {
		e.setState(StateIdle)
		return nil, fmt.Errorf("load existing leads: %w", err)
	}

	res.RowsScanned = len(req.Rows)
	res.NewRowsDetected = len(req.Rows)

	b := &batch{
		source: Source{
			ID:       UploadSourceID,
			Kind:     SourceKindUpload,
			Label:    req.Label,
			Platform: "Excel File",
		},
		rows:     req.Rows,
		startRow: headerRow,
		index:    NewDuplicateIndex(existing),
		assignee: req.UploadBy,
		known:    map[string]bool{},
		log:      log,
	}

	e.process(ctx, b, res)
	e.finalize(ctx, b, res, started)
	return res, nil
}

func (e *Engine) fetch(ctx context.Context, src Source, afterRow int) (*FetchResult, error) {
	if e.d.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.d.FetchTimeout)
		defer cancel()
	}

	fetched, err := e.d.Rows.FetchRows(ctx, src, afterRow)
	if err != nil {
		if !errors.Is(err, ErrSourceUnreachable) {
			err = fmt.Errorf("%w: %v", ErrSourceUnreachable, err)
		}
		return nil, err
	}
	if fetched == nil {
		fetched = &FetchResult{}
	}
	return fetched, nil
}

func (e *Engine) process(ctx context.Context, b *batch, res *Result) {
	for i, raw := range b.rows {
		rowNumber := b.startRow + i + 1
		cand := ResolveRow(raw, rowNumber)

		outcome := e.processRow(ctx, b, cand)
		res.record(outcome, rowNumber)
		e.d.Metrics.RecordImportRow(string(outcome.Kind))

		rowLog := b.log.WithFields(logrus.Fields{"row": rowNumber, "outcome": outcome.Kind})
		if outcome.Reason != "" {
			rowLog = rowLog.WithField("reason", outcome.Reason)
		}
		rowLog.Debug("row processed")

		if !b.advance {
			continue
		}
		_, err := e.d.Cursors.Advance(ctx, AdvanceInput{
			SourceID:     b.source.ID,
			Row:          rowNumber,
			ExternalID:   cand.ExternalID,
			SourceTime:   cand.SourceTime,
			PollInterval: b.source.PollInterval,
		})
		if err != nil {
			rowLog.WithError(err).Error("cursor not advanced")
			res.addError(rowNumber, "cursor not advanced: "+err.Error())
			continue
		}
		res.LastRow = rowNumber
	}
}

func (e *Engine) processRow(ctx context.Context, b *batch, c CandidateRow) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Failed(fmt.Sprintf("unexpected failure: %v", r))
		}
	}()

	e.setState(StateClassifying)
	if reason := c.Validate(); reason != "" {
		return Invalid(reason)
	}
	if b.index.IsDuplicate(c) {
		return Duplicate()
	}

	e.setState(StateInserting)
	assignee, err := e.assigneeFor(ctx, b, c)
	if err != nil {
		return Failed(err.Error())
	}

	lead, err := entity.NewLead(c.ToLead(b.source, assignee))
	if err != nil {
		return Invalid(err.Error())
	}

	if err := e.d.Leads.Create(ctx, lead); err != nil {
		// Someone created the same identity outside this run.
		if errors.Is(err, entity.ErrDuplicateLead) {
			b.index.Add(lead)
			return Duplicate()
		}
		return Failed(err.Error())
	}

	b.index.Add(lead)
	return Inserted(lead)
}

func (e *Engine) assigneeFor(ctx context.Context, b *batch, c CandidateRow) (string, error) {
	if id := c.AssignedUserID; id != "" {
		ok, seen := b.known[id]
		if !seen {
			_, err := e.d.Users.FindByID(ctx, id)
			ok = err == nil
			b.known[id] = ok
		}
		if ok {
			return id, nil
		}
	}
	if b.assignee != "" {
		return b.assignee, nil
	}
	return e.d.Assigner.Next(ctx)
}

func (e *Engine) finalize(ctx context.Context, b *batch, res *Result, started time.Time) {
	e.setState(StateFinalizing)
	defer e.setState(StateIdle)

	// An empty run still records that the source was polled.
	if b.advance && len(b.rows) == 0 {
		if _, err := e.d.Cursors.Advance(ctx, AdvanceInput{
			SourceID:     b.source.ID,
			Row:          b.startRow,
			PollInterval: b.source.PollInterval,
		}); err != nil {
			b.log.WithError(err).Warn("cursor timestamps not refreshed")
		}
	}

	res.Status = res.finalStatus()
	e.appendLog(ctx, res, started, b.log)
	e.d.Metrics.RecordImportRun(string(res.Status), e.now().Sub(started))

	b.log.WithFields(logrus.Fields{
		"status":     res.Status,
		"inserted":   res.LeadsInserted,
		"duplicates": res.DuplicatesSkipped,
		"rejected":   res.RowsRejected,
		"errors":     len(res.Errors),
		"last_row":   res.LastRow,
	}).Info("import run complete")

	if res.LeadsInserted > 0 && e.d.Notifier != nil {
		e.d.Notifier.NotifyNewLeads(ctx, res.InsertedLeads)
	}
}

// abort ends a run that failed before row processing. Nothing but the log
// entry is written.
func (e *Engine) abort(ctx context.Context, res *Result, started time.Time, log logrus.FieldLogger, cause error) (*Result, error) {
	e.setState(StateFailed)
	defer e.setState(StateIdle)

	log.WithError(cause).Error("import run aborted")

	res.Status = entity.ImportError
	res.Errors = []string{cause.Error()}
	e.appendLog(ctx, res, started, log)
	e.d.Metrics.RecordImportRun(string(res.Status), e.now().Sub(started))
	return res, cause
}

func (e *Engine) appendLog(ctx context.Context, res *Result, started time.Time, log logrus.FieldLogger) {
	entry := &entity.ImportLog{
		ID:                uuid.New().String(),
		SourceID:          res.SourceID,
		RunAt:             started,
		Status:            res.Status,
		RowsScanned:       res.RowsScanned,
		NewRowsDetected:   res.NewRowsDetected,
		LeadsInserted:     res.LeadsInserted,
		DuplicatesSkipped: res.DuplicatesSkipped,
		Errors:            append([]string{}, res.Errors...),
	}
	if err := e.d.Logs.Append(ctx, entry); err != nil {
		log.WithError(err).Error("import log not written")
	}
}

func (e *Engine) isDue(ctx context.Context, sourceID string, slack time.Duration) (bool, error) {
	cur, err := e.d.Cursors.Get(ctx, sourceID)
	if errors.Is(err, entity.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return !cur.NextRunAt.After(e.now().Add(slack)), nil
}

func rowError(rowNumber int, msg string) string {
	return fmt.Sprintf("Row %d: %s", rowNumber, msg)
}
