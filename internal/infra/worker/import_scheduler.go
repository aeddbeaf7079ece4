package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/infra/lock"
	"github.com/xavierca1/leadflow/internal/ingestion"
)

const (
	DefaultImportInterval = 10 * time.Minute
	defaultLockTTL        = 30 * time.Minute
	lockKey               = "import-run"
)

// ErrRunInProgress is returned when another import holds the run flag.
var ErrRunInProgress = errors.New("an import is already running")

var ErrSchedulerStopped = errors.New("import scheduler is stopped")

type Runner interface {
	Run(ctx context.Context, req ingestion.RunRequest) (*ingestion.Result, error)
}

// Locker extends the run flag across replicas.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

type SkipRecorder interface {
	RecordSkippedTick()
}

type ImportSchedulerConfig struct {
	Interval   time.Duration
	LockTTL    time.Duration
	RunOnStart bool
}

type TriggerResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ImportScheduler runs the ingestion engine on a fixed interval and on
// demand. Ticks and manual triggers share one run flag; a tick that finds it
// taken is dropped.
type ImportScheduler struct {
	runner  Runner
	locker  Locker
	skips   SkipRecorder
	logger  logrus.FieldLogger
	config  ImportSchedulerConfig
	running atomic.Bool

	mu       sync.Mutex
	started  bool
	stopped  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	inFlight sync.WaitGroup
}

func NewImportScheduler(runner Runner, locker Locker, skips SkipRecorder, config ImportSchedulerConfig, logger logrus.FieldLogger) *ImportScheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultImportInterval
	}
	if config.LockTTL <= 0 {
		config.LockTTL = defaultLockTTL
	}
	return &ImportScheduler{
		runner: runner,
		locker: locker,
		skips:  skips,
		logger: logger.WithField("component", "import_scheduler"),
		config: config,
	}
}

// Start launches the ticker loop. Calling it on a started scheduler is a no-op.
func (s *ImportScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.stopped = false
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	s.logger.WithFields(logrus.Fields{
		"interval":     s.config.Interval.String(),
		"run_on_start": s.config.RunOnStart,
	}).Info("import scheduler started")

	go s.loop(ctx, s.stopCh, s.doneCh)
}

// Stop halts the ticker and waits for any run it started, including manual
// triggers. Calling it on a stopped scheduler is a no-op.
func (s *ImportScheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.stopped = true
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
	s.inFlight.Wait()
	s.logger.Info("import scheduler stopped")
}

func (s *ImportScheduler) IsRunning() bool {
	return s.running.Load()
}

// Trigger starts a manual run in the background and returns immediately.
// Manual runs ignore the cursor's next-run time.
func (s *ImportScheduler) Trigger(ctx context.Context, sourceID string) TriggerResult {
	// inFlight.Add must not race Stop's Wait.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return TriggerResult{Success: false, Message: ErrSchedulerStopped.Error()}
	}
	if !s.running.CompareAndSwap(false, true) {
		return TriggerResult{Success: false, Message: ErrRunInProgress.Error()}
	}

	s.inFlight.Add(1)
	go func() {
		defer s.inFlight.Done()
		runCtx := context.WithoutCancel(ctx)
		err := s.runHeld(runCtx, func(ctx context.Context) error {
			return s.run(ctx, ingestion.RunRequest{SourceID: sourceID, Trigger: ingestion.TriggerManual})
		})
		if err != nil {
			s.logger.WithError(err).WithField("source_id", sourceID).Error("manual import failed")
		}
	}()

	return TriggerResult{Success: true, Message: "Import started"}
}

// RunExclusive runs fn under the run flag, or fails with ErrRunInProgress.
func (s *ImportScheduler) RunExclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	return s.runHeld(ctx, fn)
}

// runHeld expects the flag to be set and clears it when done.
func (s *ImportScheduler) runHeld(ctx context.Context, fn func(ctx context.Context) error) error {
	defer s.running.Store(false)

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, lockKey, s.config.LockTTL)
		switch {
		case errors.Is(err, lock.ErrNotAcquired):
			return ErrRunInProgress
		case err != nil:
			s.logger.WithError(err).Warn("distributed lock unavailable, running with local guard only")
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					s.logger.WithError(err).Warn("could not release import lock")
				}
			}()
		}
	}

	return fn(ctx)
}

func (s *ImportScheduler) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if s.config.RunOnStart {
		s.tick(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *ImportScheduler) tick(ctx context.Context) {
	err := s.RunExclusive(ctx, func(ctx context.Context) error {
		return s.run(ctx, ingestion.RunRequest{Trigger: ingestion.TriggerSchedule, DueSlack: s.config.Interval / 2})
	})
	switch {
	case errors.Is(err, ErrRunInProgress):
		s.logger.Warn("previous import still running, tick skipped")
		if s.skips != nil {
			s.skips.RecordSkippedTick()
		}
	case err != nil:
		s.logger.WithError(err).Error("scheduled import failed")
	}
}

func (s *ImportScheduler) run(ctx context.Context, req ingestion.RunRequest) error {
	res, err := s.runner.Run(ctx, req)
	if err != nil {
		return err
	}
	if res != nil && res.Skipped {
		s.logger.WithField("reason", res.SkipReason).Debug("import skipped")
	}
	return nil
}
