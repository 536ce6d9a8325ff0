// Package scheduler runs periodic background jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrNotRunning is returned by RunNow after Stop
var ErrNotRunning = errors.New("scheduler is not running")

// ErrUnknownJob is returned by RunNow for a name that was never registered
var ErrUnknownJob = errors.New("unknown job")

// JobStatus is the outcome of the last run of a job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is a unit of periodic work
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job
type JobFunc func(ctx context.Context) error

func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }

// JobState is a snapshot of a registered job
type JobState struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	Status    JobStatus  `json:"status"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
	Runs      int        `json:"runs"`
}

type entry struct {
	job     Job
	timeout time.Duration
	entryID cron.EntryID
	state   JobState
}

// Scheduler wraps a robfig cron instance. A job never overlaps itself: a
// tick that fires while the previous run is still going is skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu      sync.Mutex
	jobs    map[string]*entry
	running bool
	runCtx  context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a stopped Scheduler using standard five-field cron
// expressions and the descriptors (@hourly, @every 30m)
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger.Named("cron").Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		logger: logger,
		jobs:   make(map[string]*entry),
	}
}

// Register schedules job under name. timeout bounds one run; zero means no limit.
func (s *Scheduler) Register(name, spec string, timeout time.Duration, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	e := &entry{
		job:     job,
		timeout: timeout,
		state:   JobState{Name: name, Schedule: spec, Status: JobStatusPending},
	}
	id, err := s.cron.AddFunc(spec, func() { _ = s.execute(name) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", spec, name, err)
	}
	e.entryID = id
	s.jobs[name] = e
	return nil
}

// Start begins firing jobs. It returns immediately.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.runCtx, s.cancel = context.WithCancel(context.Background())
	s.running = true
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop cancels running jobs and waits for them to return or for ctx to end
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	cronDone := s.cron.Stop().Done()
	done := make(chan struct{})
	go func() {
		<-cronDone
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow runs a registered job synchronously, outside its schedule
func (s *Scheduler) RunNow(name string) error {
	return s.execute(name)
}

// States returns a snapshot of every registered job
func (s *Scheduler) States() []JobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobState, 0, len(s.jobs))
	for _, e := range s.jobs {
		st := e.state
		if next := s.cron.Entry(e.entryID).Next; !next.IsZero() {
			st.NextRunAt = &next
		}
		out = append(out, st)
	}
	return out
}

func (s *Scheduler) execute(name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	ctx := s.runCtx
	now := time.Now()
	e.state.Status = JobStatusRunning
	e.state.LastRunAt = &now
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	err := e.job.Run(ctx)
	elapsed := time.Since(now)

	s.mu.Lock()
	e.state.Runs++
	if err != nil {
		e.state.Status = JobStatusFailed
		e.state.LastError = err.Error()
	} else {
		e.state.Status = JobStatusSuccess
		e.state.LastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Job failed", zap.String("job", name), zap.Duration("elapsed", elapsed), zap.Error(err))
	} else {
		s.logger.Debug("Job finished", zap.String("job", name), zap.Duration("elapsed", elapsed))
	}
	return err
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct{ s *zap.SugaredLogger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
