// Package scheduler runs the periodic supplier inventory sync in the background.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a sync run
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// maxRetryDelay caps the exponential backoff between attempts
const maxRetryDelay = 30 * time.Minute

// Job is one scheduled inventory sync, including its retries
type Job struct {
	ID           uuid.UUID
	Status       JobStatus
	Error        string
	UpdatedCount int
	StartedAt    *time.Time
	CompletedAt  *time.Time
	RetryCount   int
	MaxRetries   int
	NextRetryAt  *time.Time
}

// NewJob creates a pending job
func NewJob(maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete(updated int) {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.UpdatedCount = updated
	j.CompletedAt = &now
	j.NextRetryAt = nil
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry moves the job back to pending and returns the backoff
// before the next attempt: baseDelay * 2^(retryCount-1), capped.
func (j *Job) ScheduleRetry(baseDelay time.Duration) time.Duration {
	j.RetryCount++
	j.Status = JobStatusPending
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > maxRetryDelay || delay <= 0 {
		delay = maxRetryDelay
	}
	next := time.Now().Add(delay)
	j.NextRetryAt = &next
	return delay
}

// InventorySyncer pulls supplier stock levels into the catalog and
// reports how many variants changed
type InventorySyncer interface {
	SyncInventory(ctx context.Context) (int, error)
}

// SyncFunc adapts a function to InventorySyncer
type SyncFunc func(ctx context.Context) (int, error)

// SyncInventory calls f
func (f SyncFunc) SyncInventory(ctx context.Context) (int, error) {
	return f(ctx)
}

// Config holds scheduler configuration
type Config struct {
	Interval      time.Duration
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Interval:      time.Hour,
		JobTimeout:    time.Minute,
		RetryAttempts: 3,
		RetryDelay:    30 * time.Second,
	}
}

// Validate validates the configuration
func (c Config) Validate() error {
	if c.Interval <= 0 || c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 || (c.RetryAttempts > 0 && c.RetryDelay <= 0) {
		return ErrInvalidConfig
	}
	return nil
}

// Scheduler runs inventory sync jobs on a fixed interval. A single loop
// executes jobs, so runs never overlap.
type Scheduler struct {
	config Config
	syncer InventorySyncer
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastJob   *Job
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config Config, syncer InventorySyncer, logger *zap.Logger) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{config: config, syncer: syncer, logger: logger}, nil
}

// Start launches the sync loop. The first run happens one interval after start.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Inventory sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight run to return
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Inventory sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Inventory sync scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastJob returns a copy of the most recent job, or nil before the first run
func (s *Scheduler) LastJob() *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastJob == nil {
		return nil
	}
	job := *s.lastJob
	return &job
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runJob(ctx, NewJob(s.config.RetryAttempts))
		}
	}
}

// runJob executes job, retrying with backoff until it succeeds, runs out of
// attempts or the scheduler stops
func (s *Scheduler) runJob(ctx context.Context, job *Job) {
	for {
		s.execute(ctx, job)
		if !job.ShouldRetry() || ctx.Err() != nil {
			return
		}

		delay := job.ScheduleRetry(s.config.RetryDelay)
		s.record(job)
		s.logger.Info("Inventory sync scheduled for retry",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Duration("delay", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job *Job) {
	job.Start()
	s.record(job)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	updated, err := s.syncer.SyncInventory(jobCtx)
	if err != nil {
		job.Fail(err.Error())
		s.record(job)
		s.logger.Error("Inventory sync failed",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(err),
		)
		return
	}

	job.Complete(updated)
	s.record(job)
	s.logger.Info("Inventory sync completed",
		zap.String("job_id", job.ID.String()),
		zap.Int("updated", updated),
	)
}

func (s *Scheduler) record(job *Job) {
	snapshot := *job
	s.mu.Lock()
	s.lastJob = &snapshot
	s.mu.Unlock()
}
