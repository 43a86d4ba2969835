package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestJob_ScheduleRetryBacksOff(t *testing.T) {
	job := NewJob(5)
	job.Start()
	job.Fail("supplier down")
	require.True(t, job.ShouldRetry())

	assert.Equal(t, time.Second, job.ScheduleRetry(time.Second))
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 2*time.Second, job.ScheduleRetry(time.Second))
	assert.Equal(t, 4*time.Second, job.ScheduleRetry(time.Second))
	assert.Equal(t, maxRetryDelay, job.ScheduleRetry(time.Hour))
	require.NotNil(t, job.NextRetryAt)

	job.Start()
	job.Complete(7)
	assert.Equal(t, JobStatusSuccess, job.Status)
	assert.Equal(t, 7, job.UpdatedCount)
	assert.Nil(t, job.NextRetryAt)
	assert.False(t, job.ShouldRetry())
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero interval", Config{JobTimeout: time.Second}},
		{"zero timeout", Config{Interval: time.Second}},
		{"negative retries", Config{Interval: time.Second, JobTimeout: time.Second, RetryAttempts: -1}},
		{"retries without delay", Config{Interval: time.Second, JobTimeout: time.Second, RetryAttempts: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScheduler(tt.cfg, SyncFunc(func(context.Context) (int, error) { return 0, nil }), nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestScheduler_RunsOnInterval(t *testing.T) {
	var calls atomic.Int32
	syncer := SyncFunc(func(ctx context.Context) (int, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return int(calls.Add(1)), nil
	})

	s, err := NewScheduler(Config{Interval: 10 * time.Millisecond, JobTimeout: time.Second}, syncer, nil)
	require.NoError(t, err)
	assert.Nil(t, s.LastJob())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop(ctx))

	last := s.LastJob()
	require.NotNil(t, last)
	assert.Equal(t, JobStatusSuccess, last.Status)
	assert.Positive(t, last.UpdatedCount)
}

func TestScheduler_RetriesFailedSync(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var calls atomic.Int32
	syncer := SyncFunc(func(context.Context) (int, error) {
		if calls.Add(1) < 3 {
			return 0, errors.New("supplier timeout")
		}
		return 4, nil
	})

	s, err := NewScheduler(Config{
		Interval:      time.Hour,
		JobTimeout:    time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	}, syncer, zap.New(core))
	require.NoError(t, err)

	s.runJob(context.Background(), NewJob(3))

	last := s.LastJob()
	require.NotNil(t, last)
	assert.Equal(t, JobStatusSuccess, last.Status)
	assert.Equal(t, 2, last.RetryCount)
	assert.Equal(t, 4, last.UpdatedCount)
	assert.Empty(t, last.Error)
	assert.Equal(t, 2, logs.FilterMessage("Inventory sync failed").Len())
	assert.Equal(t, 2, logs.FilterMessage("Inventory sync scheduled for retry").Len())
}

func TestScheduler_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	syncer := SyncFunc(func(context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("supplier down")
	})

	s, err := NewScheduler(Config{
		Interval:      time.Hour,
		JobTimeout:    time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, syncer, nil)
	require.NoError(t, err)

	job := NewJob(2)
	s.runJob(context.Background(), job)

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "supplier down", job.Error)
	assert.Equal(t, JobStatusFailed, s.LastJob().Status)
}
