package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knuut/knuut-api/internal/sweep"
	"github.com/knuut/knuut-api/internal/worker"
)

type fakeRunner struct {
	calls       atomic.Int64
	err         error
	result      *sweep.Result
	sawDeadline atomic.Bool
}

func (f *fakeRunner) Run(ctx context.Context, _ time.Time) (*sweep.Result, error) {
	f.calls.Add(1)
	if _, ok := ctx.Deadline(); ok {
		f.sawDeadline.Store(true)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &sweep.Result{}, nil
}

func TestSchedulerRunOnce(t *testing.T) {
	runner := &fakeRunner{
		result: &sweep.Result{Purged: []string{"usr_1", "usr_2"}},
	}
	s := worker.NewScheduler(worker.SchedulerConfig{
		Runner: runner,
		Config: worker.Config{Timeout: time.Second},
		Logger: zerolog.Nop(),
	})

	s.RunOnce(context.Background())

	assert.Equal(t, int64(1), runner.calls.Load())
	assert.True(t, runner.sawDeadline.Load(), "sweep should run under a deadline")
}

func TestSchedulerRunOnce_FailureIsNonFatal(t *testing.T) {
	runner := &fakeRunner{err: errors.New("database down")}
	s := worker.NewScheduler(worker.SchedulerConfig{
		Runner: runner,
		Logger: zerolog.Nop(),
	})

	s.RunOnce(context.Background())
	s.RunOnce(context.Background())

	assert.Equal(t, int64(2), runner.calls.Load())
}

func TestSchedulerStart_TicksUntilCancelled(t *testing.T) {
	runner := &fakeRunner{}
	s := worker.NewScheduler(worker.SchedulerConfig{
		Runner: runner,
		Config: worker.Config{Interval: 10 * time.Millisecond, Timeout: time.Second},
		Logger: zerolog.Nop(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	err := s.Start(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, runner.calls.Load(), int64(2))
}

func TestSchedulerStart_RunOnStart(t *testing.T) {
	runner := &fakeRunner{}
	s := worker.NewScheduler(worker.SchedulerConfig{
		Runner: runner,
		Config: worker.Config{Interval: time.Hour, Timeout: time.Second, RunOnStart: true},
		Logger: zerolog.Nop(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Start(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(1), runner.calls.Load())
}
