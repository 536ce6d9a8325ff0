package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	ledgerapp "github.com/mpvestiario/backend/internal/application/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestScheduler_Register(t *testing.T) {
	s := New(zap.NewNop())
	noop := JobFunc(func(context.Context) error { return nil })

	require.NoError(t, s.Register("a", "@hourly", 0, noop))
	assert.Error(t, s.Register("a", "@hourly", 0, noop), "duplicate name")
	assert.Error(t, s.Register("b", "not a cron", 0, noop))

	states := s.States()
	require.Len(t, states, 1)
	assert.Equal(t, JobStatusPending, states[0].Status)
	assert.Equal(t, "@hourly", states[0].Schedule)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zap.NewNop())
	var calls atomic.Int32
	fail := errors.New("database unavailable")

	require.NoError(t, s.Register("ok", "@daily", time.Second, JobFunc(func(ctx context.Context) error {
		calls.Add(1)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})))
	require.NoError(t, s.Register("broken", "@daily", 0, JobFunc(func(context.Context) error { return fail })))

	assert.ErrorIs(t, s.RunNow("ok"), ErrNotRunning)

	s.Start()
	defer func() { _ = s.Stop(context.Background()) }()

	require.NoError(t, s.RunNow("ok"))
	assert.ErrorIs(t, s.RunNow("broken"), fail)
	assert.ErrorIs(t, s.RunNow("missing"), ErrUnknownJob)
	assert.Equal(t, int32(1), calls.Load())

	byName := map[string]JobState{}
	for _, st := range s.States() {
		byName[st.Name] = st
	}
	assert.Equal(t, JobStatusSuccess, byName["ok"].Status)
	assert.Equal(t, 1, byName["ok"].Runs)
	assert.NotNil(t, byName["ok"].NextRunAt)
	assert.Equal(t, JobStatusFailed, byName["broken"].Status)
	assert.Equal(t, "database unavailable", byName["broken"].LastError)
}

func TestScheduler_FiresOnSchedule(t *testing.T) {
	s := New(zap.NewNop())
	fired := make(chan struct{}, 1)
	require.NoError(t, s.Register("tick", "@every 1s", 0, JobFunc(func(context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	})))

	s.Start()
	s.Start()
	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not fire")
	}
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	s := New(zap.NewNop())
	started := make(chan struct{})
	require.NoError(t, s.Register("slow", "@daily", 0, JobFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})))
	s.Start()

	go func() { _ = s.RunNow("slow") }()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

type stubChecker struct {
	report *ledgerapp.ReconciliationReport
	err    error
}

func (c *stubChecker) Run(ctx context.Context) (*ledgerapp.ReconciliationReport, error) {
	return c.report, c.err
}

func TestReconcileJob(t *testing.T) {
	t.Run("consistent", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		job := NewReconcileJob(&stubChecker{report: &ledgerapp.ReconciliationReport{Articles: 3, Consistent: true}}, zap.New(core))

		require.NoError(t, job.Run(context.Background()))
		entries := recorded.FilterMessage("Stock ledger consistent").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "reconcile", entries[0].ContextMap()["operation"])
	})

	t.Run("drift", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		report := &ledgerapp.ReconciliationReport{
			Articles: 2,
			Drifts:   []ledgerapp.ArticleDrift{{ArticleID: uuid.New(), Quantity: 4, JournalBalance: 5}},
		}
		job := NewReconcileJob(&stubChecker{report: report}, zap.New(core))

		require.NoError(t, job.Run(context.Background()))
		assert.Equal(t, 1, recorded.FilterMessage("Stock ledger drift").Len())
	})

	t.Run("checker error", func(t *testing.T) {
		boom := errors.New("boom")
		job := NewReconcileJob(&stubChecker{err: boom}, nil)
		assert.ErrorIs(t, job.Run(context.Background()), boom)
	})
}
