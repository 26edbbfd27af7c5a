package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{name: "interval", spec: Spec{Every: time.Minute}},
		{name: "cron", spec: Spec{Cron: "0 * * * *"}},
		{name: "cron with macro", spec: Spec{Cron: "@hourly"}},
		{name: "empty", spec: Spec{}, wantErr: true},
		{name: "both set", spec: Spec{Every: time.Minute, Cron: "@hourly"}, wantErr: true},
		{name: "bad cron", spec: Spec{Cron: "not a cron"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrchestratorAdd(t *testing.T) {
	o := New()
	noop := func(context.Context) error { return nil }

	require.NoError(t, o.Add(Spec{Every: time.Minute}, NewFunc("sync_funding", noop)))
	require.Equal(t, 1, o.Len())

	t.Run("duplicate name", func(t *testing.T) {
		err := o.Add(Spec{Every: time.Minute}, NewFunc("sync_funding", noop))
		assert.ErrorContains(t, err, "duplicate")
	})

	t.Run("nil task", func(t *testing.T) {
		assert.Error(t, o.Add(Spec{Every: time.Minute}, nil))
	})

	t.Run("empty name", func(t *testing.T) {
		assert.Error(t, o.Add(Spec{Every: time.Minute}, NewFunc("", noop)))
	})

	t.Run("invalid spec", func(t *testing.T) {
		assert.Error(t, o.Add(Spec{}, NewFunc("sync_other", noop)))
	})
}

func TestOrchestratorRunsImmediatelyAndTicks(t *testing.T) {
	var runs atomic.Int64
	o := New()
	require.NoError(t, o.Add(Spec{Every: 30 * time.Millisecond}, NewFunc("counter", func(context.Context) error {
		runs.Add(1)
		return nil
	})))

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()
	o.Run(ctx)

	// Immediate run plus roughly three ticks.
	got := runs.Load()
	assert.GreaterOrEqual(t, got, int64(3))
	assert.LessOrEqual(t, got, int64(5))
}

func TestOrchestratorDelaysInsteadOfStacking(t *testing.T) {
	var active atomic.Int64
	var overlapped atomic.Bool
	var runs atomic.Int64

	o := New()
	require.NoError(t, o.Add(Spec{Every: 10 * time.Millisecond}, NewFunc("slow", func(ctx context.Context) error {
		if active.Add(1) > 1 {
			overlapped.Store(true)
		}
		defer active.Add(-1)
		runs.Add(1)
		select {
		case <-time.After(35 * time.Millisecond):
		case <-ctx.Done():
		}
		return nil
	})))

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	o.Run(ctx)

	assert.False(t, overlapped.Load(), "runs of the same task must not overlap")
	assert.GreaterOrEqual(t, runs.Load(), int64(2))
}

func TestOrchestratorRecoversPanic(t *testing.T) {
	var panics atomic.Int64
	var healthy atomic.Int64

	o := New()
	require.NoError(t, o.Add(Spec{Every: 20 * time.Millisecond}, NewFunc("panicky", func(context.Context) error {
		panics.Add(1)
		panic("boom")
	})))
	require.NoError(t, o.Add(Spec{Every: 20 * time.Millisecond}, NewFunc("healthy", func(context.Context) error {
		healthy.Add(1)
		return nil
	})))

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Millisecond)
	defer cancel()
	o.Run(ctx)

	assert.GreaterOrEqual(t, panics.Load(), int64(2), "panicking task keeps rescheduling")
	assert.GreaterOrEqual(t, healthy.Load(), int64(2), "other tasks are unaffected")
}

func TestOrchestratorRunTimeout(t *testing.T) {
	var sawDeadline atomic.Bool

	o := New(WithRunTimeout(20 * time.Millisecond))
	require.NoError(t, o.Add(Spec{Every: time.Hour}, NewFunc("stuck", func(ctx context.Context) error {
		<-ctx.Done()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			sawDeadline.Store(true)
		}
		return ctx.Err()
	})))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	o.Run(ctx)

	assert.True(t, sawDeadline.Load(), "run context should expire before the parent")
}

func TestOrchestratorErrorKeepsScheduling(t *testing.T) {
	var runs atomic.Int64

	o := New()
	require.NoError(t, o.Add(Spec{Every: 20 * time.Millisecond}, NewFunc("failing", func(context.Context) error {
		runs.Add(1)
		return errors.New("fetch failed")
	})))

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Millisecond)
	defer cancel()
	o.Run(ctx)

	assert.GreaterOrEqual(t, runs.Load(), int64(3))
}

func TestOrchestratorCronSchedule(t *testing.T) {
	// A cron task must not run immediately; the shortest standard cron step
	// is one minute, so nothing fires inside a short window.
	if time.Until(time.Now().Truncate(time.Minute).Add(time.Minute)) < 200*time.Millisecond {
		t.Skip("too close to a minute boundary")
	}

	var runs atomic.Int64
	o := New()
	require.NoError(t, o.Add(Spec{Cron: "* * * * *"}, NewFunc("cron_task", func(context.Context) error {
		runs.Add(1)
		return nil
	})))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	o.Run(ctx)

	assert.Zero(t, runs.Load())
}
