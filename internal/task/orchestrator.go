package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/logx"
)

const defaultRunTimeout = 10 * time.Minute

// Orchestrator drives a fleet of tasks, one serialized goroutine per task.
// A run that outlasts its slot delays the next one instead of stacking a
// concurrent run of the same task.
type Orchestrator struct {
	runTimeout time.Duration
	entries    []*entry
	names      map[string]struct{}
}

type entry struct {
	name  string
	spec  Spec
	task  Task
	sched cron.Schedule
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRunTimeout bounds a single task run. Zero keeps the default.
func WithRunTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.runTimeout = d
		}
	}
}

// New builds an empty orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runTimeout: defaultRunTimeout,
		names:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Add registers a task under the given schedule. Task names must be unique.
func (o *Orchestrator) Add(spec Spec, t Task) error {
	if t == nil {
		return fmt.Errorf("task: nil task")
	}
	name := t.Name()
	if name == "" {
		return fmt.Errorf("task: task name is required")
	}
	if _, dup := o.names[name]; dup {
		return fmt.Errorf("task: duplicate task name %q", name)
	}
	sched, err := spec.schedule()
	if err != nil {
		return fmt.Errorf("task: %s: %w", name, err)
	}
	o.names[name] = struct{}{}
	o.entries = append(o.entries, &entry{name: name, spec: spec, task: t, sched: sched})
	return nil
}

// Len reports the number of registered tasks.
func (o *Orchestrator) Len() int { return len(o.entries) }

// Run starts every registered task and blocks until ctx is cancelled and all
// task goroutines have drained.
func (o *Orchestrator) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, e := range o.entries {
		wg.Add(1)
		go func(e *entry) {
			defer wg.Done()
			o.runLoop(ctx, e)
		}(e)
	}
	wg.Wait()
}

func (o *Orchestrator) runLoop(ctx context.Context, e *entry) {
	logx.WithContext(ctx).Infof("task %s: scheduled (%s)", e.name, e.spec)
	if e.sched != nil {
		o.runCronLoop(ctx, e)
		return
	}

	ticker := time.NewTicker(e.spec.Every)
	defer ticker.Stop()

	// Run once immediately on startup
	o.runOnce(ctx, e)

	for {
		select {
		case <-ctx.Done():
			logx.WithContext(ctx).Infof("task %s: stopping", e.name)
			return
		case <-ticker.C:
			o.runOnce(ctx, e)
		}
	}
}

func (o *Orchestrator) runCronLoop(ctx context.Context, e *entry) {
	for {
		next := e.sched.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			logx.WithContext(ctx).Infof("task %s: stopping", e.name)
			return
		case <-timer.C:
			o.runOnce(ctx, e)
		}
	}
}

// runOnce executes a single bounded run. Panics are contained so one broken
// task cannot take down the fleet.
func (o *Orchestrator) runOnce(parentCtx context.Context, e *entry) {
	if parentCtx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parentCtx, o.runTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logx.WithContext(parentCtx).Errorf("task %s: panic recovered: %v", e.name, r)
		}
	}()

	start := time.Now()
	err := e.task.Run(ctx)
	elapsed := time.Since(start)
	if err != nil {
		logx.WithContext(parentCtx).Errorf("task %s: run failed after %dms: %v", e.name, elapsed.Milliseconds(), err)
		return
	}
	logx.WithContext(parentCtx).Infof("task %s: run ok, took %dms", e.name, elapsed.Milliseconds())
}
