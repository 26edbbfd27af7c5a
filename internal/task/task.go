package task

import "context"

// Task is a unit of periodic collection work. Run should honor ctx
// cancellation and return the first error worth surfacing; partial progress
// is fine because inserts are idempotent.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

type funcTask struct {
	name string
	fn   func(context.Context) error
}

// NewFunc adapts a plain function into a Task.
func NewFunc(name string, fn func(context.Context) error) Task {
	return &funcTask{name: name, fn: fn}
}

func (t *funcTask) Name() string { return t.name }

func (t *funcTask) Run(ctx context.Context) error { return t.fn(ctx) }
