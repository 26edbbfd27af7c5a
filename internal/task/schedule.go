package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Spec describes when a task runs. Exactly one of Every or Cron must be set:
// Every runs on a fixed interval with an immediate first run, Cron follows a
// standard five-field cron expression.
type Spec struct {
	Every time.Duration
	Cron  string
}

var errSpecEmpty = errors.New("task: schedule needs either an interval or a cron expression")

// Validate checks the spec and parses the cron expression when present.
func (s Spec) Validate() error {
	switch {
	case s.Every > 0 && s.Cron != "":
		return errors.New("task: interval and cron expression are mutually exclusive")
	case s.Every > 0:
		return nil
	case s.Cron != "":
		if _, err := cron.ParseStandard(s.Cron); err != nil {
			return fmt.Errorf("task: parse cron %q: %w", s.Cron, err)
		}
		return nil
	default:
		return errSpecEmpty
	}
}

// schedule yields the cron.Schedule for cron specs, nil for interval specs.
func (s Spec) schedule() (cron.Schedule, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Cron == "" {
		return nil, nil
	}
	return cron.ParseStandard(s.Cron)
}

// String renders the spec for logs.
func (s Spec) String() string {
	if s.Cron != "" {
		return "cron " + s.Cron
	}
	return "every " + s.Every.String()
}
