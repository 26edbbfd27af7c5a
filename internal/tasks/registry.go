package tasks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/socialsmoker223/quants-lab/internal/task"
)

// Builder constructs a downloader from its configuration.
type Builder func(c Conf, deps Deps) (task.Task, error)

var (
	builderRegistry   = make(map[string]Builder)
	builderRegistryMu sync.RWMutex
)

// RegisterBuilder registers a downloader constructor under a metric kind.
func RegisterBuilder(kind string, b Builder) {
	builderRegistryMu.Lock()
	defer builderRegistryMu.Unlock()
	builderRegistry[strings.ToLower(strings.TrimSpace(kind))] = b
}

func lookupBuilder(kind string) (Builder, bool) {
	builderRegistryMu.RLock()
	defer builderRegistryMu.RUnlock()
	b, ok := builderRegistry[strings.ToLower(strings.TrimSpace(kind))]
	return b, ok
}

// Kinds returns the registered metric kinds, for config error messages.
func Kinds() []string {
	builderRegistryMu.RLock()
	defer builderRegistryMu.RUnlock()
	kinds := make([]string, 0, len(builderRegistry))
	for kind := range builderRegistry {
		kinds = append(kinds, kind)
	}
	return kinds
}

// Build instantiates one downloader according to its configured kind.
func Build(c Conf, deps Deps) (task.Task, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("tasks: task name is required")
	}
	builder, ok := lookupBuilder(c.Kind)
	if !ok {
		return nil, fmt.Errorf("tasks: %s: unsupported kind %q", c.Name, c.Kind)
	}
	t, err := builder(c, deps)
	if err != nil {
		return nil, fmt.Errorf("tasks: %s: %w", c.Name, err)
	}
	return t, nil
}
