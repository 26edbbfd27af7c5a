package tasks

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/socialsmoker223/quants-lab/internal/task"
	"github.com/socialsmoker223/quants-lab/pkg/confkit"
)

// Conf describes one downloader instance in tasks.yaml.
type Conf struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`

	// Schedule: a Go duration or a cron expression, exactly one.
	Every string `yaml:"every"`
	Cron  string `yaml:"cron"`

	Exchange string   `yaml:"exchange"`
	Pairs    []string `yaml:"pairs"`
	Interval string   `yaml:"interval"`
	Limit    int      `yaml:"limit"`

	// Asset selects the ETF family ("bitcoin" or "ethereum") and Symbol the
	// option-info feed.
	Asset  string `yaml:"asset"`
	Symbol string `yaml:"symbol"`

	// Glassnode: Metric is the path after /v1/metrics/, Family the table
	// segment derived from it ("market_price_usd_close" and so on).
	Metric string `yaml:"metric"`
	Family string `yaml:"family"`

	// Table overrides the derived table name for single-table feeds.
	Table string `yaml:"table"`

	// BackfillStart seeds startTime when a table has no watermark yet.
	BackfillStart int64 `yaml:"backfill_start"`
	RetentionDays int   `yaml:"retention_days"`
}

func (c *Conf) expandEnv() {
	c.Name = strings.TrimSpace(os.ExpandEnv(c.Name))
	c.Kind = strings.TrimSpace(os.ExpandEnv(c.Kind))
	c.Every = strings.TrimSpace(os.ExpandEnv(c.Every))
	c.Cron = strings.TrimSpace(os.ExpandEnv(c.Cron))
	c.Exchange = strings.TrimSpace(os.ExpandEnv(c.Exchange))
	c.Interval = strings.TrimSpace(os.ExpandEnv(c.Interval))
	c.Asset = strings.TrimSpace(os.ExpandEnv(c.Asset))
	c.Symbol = strings.TrimSpace(os.ExpandEnv(c.Symbol))
	c.Metric = strings.TrimSpace(os.ExpandEnv(c.Metric))
	c.Family = strings.TrimSpace(os.ExpandEnv(c.Family))
	c.Table = strings.TrimSpace(os.ExpandEnv(c.Table))
	for i, pair := range c.Pairs {
		c.Pairs[i] = strings.TrimSpace(os.ExpandEnv(pair))
	}
}

// Schedule converts the textual schedule into a task.Spec.
func (c Conf) Schedule() (task.Spec, error) {
	spec := task.Spec{Cron: c.Cron}
	if c.Every != "" {
		every, err := time.ParseDuration(c.Every)
		if err != nil {
			return task.Spec{}, fmt.Errorf("tasks: %s: parse every %q: %w", c.Name, c.Every, err)
		}
		spec.Every = every
	}
	if err := spec.Validate(); err != nil {
		return task.Spec{}, fmt.Errorf("tasks: %s: %w", c.Name, err)
	}
	return spec, nil
}

// FleetConfig is the root of tasks.yaml.
type FleetConfig struct {
	Tasks []Conf `yaml:"tasks"`
}

func (fc *FleetConfig) normalise() {
	for i := range fc.Tasks {
		c := &fc.Tasks[i]
		c.expandEnv()
		if c.Interval == "" {
			c.Interval = "1h"
		}
	}
}

// LoadFleet reads a fleet definition from disk.
func LoadFleet(path string) (*FleetConfig, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tasks config: %w", err)
	}
	defer file.Close()
	return LoadFleetFromReader(file)
}

// LoadFleetFromReader constructs a FleetConfig from an io.Reader.
func LoadFleetFromReader(r io.Reader) (*FleetConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read tasks config: %w", err)
	}

	var fc FleetConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("unmarshal tasks config: %w", err)
	}
	fc.normalise()
	return &fc, nil
}

// Entry pairs a built task with its schedule.
type Entry struct {
	Spec task.Spec
	Task task.Task
}

// BuildTasks materializes every configured downloader.
func BuildTasks(fc FleetConfig, deps Deps) ([]Entry, error) {
	entries := make([]Entry, 0, len(fc.Tasks))
	for _, c := range fc.Tasks {
		spec, err := c.Schedule()
		if err != nil {
			return nil, err
		}
		t, err := Build(c, deps)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Spec: spec, Task: t})
	}
	return entries, nil
}
