package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/socialsmoker223/quants-lab/internal/config"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
		fmt.Sprintf("Redis: %s", presence(strings.TrimSpace(cfg.Redis.Host) != "")),
		fmt.Sprintf("TTL (short/medium/long): %ds / %ds / %ds", cfg.TTL.Short, cfg.TTL.Medium, cfg.TTL.Long),
		fmt.Sprintf("Task timeout: %ds", cfg.TaskTimeoutSec),
	}

	if src := cfg.Sources.Value; src != nil {
		lines = append(lines,
			fmt.Sprintf("CoinGlass: %s", presence(src.CoinGlass.Enabled())),
			fmt.Sprintf("Glassnode: %s", presence(src.Glassnode.Enabled())),
		)
	} else {
		lines = append(lines, "Sources: not configured")
	}

	if path := cfg.TasksPath(); path != "" {
		lines = append(lines, fmt.Sprintf("Tasks file: %s", path))
	} else {
		lines = append(lines, "Tasks file: not configured")
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
