package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/socialsmoker223/quants-lab/internal/cli"
	"github.com/socialsmoker223/quants-lab/internal/config"
	"github.com/socialsmoker223/quants-lab/internal/svc"
	"github.com/socialsmoker223/quants-lab/internal/task"
)

const shutdownTimeout = 10 * time.Second

var configFile = flag.String("f", "etc/collector.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)
	cfg.MustSetUp()
	defer logx.Close()

	cli.LogConfigSummary(cfg)

	ctx := svc.NewServiceContext(*cfg)
	if len(ctx.Tasks) == 0 {
		logx.Error("no tasks configured, nothing to do")
		os.Exit(1)
	}

	orch := task.New(task.WithRunTimeout(time.Duration(cfg.TaskTimeoutSec) * time.Second))
	for _, entry := range ctx.Tasks {
		if err := orch.Add(entry.Spec, entry.Task); err != nil {
			logx.Must(fmt.Errorf("register task %s: %w", entry.Task.Name(), err))
		}
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logx.Infof("collector started with %d tasks", orch.Len())

	done := make(chan struct{})
	go func() {
		orch.Run(runCtx)
		close(done)
	}()

	<-runCtx.Done()
	logx.Info("shutdown signal received, stopping tasks")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	select {
	case <-done:
		logx.Info("all tasks stopped cleanly")
	case <-shutdownCtx.Done():
		logx.Error("shutdown timeout exceeded, forcing exit")
	}
}
