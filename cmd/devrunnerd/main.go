// Devrunnerd accepts free-text development instructions over HTTP,
// hands each one to an external autonomous coding agent, supervises the
// agent process to completion or timeout, and keeps a queryable record
// of every outcome.
//
// Configuration is loaded from an optional YAML file and DEVRUNNER_*
// environment variables. See internal/config for details.
//
// Usage:
//
//	# Start with defaults
//	devrunnerd
//
//	# Point at a config file
//	devrunnerd -config /etc/devrunnerd/config.yaml
//
//	# Configure via environment
//	DEVRUNNER_SERVER_PORT=9090 DEVRUNNER_AGENT_PATH=claude devrunnerd
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/devrunnerd/internal/audit"
	"github.com/fyrsmithlabs/devrunnerd/internal/config"
	"github.com/fyrsmithlabs/devrunnerd/internal/logging"
	"github.com/fyrsmithlabs/devrunnerd/internal/policy"
	"github.com/fyrsmithlabs/devrunnerd/internal/runner"
	"github.com/fyrsmithlabs/devrunnerd/internal/server"
	"github.com/fyrsmithlabs/devrunnerd/internal/service"
	"github.com/fyrsmithlabs/devrunnerd/internal/task"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  devrunnerd           Start the daemon\n")
			fmt.Fprintf(os.Stderr, "  devrunnerd version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server shutdown complete")
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := service.New(
		task.NewRegistry(cfg.Tasks.RetentionCap),
		policy.NewGate(),
		runner.New(runner.Config{
			AgentPath: cfg.Agent.Path,
			WorkDir:   cfg.Agent.WorkDir,
			Timeout:   cfg.Tasks.Deadline,
		}, logger),
		audit.NewWriter(cfg.Tasks.LogDir, logger),
		logger,
		service.NewMetrics(promReg),
	)

	srv := server.NewServer(cfg.Server, svc, logger, promReg)

	logger.Info(ctx, "devrunnerd starting",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("agent", cfg.Agent.Path),
		zap.String("work_dir", cfg.Agent.WorkDir),
		zap.Duration("task_deadline", cfg.Tasks.Deadline))

	if err := srv.Start(ctx); err != nil {
		return err
	}

	// Let in-flight tasks settle; their agent processes are bounded by
	// the task deadline regardless.
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Tasks.Deadline+30*time.Second)
	defer cancel()
	if err := svc.Drain(drainCtx); err != nil {
		logger.Warn(drainCtx, "shutdown with tasks still in flight", zap.Error(err))
	}
	return nil
}

func printVersion() {
	fmt.Printf("devrunnerd %s\n", version)
	fmt.Printf("  commit: %s\n", gitCommit)
	fmt.Printf("  built:  %s\n", buildDate)
}
