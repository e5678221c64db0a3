package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/infrastructure/server"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/object"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/stress"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "objstress:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags override environment
	workers := flag.Int("workers", cfg.Stress.Workers, "Concurrent workers per scenario")
	iterations := flag.Int("iterations", cfg.Stress.Iterations, "Iterations per scenario")
	clients := flag.Int("clients", cfg.Stress.Clients, "Listeners and devices per scenario")
	rps := flag.Int("broadcast-rps", cfg.Stress.BroadcastRPS, "Broadcast rate limit, 0 for unlimited")
	addr := flag.String("metrics-addr", cfg.Metrics.Addr, "Serve diagnostics on this address and keep running after the soak")
	traceBroadcasts := flag.Bool("trace", cfg.Metrics.TraceBroadcasts, "Log a span per broadcast")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development logging")
	flag.Parse()

	cfg.Stress = config.StressConfig{Workers: *workers, Iterations: *iterations, Clients: *clients, BroadcastRPS: *rps}
	cfg.Metrics.Addr = *addr
	cfg.Metrics.TraceBroadcasts = *traceBroadcasts
	cfg.Logging.Development = *dev
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	object.SetLogger(logger.Logger)

	var observers []object.Observer

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var metrics *monitoring.Metrics
	if cfg.Metrics.Enabled {
		metrics = monitoring.NewMetrics(reg, cfg.Metrics.Namespace)
		observers = append(observers, metrics)
	}

	tracer := tracing.New("objstress", logger.Named("trace"))
	defer tracer.Close()
	if cfg.Metrics.TraceBroadcasts {
		observers = append(observers, tracing.NewBroadcastObserver(tracer))
	}

	object.SetObserver(object.MultiObserver(observers...))
	defer object.SetObserver(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Addr != "" {
		srv, err := server.NewServer(server.Options{
			Addr:     cfg.Metrics.Addr,
			Logger:   logger,
			Metrics:  metrics,
			Gatherer: reg,
			Tracer:   tracer,
		})
		if err != nil {
			return err
		}
		g.Go(func() error { return srv.Run(ctx) })
	}

	g.Go(func() error {
		runner := stress.NewRunner(stress.Config{
			Workers:      cfg.Stress.Workers,
			Iterations:   cfg.Stress.Iterations,
			Clients:      cfg.Stress.Clients,
			BroadcastRPS: cfg.Stress.BroadcastRPS,
		}, logger.Logger, metrics)

		reports, err := runner.Run(ctx, stress.DefaultScenarios()...)
		if err != nil {
			return err
		}

		out := json.NewEncoder(os.Stdout)
		out.SetIndent("", "  ")
		if err := out.Encode(map[string]any{
			"reports": reports,
			"runtime": object.ReadStats(),
		}); err != nil {
			return err
		}

		if cfg.Metrics.Addr != "" {
			logger.Info("soak complete, serving diagnostics until interrupted",
				zap.String("addr", cfg.Metrics.Addr))
			return nil
		}
		stop()
		return nil
	})

	return g.Wait()
}
