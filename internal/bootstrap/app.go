// Package bootstrap handles application initialization and lifecycle management
// for the link-review service.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/infrastructure/profiling"
	"github.com/jonesrussell/north-cloud/link-review/internal/review"
	"github.com/jonesrussell/north-cloud/link-review/internal/store"
	"github.com/jonesrussell/north-cloud/link-review/internal/telemetry"
)

// Start initializes and runs the link-review service until it is signalled to stop.
func Start(configPath string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Phase 1: Load config and create logger
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Phase 2: Profiling and telemetry
	profiling.StartPprofServer(log)
	profiler, err := profiling.StartPyroscope(cfg.Service.Name, cfg.Service.Version, log)
	if err != nil {
		log.Warn("Continuous profiling disabled", infralogger.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	tp := telemetry.NewProvider(reg)

	// Phase 3: Record source and its backing clients
	clients, err := SetupClients(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer clients.Close(log)

	src, err := SetupSource(ctx, cfg, clients, log)
	if err != nil {
		return fmt.Errorf("failed to set up record source: %w", err)
	}

	// Phase 4: Audit event fan-out (optional)
	ev := SetupEvents(ctx, cfg, tp, log)
	defer ev.Close(log)

	// Phase 5: Review service
	opts := []review.Option{
		review.WithTelemetry(tp),
		review.WithPublisher(ev.Fanout),
	}
	if asst := SetupAssistant(cfg, log); asst != nil {
		opts = append(opts, review.WithAssistant(asst))
	}
	svc := review.NewService(src, store.NewMemoryOverrides(), store.NewMemoryHistory(nil), log, opts...)

	if prober := SetupProbe(cfg, svc, log); prober != nil {
		prober.Start(ctx)
		defer prober.Stop()
	}

	// Phase 6: HTTP server
	server := SetupHTTPServer(cfg, svc, ev, tp, log)
	runErr := server.Run(ctx)
	cancel()
	if runErr != nil {
		log.Error("Server error", infralogger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Server exited")
	return nil
}
