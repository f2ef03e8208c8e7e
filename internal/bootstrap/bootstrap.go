package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/narora21/chrono-patient-uploader/internal/config"
	"github.com/narora21/chrono-patient-uploader/internal/core/ports"
	"github.com/narora21/chrono-patient-uploader/internal/core/usecase"
	"github.com/narora21/chrono-patient-uploader/internal/infrastructure/auth"
	"github.com/narora21/chrono-patient-uploader/internal/infrastructure/chrono"
	"github.com/narora21/chrono-patient-uploader/internal/infrastructure/pattern"
	"github.com/narora21/chrono-patient-uploader/internal/infrastructure/report/xlsx"
	"github.com/narora21/chrono-patient-uploader/internal/infrastructure/resilience"
	"github.com/narora21/chrono-patient-uploader/internal/infrastructure/storage/localfs"
	"github.com/narora21/chrono-patient-uploader/internal/observability/metrics"
)

// Options carry the per-run choices made on the command line.
type Options struct {
	CredentialsPath string
	MetatagPath     string
	Pattern         string
	Workers         int
	DryRun          bool
	DestDir         string
	ReportPath      string
}

type App struct {
	Config config.Config
	Logger *slog.Logger
	Runner ports.BatchRunner

	closeFn func()
}

func New(cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	tags, err := config.LoadMetatags(opts.MetatagPath)
	if err != nil {
		return nil, err
	}

	tagCodes := make([]string, 0, len(tags))
	for code := range tags {
		tagCodes = append(tagCodes, code)
	}
	compiled, err := pattern.Compile(opts.Pattern, tagCodes)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	parser := pattern.NewParser(compiled, tags)

	tokens, err := auth.NewFileTokenSource(opts.CredentialsPath, cfg.ChronoBaseURL)
	if err != nil {
		return nil, err
	}

	executor := resilience.NewExecutor(resilience.Config{
		MaxRetries:     cfg.RetryMaxAttempts,
		BackoffBase:    time.Duration(cfg.RetryBackoffBaseMS) * time.Millisecond,
		BackoffMax:     time.Duration(cfg.RetryBackoffMaxMS) * time.Millisecond,
		BreakerEnabled: true,
	})
	client := chrono.New(cfg.ChronoBaseURL, tokens, chrono.Options{
		Timeout:  time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		Executor: executor,
	})

	batchMetrics := metrics.NewBatchMetrics("uploader")
	observers := ports.ObserverList{batchMetrics}
	if opts.ReportPath != "" {
		observers = append(observers, xlsx.NewWriter(opts.ReportPath, logger))
	}

	closeFn := func() {}
	if cfg.MetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", batchMetrics.Handler())
		server := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics_server_failed", "error", err)
			}
		}()
		closeFn = func() { _ = server.Close() }
	}

	runner := usecase.NewBatchUploadUseCase(
		parser,
		client,
		client,
		client,
		localfs.New(),
		observers,
		logger,
		usecase.Options{
			Workers:        opts.Workers,
			DryRun:         opts.DryRun,
			DestDir:        opts.DestDir,
			InterFileDelay: time.Duration(cfg.InterFileDelayMS) * time.Millisecond,
			StartJitterMax: time.Duration(cfg.WorkerStartJitterMS) * time.Millisecond,
		},
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Runner:  runner,
		closeFn: closeFn,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
