// Package infrastructure provides core service initialization for application startup.
// It assembles the dependencies every entrypoint needs: logging, prompts,
// the connector runtime, metrics, tracing and the step catalog.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/JaimeStill/greenhouse/internal/catalog"
	"github.com/JaimeStill/greenhouse/internal/config"
	"github.com/JaimeStill/greenhouse/internal/prompts"
	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/internal/steps"
	"github.com/JaimeStill/greenhouse/pkg/lifecycle"
	"github.com/JaimeStill/greenhouse/pkg/telemetry"
)

// Infrastructure holds the core systems shared by the server, the CLI and
// the hosted entrypoint.
type Infrastructure struct {
	Config    *config.Config
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Prompts   prompts.System
	Runtime   *runtime.Runtime
	Metrics   *telemetry.Metrics
	Steps     *steps.Registry
}

// New creates an Infrastructure from the application configuration. Logs
// are written to w. Nothing is started; call Start separately.
func New(cfg *config.Config, w io.Writer) (*Infrastructure, error) {
	logger := NewLogger(&cfg.Logging, w)

	p := prompts.New(cfg.Prompts.Dir, logger)
	metrics := telemetry.NewMetrics()

	reg, err := catalog.New(metrics)
	if err != nil {
		return nil, fmt.Errorf("step catalog init failed: %w", err)
	}

	return &Infrastructure{
		Config:    cfg,
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Prompts:   p,
		Runtime:   runtime.New(cfg, p, logger),
		Metrics:   metrics,
		Steps:     reg,
	}, nil
}

// NewLogger builds the process logger for the configured format.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	level := cfg.SlogLevel()

	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	case "tint":
		noColor := true
		if f, ok := w.(*os.File); ok {
			noColor = !isTerminal(f)
		}
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    noColor,
		}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	}
}

// Start installs the tracer provider, registers a readiness probe per
// database connector, and releases connectors on shutdown.
func (i *Infrastructure) Start() error {
	shutdownTracing, err := telemetry.SetupProvider(i.Lifecycle.Context(), i.Config.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry start failed: %w", err)
	}

	for name := range i.Config.Connectors.Database {
		i.Lifecycle.AddProbe("database:"+name, func(ctx context.Context) error {
			return i.Runtime.Ping(ctx, name)
		})
	}

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := shutdownTracing(ctx); err != nil {
			i.Logger.Error("telemetry shutdown error", "error", err)
		}
		if err := i.Runtime.Close(); err != nil {
			i.Logger.Error("connector close error", "error", err)
		}
	})

	return nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
