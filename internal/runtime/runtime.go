// Package runtime is the handle a step receives on each invocation. It
// resolves named connectors from configuration, renders prompts, reads
// secrets, and serializes step output.
package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/JaimeStill/greenhouse/internal/config"
	"github.com/JaimeStill/greenhouse/internal/prompts"
	"github.com/JaimeStill/greenhouse/pkg/database"
	"github.com/JaimeStill/greenhouse/pkg/helpdesk"
	"github.com/JaimeStill/greenhouse/pkg/llm"
	"github.com/JaimeStill/greenhouse/pkg/storage"
	"github.com/JaimeStill/greenhouse/pkg/webhook"
)

// Runtime resolves connectors lazily and caches them for the life of the
// process. Copies made with WithLogger share the same connector cache.
type Runtime struct {
	*shared
	logger *slog.Logger
}

type shared struct {
	cfg     *config.Config
	prompts prompts.System
	// base is the process logger handed to cached connectors.
	base *slog.Logger

	mu         sync.Mutex
	connectors map[string]any
	closers    []func() error
}

// New creates a Runtime over cfg and the prompt system.
func New(cfg *config.Config, p prompts.System, logger *slog.Logger) *Runtime {
	return &Runtime{
		shared: &shared{
			cfg:        cfg,
			prompts:    p,
			base:       logger,
			connectors: make(map[string]any),
		},
		logger: logger,
	}
}

// WithLogger returns a Runtime that logs through logger and shares
// connectors with r.
func (r *Runtime) WithLogger(logger *slog.Logger) *Runtime {
	return &Runtime{shared: r.shared, logger: logger}
}

// Logger returns the invocation logger.
func (r *Runtime) Logger() *slog.Logger {
	return r.logger
}

// Register installs a connector under name, replacing any cached instance.
// Supported kinds are llm.Client, database.System, storage.System,
// webhook.Client and helpdesk.Client.
func (r *Runtime) Register(name string, connector any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[name] = connector
}

// LLM returns the named LLM connector.
func (r *Runtime) LLM(name string) (llm.Client, error) {
	return resolve(r, name, "llm", func() (llm.Client, bool, error) {
		cfg, ok := r.cfg.Connectors.LLM[name]
		if !ok {
			return nil, false, nil
		}
		c, err := llm.New(cfg, nil, r.base)
		return c, true, err
	})
}

// Database returns the named database connector. The connection pool is
// opened on first use and closed by Close.
func (r *Runtime) Database(name string) (database.System, error) {
	return resolve(r, name, "database", func() (database.System, bool, error) {
		cfg, ok := r.cfg.Connectors.Database[name]
		if !ok {
			return nil, false, nil
		}
		db, err := database.New(cfg, r.base)
		if err != nil {
			return nil, true, err
		}
		r.closers = append(r.closers, db.Close)
		return db, true, nil
	})
}

// Store returns the named object-store connector.
func (r *Runtime) Store(name string) (storage.System, error) {
	return resolve(r, name, "storage", func() (storage.System, bool, error) {
		cfg, ok := r.cfg.Connectors.Storage[name]
		if !ok {
			return nil, false, nil
		}
		s, err := storage.New(cfg, r.base)
		return s, true, err
	})
}

// Webhook returns the named webhook connector.
func (r *Runtime) Webhook(name string) (webhook.Client, error) {
	return resolve(r, name, "webhook", func() (webhook.Client, bool, error) {
		cfg, ok := r.cfg.Connectors.Webhook[name]
		if !ok {
			return nil, false, nil
		}
		c, err := webhook.New(cfg, nil, r.base)
		return c, true, err
	})
}

// WebhookOrSecret returns the named webhook connector. When the connector
// is undeclared or declared without a url, the url is read from the named
// secret and the declared timeout, if any, is kept.
func (r *Runtime) WebhookOrSecret(name, secret string) (webhook.Client, error) {
	return resolve(r, name, "webhook", func() (webhook.Client, bool, error) {
		declared, ok := r.cfg.Connectors.Webhook[name]
		cfg := &webhook.Config{}
		if ok {
			*cfg = *declared
		}

		if cfg.URL == "" {
			url, err := r.Secret(secret)
			if err != nil {
				return nil, ok, fmt.Errorf("%w: %w", webhook.ErrMissingURL, err)
			}
			cfg.URL = url
		}
		if err := cfg.Finalize(nil); err != nil {
			return nil, true, err
		}

		c, err := webhook.New(cfg, nil, r.base)
		return c, true, err
	})
}

// Helpdesk returns the named helpdesk connector.
func (r *Runtime) Helpdesk(name string) (helpdesk.Client, error) {
	return resolve(r, name, "helpdesk", func() (helpdesk.Client, bool, error) {
		cfg, ok := r.cfg.Connectors.Helpdesk[name]
		if !ok {
			return nil, false, nil
		}
		c, err := helpdesk.New(cfg, nil, r.base)
		return c, true, err
	})
}

// Prompt returns the raw text of the named prompt.
func (r *Runtime) Prompt(name string) (string, error) {
	return r.prompts.Get(name)
}

// RenderPrompt renders the named prompt against data.
func (r *Runtime) RenderPrompt(name string, data any) (string, error) {
	return r.prompts.Render(name, data)
}

// Secret returns the named secret.
func (r *Runtime) Secret(name string) (string, error) {
	if v, ok := r.cfg.Secret(name); ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
}

// Out serializes a step result.
func (r *Runtime) Out(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	return data, nil
}

// Ping checks the named database connector.
func (r *Runtime) Ping(ctx context.Context, name string) error {
	db, err := r.Database(name)
	if err != nil {
		return err
	}
	return db.Ping(ctx)
}

// Close releases every connector that holds resources.
func (r *Runtime) Close() error {
	r.mu.Lock()
	closers := r.closers
	r.closers = nil
	r.mu.Unlock()

	var errs []error
	for _, c := range closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// resolve returns the cached connector under name, or builds it from
// configuration. build reports false when name is not declared for its kind.
func resolve[T any](r *Runtime, name, kind string, build func() (T, bool, error)) (T, error) {
	var zero T

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.connectors[name]; ok {
		c, ok := existing.(T)
		if !ok {
			return zero, fmt.Errorf("%w: %s is %T, not %s", ErrConnectorKind, name, existing, kind)
		}
		return c, nil
	}

	c, declared, err := build()
	if !declared {
		if r.declared(name) {
			return zero, fmt.Errorf("%w: %s is not a %s connector", ErrConnectorKind, name, kind)
		}
		return zero, fmt.Errorf("%w: %s", ErrConnectorNotFound, name)
	}
	if err != nil {
		return zero, fmt.Errorf("connector %s: %w", name, err)
	}

	r.connectors[name] = c
	return c, nil
}

func (s *shared) declared(name string) bool {
	return slices.Contains(s.cfg.Connectors.Names(), name)
}
