package config

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/JaimeStill/greenhouse/pkg/database"
	"github.com/JaimeStill/greenhouse/pkg/helpdesk"
	"github.com/JaimeStill/greenhouse/pkg/llm"
	"github.com/JaimeStill/greenhouse/pkg/storage"
	"github.com/JaimeStill/greenhouse/pkg/webhook"
)

const (
	// EnvLLMAPIKey is the shared fallback API key for every LLM connector.
	EnvLLMAPIKey = "GREENHOUSE_LLM_API_KEY"
	// EnvOpenAIAPIKey is consulted when EnvLLMAPIKey is unset.
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Connectors declares named connector instances by kind. Each entry can be
// overridden with GREENHOUSE_<KIND>_<NAME>_<FIELD> environment variables.
type Connectors struct {
	LLM      map[string]*llm.Config      `toml:"llm"`
	Database map[string]*database.Config `toml:"database"`
	Storage  map[string]*storage.Config  `toml:"storage"`
	Webhook  map[string]*webhook.Config  `toml:"webhook"`
	Helpdesk map[string]*helpdesk.Config `toml:"helpdesk"`
}

// Names returns every declared connector name, sorted.
func (c *Connectors) Names() []string {
	var names []string
	names = slices.AppendSeq(names, maps.Keys(c.LLM))
	names = slices.AppendSeq(names, maps.Keys(c.Database))
	names = slices.AppendSeq(names, maps.Keys(c.Storage))
	names = slices.AppendSeq(names, maps.Keys(c.Webhook))
	names = slices.AppendSeq(names, maps.Keys(c.Helpdesk))
	slices.Sort(names)
	return slices.Compact(names)
}

// Finalize finalizes every declared connector. Connector names must be
// unique across kinds.
func (c *Connectors) Finalize() error {
	seen := make(map[string]string)
	claim := func(kind, name string) error {
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("connector %q declared as both %s and %s", name, prev, kind)
		}
		seen[name] = kind
		return nil
	}

	sharedKey := os.Getenv(EnvLLMAPIKey)
	if sharedKey == "" {
		sharedKey = os.Getenv(EnvOpenAIAPIKey)
	}

	ensureNamed(c.LLM)
	ensureNamed(c.Database)
	ensureNamed(c.Storage)
	ensureNamed(c.Webhook)
	ensureNamed(c.Helpdesk)

	for name, cfg := range c.LLM {
		if err := claim("llm", name); err != nil {
			return err
		}
		if cfg.APIKey == "" {
			cfg.APIKey = sharedKey
		}
		if err := cfg.Finalize(llmEnv(name)); err != nil {
			return fmt.Errorf("llm %s: %w", name, err)
		}
	}
	for name, cfg := range c.Database {
		if err := claim("database", name); err != nil {
			return err
		}
		if err := cfg.Finalize(databaseEnv(name)); err != nil {
			return fmt.Errorf("database %s: %w", name, err)
		}
	}
	for name, cfg := range c.Storage {
		if err := claim("storage", name); err != nil {
			return err
		}
		if err := cfg.Finalize(name, storageEnv(name)); err != nil {
			return fmt.Errorf("storage %s: %w", name, err)
		}
	}
	for name, cfg := range c.Webhook {
		if err := claim("webhook", name); err != nil {
			return err
		}
		if err := cfg.Finalize(webhookEnv(name)); err != nil {
			return fmt.Errorf("webhook %s: %w", name, err)
		}
	}
	for name, cfg := range c.Helpdesk {
		if err := claim("helpdesk", name); err != nil {
			return err
		}
		if err := cfg.Finalize(helpdeskEnv(name)); err != nil {
			return fmt.Errorf("helpdesk %s: %w", name, err)
		}
	}
	return nil
}

// Merge merges overlay connectors by name, adding any that are new.
func (c *Connectors) Merge(overlay *Connectors) {
	c.LLM = mergeNamed(c.LLM, overlay.LLM, (*llm.Config).Merge)
	c.Database = mergeNamed(c.Database, overlay.Database, (*database.Config).Merge)
	c.Storage = mergeNamed(c.Storage, overlay.Storage, (*storage.Config).Merge)
	c.Webhook = mergeNamed(c.Webhook, overlay.Webhook, (*webhook.Config).Merge)
	c.Helpdesk = mergeNamed(c.Helpdesk, overlay.Helpdesk, (*helpdesk.Config).Merge)
}

func mergeNamed[T any](base, overlay map[string]*T, merge func(*T, *T)) map[string]*T {
	if len(overlay) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]*T, len(overlay))
	}
	for name, o := range overlay {
		if existing, ok := base[name]; ok && existing != nil {
			merge(existing, o)
			continue
		}
		base[name] = o
	}
	return base
}

func ensureNamed[T any](m map[string]*T) {
	for name, v := range m {
		if v == nil {
			m[name] = new(T)
		}
	}
}

func connectorEnv(kind, name, field string) string {
	return EnvPrefix + kind + "_" + EnvName(name) + "_" + field
}

func llmEnv(name string) *llm.Env {
	return &llm.Env{
		BaseURL:           connectorEnv("LLM", name, "BASE_URL"),
		APIKey:            connectorEnv("LLM", name, "API_KEY"),
		Model:             connectorEnv("LLM", name, "MODEL"),
		Timeout:           connectorEnv("LLM", name, "TIMEOUT"),
		RequestsPerSecond: connectorEnv("LLM", name, "REQUESTS_PER_SECOND"),
	}
}

func databaseEnv(name string) *database.Env {
	return &database.Env{
		URL:             connectorEnv("DB", name, "URL"),
		Host:            connectorEnv("DB", name, "HOST"),
		Port:            connectorEnv("DB", name, "PORT"),
		Name:            connectorEnv("DB", name, "NAME"),
		User:            connectorEnv("DB", name, "USER"),
		Password:        connectorEnv("DB", name, "PASSWORD"),
		SSLMode:         connectorEnv("DB", name, "SSL_MODE"),
		MaxOpenConns:    connectorEnv("DB", name, "MAX_OPEN_CONNS"),
		MaxIdleConns:    connectorEnv("DB", name, "MAX_IDLE_CONNS"),
		ConnMaxLifetime: connectorEnv("DB", name, "CONN_MAX_LIFETIME"),
		ConnTimeout:     connectorEnv("DB", name, "CONN_TIMEOUT"),
	}
}

func storageEnv(name string) *storage.Env {
	return &storage.Env{
		ContainerName:    connectorEnv("STORAGE", name, "CONTAINER_NAME"),
		ConnectionString: connectorEnv("STORAGE", name, "CONNECTION_STRING"),
		ServiceURL:       connectorEnv("STORAGE", name, "SERVICE_URL"),
	}
}

func webhookEnv(name string) *webhook.Env {
	return &webhook.Env{
		URL:     connectorEnv("WEBHOOK", name, "URL"),
		Timeout: connectorEnv("WEBHOOK", name, "TIMEOUT"),
	}
}

func helpdeskEnv(name string) *helpdesk.Env {
	return &helpdesk.Env{
		Subdomain: connectorEnv("HELPDESK", name, "SUBDOMAIN"),
		Email:     connectorEnv("HELPDESK", name, "EMAIL"),
		Token:     connectorEnv("HELPDESK", name, "TOKEN"),
		BaseURL:   connectorEnv("HELPDESK", name, "BASE_URL"),
		Timeout:   connectorEnv("HELPDESK", name, "TIMEOUT"),
	}
}
