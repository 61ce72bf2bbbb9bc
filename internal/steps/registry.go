package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/pkg/telemetry"
)

const tracerName = "github.com/JaimeStill/greenhouse/internal/steps"

// Registry holds steps by name.
type Registry struct {
	mu      sync.RWMutex
	steps   map[string]Step
	metrics *telemetry.Metrics
	tracer  trace.Tracer
}

// NewRegistry creates an empty Registry. A nil metrics disables recording.
func NewRegistry(metrics *telemetry.Metrics) *Registry {
	return &Registry{
		steps:   make(map[string]Step),
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
}

// Register adds steps. Names must be unique.
func (r *Registry) Register(steps ...Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range steps {
		if s.Name == "" || s.Handler == nil {
			return fmt.Errorf("register step %q: name and handler required", s.Name)
		}
		if _, ok := r.steps[s.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateStep, s.Name)
		}
		r.steps[s.Name] = s
	}
	return nil
}

// Get returns the named step.
func (r *Registry) Get(name string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.steps[name]
	if !ok {
		return Step{}, fmt.Errorf("%w: %s", ErrStepNotFound, name)
	}
	return s, nil
}

// List returns every step sorted by name.
func (r *Registry) List() []Step {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Step, 0, len(r.steps))
	for _, s := range r.steps {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Step) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Invoke runs the named step once. Each invocation gets its own ID, a
// step-scoped logger, a trace span, and a metrics observation.
func (r *Registry) Invoke(ctx context.Context, rt *runtime.Runtime, name string, input json.RawMessage) (json.RawMessage, error) {
	s, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger := rt.Logger().With("step", name, "invocation", id)

	ctx, span := r.tracer.Start(ctx, "step "+name, trace.WithAttributes(
		attribute.String("step.name", name),
		attribute.String("step.invocation", id),
	))
	defer span.End()

	logger.Info("step started")
	start := time.Now()

	out, err := s.Handler(ctx, rt.WithLogger(logger), input)

	elapsed := time.Since(start)
	if r.metrics != nil {
		r.metrics.ObserveStep(name, elapsed, err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("step failed", "duration", elapsed, "error", err)
		return nil, err
	}

	logger.Info("step completed", "duration", elapsed, "bytes", len(out))
	return out, nil
}
