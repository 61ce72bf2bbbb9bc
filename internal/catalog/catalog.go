// Package catalog assembles the registry of every workflow step shipped
// with greenhouse.
package catalog

import (
	"github.com/JaimeStill/greenhouse/internal/haiku"
	"github.com/JaimeStill/greenhouse/internal/steps"
	"github.com/JaimeStill/greenhouse/internal/tickets"
	"github.com/JaimeStill/greenhouse/internal/triage"
	"github.com/JaimeStill/greenhouse/internal/trivia"
	"github.com/JaimeStill/greenhouse/pkg/telemetry"
)

// New creates a registry holding every step. metrics may be nil.
func New(metrics *telemetry.Metrics) (*steps.Registry, error) {
	reg := steps.NewRegistry(metrics)

	groups := [][]steps.Step{
		tickets.Steps(),
		triage.New().Steps(),
		trivia.Steps(),
		haiku.Steps(),
	}
	for _, g := range groups {
		if err := reg.Register(g...); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
