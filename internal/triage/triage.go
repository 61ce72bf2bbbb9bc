// Package triage implements the ticket-database demo workflow: list the
// stored tickets, ask a model whether each conversation needs escalation,
// and record the decisions back in the database.
package triage

import (
	"embed"

	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/internal/steps"
)

// Connector and prompt names used by the workflow.
const (
	ConnectorDatabase = "tickets-postgres"
	ConnectorModel    = "tickets-openai"
	PromptChecker     = "escalation-checker"
)

// Migrations holds the schema and seed data applied by hydrate-tickets.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the SQL files.
const MigrationsDir = "migrations"

// Opener resolves the Store for an invocation.
type Opener func(rt *runtime.Runtime) (Store, error)

// Workflow binds the triage steps to a Store.
type Workflow struct {
	open Opener
}

// New creates a Workflow backed by the tickets-postgres connector.
func New() *Workflow {
	return NewWithStore(func(rt *runtime.Runtime) (Store, error) {
		db, err := rt.Database(ConnectorDatabase)
		if err != nil {
			return nil, err
		}
		return NewStore(db.Connection()), nil
	})
}

// NewWithStore creates a Workflow that obtains its Store from open.
func NewWithStore(open Opener) *Workflow {
	return &Workflow{open: open}
}

// Steps returns the workflow's steps.
func (w *Workflow) Steps() []steps.Step {
	return []steps.Step{
		{
			Name:        "scan-tickets",
			Description: "List every stored ticket id",
			Connectors:  []string{ConnectorDatabase},
			Handler:     steps.Typed(w.Scan),
		},
		{
			Name:        "check-escalation",
			Description: "Decide whether a ticket conversation needs escalation",
			Connectors:  []string{ConnectorDatabase, ConnectorModel},
			Handler:     steps.Typed(w.CheckEscalation),
		},
		{
			Name:        "save-escalations",
			Description: "Record escalation decisions on their tickets",
			Connectors:  []string{ConnectorDatabase},
			Handler:     steps.Typed(w.SaveEscalations),
		},
		{
			Name:        "hydrate-tickets",
			Description: "Apply the ticket schema and seed data",
			Connectors:  []string{ConnectorDatabase},
			Handler:     steps.Typed(w.Hydrate),
		},
	}
}
