package triage

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/internal/steps"
	"github.com/JaimeStill/greenhouse/pkg/llm"
)

// Scan lists every ticket id in ascending order.
func (w *Workflow) Scan(ctx context.Context, rt *runtime.Runtime, _ struct{}) (ScanResponse, error) {
	store, err := w.open(rt)
	if err != nil {
		return ScanResponse{}, err
	}

	ids, err := store.TicketIDs(ctx)
	if err != nil {
		return ScanResponse{}, fmt.Errorf("scan tickets: %w", err)
	}
	return ScanResponse{TicketID: ids}, nil
}

// CheckEscalation asks the model whether the ticket's conversation should be
// escalated to a manager.
func (w *Workflow) CheckEscalation(ctx context.Context, rt *runtime.Runtime, in CheckInput) (Decision, error) {
	store, err := w.open(rt)
	if err != nil {
		return Decision{}, err
	}

	ticket, err := store.Ticket(ctx, in.TicketID)
	if err != nil {
		return Decision{}, err
	}
	messages, err := store.Messages(ctx, in.TicketID)
	if err != nil {
		return Decision{}, fmt.Errorf("load messages for ticket %d: %w", in.TicketID, err)
	}

	model, err := rt.LLM(ConnectorModel)
	if err != nil {
		return Decision{}, err
	}
	system, err := rt.Prompt(PromptChecker)
	if err != nil {
		return Decision{}, err
	}

	verdict, err := llm.Parse[Verdict](ctx, model, llm.Request{
		Messages: []llm.Message{llm.System(system), llm.User(Transcript(ticket, messages))},
	})
	if err != nil {
		return Decision{}, fmt.Errorf("check escalation for ticket %d: %w", in.TicketID, err)
	}

	rt.Logger().Info("escalation checked", "ticket_id", in.TicketID, "escalate", verdict.Escalate)
	return Decision{TicketID: in.TicketID, Escalate: verdict.Escalate}, nil
}

// SaveEscalations records the decisions found under the single key of in.
// The key name is whatever the orchestrator used to collect the fan-out.
func (w *Workflow) SaveEscalations(ctx context.Context, rt *runtime.Runtime, in map[string][]Decision) (SaveResponse, error) {
	if len(in) != 1 {
		return SaveResponse{}, fmt.Errorf("%w: expected exactly one key, got %d", steps.ErrInvalidInput, len(in))
	}

	var decisions []Decision
	for _, v := range in {
		decisions = v
	}

	store, err := w.open(rt)
	if err != nil {
		return SaveResponse{}, err
	}
	if err := store.SetEscalation(ctx, decisions); err != nil {
		return SaveResponse{}, fmt.Errorf("save escalations: %w", err)
	}

	ids := make([]int64, 0, len(decisions))
	for _, d := range decisions {
		ids = append(ids, d.TicketID)
	}
	return SaveResponse{TicketIDs: ids}, nil
}

// Hydrate applies the schema and seed migrations and reports row counts.
func (w *Workflow) Hydrate(ctx context.Context, rt *runtime.Runtime, _ struct{}) (HydrateResponse, error) {
	store, err := w.open(rt)
	if err != nil {
		return HydrateResponse{}, err
	}

	resp, err := store.Hydrate(ctx)
	if err != nil {
		return HydrateResponse{}, fmt.Errorf("hydrate tickets: %w", err)
	}

	rt.Logger().Info("tickets hydrated",
		"version", resp.SchemaVersion,
		"tickets", resp.TicketCount,
		"messages", resp.MessageCount,
	)
	return resp, nil
}

// Transcript renders a ticket header followed by one line per message.
func Transcript(ticket Ticket, messages []Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\nStatus: %s\nPriority: %s\n\n", ticket.Subject, ticket.Status, ticket.Priority)

	for _, m := range messages {
		role := "Agent"
		if m.SenderType == "customer" {
			role = "Customer"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, m.Content)
	}
	return b.String()
}
