package triage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JaimeStill/greenhouse/pkg/database"
	"github.com/JaimeStill/greenhouse/pkg/repository"
)

// ErrTicketNotFound indicates no ticket with the requested id.
var ErrTicketNotFound = errors.New("ticket not found")

// Store is the ticket persistence used by the workflow.
type Store interface {
	TicketIDs(ctx context.Context) ([]int64, error)
	Ticket(ctx context.Context, id int64) (Ticket, error)
	Messages(ctx context.Context, ticketID int64) ([]Message, error)
	SetEscalation(ctx context.Context, decisions []Decision) error
	Hydrate(ctx context.Context) (HydrateResponse, error)
}

type store struct {
	db *sql.DB
}

// NewStore creates a Store over a PostgreSQL pool.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) TicketIDs(ctx context.Context) ([]int64, error) {
	return repository.QueryMany(ctx, s.db, "SELECT id FROM tickets ORDER BY id", nil,
		func(sc repository.Scanner) (int64, error) {
			var id int64
			err := sc.Scan(&id)
			return id, err
		})
}

func (s *store) Ticket(ctx context.Context, id int64) (Ticket, error) {
	t, err := repository.QueryOne(ctx, s.db,
		"SELECT id, subject, status, priority, needs_escalation, created_at FROM tickets WHERE id = $1",
		[]any{id}, scanTicket)
	if err != nil {
		return Ticket{}, repository.MapError(err, fmt.Errorf("%w: %d", ErrTicketNotFound, id), err)
	}
	return t, nil
}

func (s *store) Messages(ctx context.Context, ticketID int64) ([]Message, error) {
	return repository.QueryMany(ctx, s.db,
		"SELECT id, ticket_id, sender_type, content, created_at FROM messages WHERE ticket_id = $1 ORDER BY id",
		[]any{ticketID}, scanMessage)
}

// SetEscalation applies each decision as its own statement. Rows written
// before a failure stay written, and ids matching no ticket are skipped.
func (s *store) SetEscalation(ctx context.Context, decisions []Decision) error {
	for _, d := range decisions {
		err := repository.ExecExpectOne(ctx, s.db,
			"UPDATE tickets SET needs_escalation = $1 WHERE id = $2", d.Escalate, d.TicketID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("set escalation for ticket %d: %w", d.TicketID, err)
		}
	}
	return nil
}

func (s *store) Hydrate(ctx context.Context) (HydrateResponse, error) {
	version, err := database.Migrate(ctx, s.db, Migrations, MigrationsDir)
	if err != nil {
		return HydrateResponse{}, err
	}

	messages, err := repository.QueryValue[int64](ctx, s.db, "SELECT COUNT(*) FROM messages")
	if err != nil {
		return HydrateResponse{}, fmt.Errorf("count messages: %w", err)
	}
	tickets, err := repository.QueryValue[int64](ctx, s.db, "SELECT COUNT(*) FROM tickets")
	if err != nil {
		return HydrateResponse{}, fmt.Errorf("count tickets: %w", err)
	}

	return HydrateResponse{
		Status:        "ok",
		SchemaVersion: version,
		MessageCount:  messages,
		TicketCount:   tickets,
	}, nil
}

func scanTicket(sc repository.Scanner) (Ticket, error) {
	var t Ticket
	var escalate sql.NullBool
	if err := sc.Scan(&t.ID, &t.Subject, &t.Status, &t.Priority, &escalate, &t.CreatedAt); err != nil {
		return t, err
	}
	if escalate.Valid {
		t.NeedsEscalation = &escalate.Bool
	}
	return t, nil
}

func scanMessage(sc repository.Scanner) (Message, error) {
	var m Message
	err := sc.Scan(&m.ID, &m.TicketID, &m.SenderType, &m.Content, &m.CreatedAt)
	return m, err
}
