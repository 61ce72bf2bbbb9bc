package triage

import "time"

// Ticket is a stored support ticket.
type Ticket struct {
	ID              int64     `json:"id"`
	Subject         string    `json:"subject"`
	Status          string    `json:"status"`
	Priority        string    `json:"priority"`
	NeedsEscalation *bool     `json:"needs_escalation"`
	CreatedAt       time.Time `json:"created_at"`
}

// Message is one turn of a ticket conversation.
type Message struct {
	ID         int64     `json:"id"`
	TicketID   int64     `json:"ticket_id"`
	SenderType string    `json:"sender_type"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// ScanResponse lists ticket ids under the key the orchestrator fans out on.
type ScanResponse struct {
	TicketID []int64 `json:"ticket_id"`
}

// CheckInput names the ticket to check. The orchestrator may deliver the id
// under "$.ticket_id" when it maps fan-out items directly.
type CheckInput struct {
	TicketID     int64 `json:"ticket_id" validate:"required"`
	PathTicketID int64 `json:"$.ticket_id"`
}

func (c *CheckInput) SetDefaults() {
	if c.TicketID == 0 {
		c.TicketID = c.PathTicketID
	}
}

// Decision is the escalation verdict for one ticket.
type Decision struct {
	TicketID int64 `json:"ticket_id"`
	Escalate bool  `json:"escalate"`
}

// Verdict is the structured model reply.
type Verdict struct {
	Escalate bool `json:"escalate"`
}

// SaveResponse lists the tickets that were updated.
type SaveResponse struct {
	TicketIDs []int64 `json:"ticket_ids"`
}

// HydrateResponse reports the row counts after hydration.
type HydrateResponse struct {
	Status        string `json:"status"`
	SchemaVersion uint   `json:"schema_version"`
	MessageCount  int64  `json:"message_count"`
	TicketCount   int64  `json:"ticket_count"`
}
