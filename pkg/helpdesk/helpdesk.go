// Package helpdesk reads tickets from the Zendesk search API.
package helpdesk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrMissingCredentials indicates a client without subdomain, email or token.
var ErrMissingCredentials = errors.New("helpdesk subdomain, email and token required")

// Ticket is a helpdesk ticket with its requester and organization resolved.
type Ticket struct {
	ID                  int64     `json:"id"`
	Email               string    `json:"email"`
	Subject             string    `json:"subject"`
	Description         string    `json:"description,omitempty"`
	Status              string    `json:"status"`
	Priority            string    `json:"priority,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Organization        string    `json:"organization,omitempty"`
	OrganizationDetails string    `json:"organization_details,omitempty"`
	OrganizationNotes   string    `json:"organization_notes,omitempty"`
	URL                 string    `json:"url,omitempty"`
	Tags                []string  `json:"tags"`
}

// Client searches helpdesk tickets.
type Client interface {
	// SearchTickets returns tickets created strictly after createdAfter.
	SearchTickets(ctx context.Context, createdAfter time.Time) ([]Ticket, error)
}

type zendesk struct {
	baseURL    string
	email      string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Zendesk client. A nil httpClient uses one with the configured timeout.
func New(cfg *Config, httpClient *http.Client, logger *slog.Logger) (Client, error) {
	if (cfg.Subdomain == "" && cfg.BaseURL == "") || cfg.Email == "" || cfg.Token == "" {
		return nil, ErrMissingCredentials
	}
	if httpClient == nil {
		timeout, _ := time.ParseDuration(cfg.Timeout)
		httpClient = &http.Client{Timeout: timeout}
	}
	return &zendesk{
		baseURL:    strings.TrimRight(cfg.URL(), "/"),
		email:      cfg.Email,
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger.With("system", "helpdesk"),
	}, nil
}

func (z *zendesk) SearchTickets(ctx context.Context, createdAfter time.Time) ([]Ticket, error) {
	query := url.Values{}
	query.Set("query", "type:ticket created>"+createdAfter.UTC().Format(time.RFC3339))
	query.Set("include", "tickets(users,organizations)")

	next := z.baseURL + "/api/v2/search.json?" + query.Encode()
	tickets := make([]Ticket, 0)

	for next != "" {
		page, err := z.fetch(ctx, next)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, page.tickets(z.baseURL)...)
		next = page.NextPage
	}

	z.logger.Info("tickets fetched", "count", len(tickets), "created_after", createdAfter)
	return tickets, nil
}

func (z *zendesk) fetch(ctx context.Context, pageURL string) (*searchPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.SetBasicAuth(z.email+"/token", z.token)
	req.Header.Set("Accept", "application/json")

	resp, err := z.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search tickets: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search tickets: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page searchPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &page, nil
}

type searchPage struct {
	Results []struct {
		ID             int64     `json:"id"`
		Subject        string    `json:"subject"`
		Description    string    `json:"description"`
		Status         string    `json:"status"`
		Priority       string    `json:"priority"`
		CreatedAt      time.Time `json:"created_at"`
		UpdatedAt      time.Time `json:"updated_at"`
		RequesterID    int64     `json:"requester_id"`
		OrganizationID *int64    `json:"organization_id"`
		Tags           []string  `json:"tags"`
	} `json:"results"`
	Users []struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	} `json:"users"`
	Organizations []struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Details string `json:"details"`
		Notes   string `json:"notes"`
	} `json:"organizations"`
	NextPage string `json:"next_page"`
}

func (p *searchPage) tickets(baseURL string) []Ticket {
	emails := make(map[int64]string, len(p.Users))
	for _, u := range p.Users {
		emails[u.ID] = u.Email
	}

	type org struct{ name, details, notes string }
	orgs := make(map[int64]org, len(p.Organizations))
	for _, o := range p.Organizations {
		orgs[o.ID] = org{o.Name, o.Details, o.Notes}
	}

	out := make([]Ticket, 0, len(p.Results))
	for _, r := range p.Results {
		t := Ticket{
			ID:          r.ID,
			Email:       emails[r.RequesterID],
			Subject:     r.Subject,
			Description: r.Description,
			Status:      r.Status,
			Priority:    r.Priority,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
			URL:         fmt.Sprintf("%s/agent/tickets/%d", baseURL, r.ID),
			Tags:        r.Tags,
		}
		if t.Tags == nil {
			t.Tags = []string{}
		}
		if r.OrganizationID != nil {
			o := orgs[*r.OrganizationID]
			t.Organization = o.name
			t.OrganizationDetails = o.details
			t.OrganizationNotes = o.notes
		}
		out = append(out, t)
	}
	return out
}
