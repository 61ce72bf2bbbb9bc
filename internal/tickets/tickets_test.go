package tickets_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/greenhouse/internal/config"
	"github.com/JaimeStill/greenhouse/internal/prompts"
	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/internal/steps"
	"github.com/JaimeStill/greenhouse/internal/tickets"
	"github.com/JaimeStill/greenhouse/pkg/helpdesk"
	"github.com/JaimeStill/greenhouse/pkg/llm"
	"github.com/JaimeStill/greenhouse/pkg/llm/llmtest"
	"github.com/JaimeStill/greenhouse/pkg/webhook"
)

func newRuntime(cfg *config.Config) *runtime.Runtime {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return runtime.New(cfg, prompts.New("", logger), logger)
}

func sampleTicket() tickets.Ticket {
	return tickets.Ticket{
		ID:           42,
		Email:        "ops@northwind.example",
		Subject:      "Order routing down",
		Description:  "All orders placed since nine this morning are stuck in the routing queue, every warehouse is idle, and our largest retail partner is threatening penalties.",
		Status:       "open",
		Priority:     "urgent",
		CreatedAt:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Organization: "Northwind Logistics",
		URL:          "https://acme.zendesk.com/agent/tickets/42",
		Tags:         []string{"routing"},
	}
}

func sampleChurn(account *tickets.Account) tickets.ChurnResponse {
	return tickets.ChurnResponse{
		Ticket:  sampleTicket(),
		Summary: "Order routing outage blocking warehouses.",
		Sentiment: tickets.SentimentAnalysis{
			Sentiment:         "negative",
			UrgencyLevel:      "high",
			EmotionIndicators: []string{"frustration"},
		},
		Account: account,
		RiskAssessment: tickets.ChurnRiskAssessment{
			RiskLevel:       "high",
			PriorityScore:   92,
			Recommendations: []string{"page on-call"},
		},
	}
}

// modelByPrompt replies based on the system prompt of each request.
func modelByPrompt(t *testing.T, rt *runtime.Runtime, replies map[string]string) {
	t.Helper()
	bySystem := make(map[string]string, len(replies))
	for name, reply := range replies {
		text, err := rt.Prompt(name)
		if err != nil {
			t.Fatalf("prompt %s: %v", name, err)
		}
		bySystem[text] = reply
	}
	rt.Register(tickets.ConnectorModel, llmtest.Func(func(_ context.Context, req llm.Request) (string, error) {
		if reply, ok := bySystem[req.Messages[0].Content]; ok {
			return reply, nil
		}
		return "", errors.New("unexpected system prompt")
	}))
}

func TestSteps(t *testing.T) {
	reg := steps.NewRegistry(nil)
	if err := reg.Register(tickets.Steps()...); err != nil {
		t.Fatalf("Register: %v", err)
	}
	for _, name := range []string{
		"fetch-tickets",
		"summarize-ticket",
		"analyze-customer-sentiment",
		"determine-churn-risk",
		"escalation-decision",
	} {
		if _, err := reg.Get(name); err != nil {
			t.Errorf("Get(%s): %v", name, err)
		}
	}
}

func TestLookupAccount(t *testing.T) {
	tests := []struct {
		name    string
		org     string
		wantNil bool
	}{
		{"known", "Northwind Logistics", false},
		{"unknown", "Globex", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := tickets.LookupAccount(tt.org)
			if err != nil {
				t.Fatalf("LookupAccount: %v", err)
			}
			if (a == nil) != tt.wantNil {
				t.Errorf("account = %+v, wantNil %v", a, tt.wantNil)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	rt := newRuntime(&config.Config{})
	scripted := llmtest.Text("  Routing outage.  ")
	rt.Register(tickets.ConnectorModel, scripted)

	ticket := sampleTicket()
	ticket.Description = ""

	resp, err := tickets.Summarize(context.Background(), rt, ticket)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if resp.Summary != "Routing outage." {
		t.Errorf("Summary = %q", resp.Summary)
	}
	if resp.Ticket.ID != 42 {
		t.Errorf("ticket not passed through: %+v", resp.Ticket)
	}

	reqs := scripted.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	want := "Subject: Order routing down\n\nDescription: No description provided"
	if got := reqs[0].Messages[1].Content; got != want {
		t.Errorf("user content = %q, want %q", got, want)
	}
	if reqs[0].Messages[0].Role != llm.RoleSystem {
		t.Error("first message should be the system prompt")
	}
}

func TestSummarizeStepValidatesInput(t *testing.T) {
	reg := steps.NewRegistry(nil)
	reg.Register(tickets.Steps()...)

	_, err := reg.Invoke(context.Background(), newRuntime(&config.Config{}), "summarize-ticket", json.RawMessage(`{"id": 1}`))
	if !errors.Is(err, steps.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestAnalyzeSentimentAndChurn(t *testing.T) {
	rt := newRuntime(&config.Config{})
	modelByPrompt(t, rt, map[string]string{
		tickets.PromptSentiment: `{"sentiment":"negative","confidence":0.9,"key_phrases":["stuck"],"emotion_indicators":["frustration"],"urgency_level":"high","satisfaction_indicators":[]}`,
		tickets.PromptChurnRisk: "```json\n" + `{"risk_level":"high","confidence":0.8,"risk_factors":{"sentiment_indicators":[],"technical_factors":["outage"],"account_factors":[],"historical_factors":[]},"recommendations":["call the customer"],"priority_score":88}` + "\n```",
	})

	sentiment, err := tickets.AnalyzeSentiment(context.Background(), rt, tickets.SummaryResponse{
		Ticket:  sampleTicket(),
		Summary: "Routing outage.",
	})
	if err != nil {
		t.Fatalf("AnalyzeSentiment: %v", err)
	}
	if sentiment.Analysis.Sentiment != "negative" || sentiment.Analysis.UrgencyLevel != "high" {
		t.Errorf("analysis = %+v", sentiment.Analysis)
	}
	if sentiment.Account == nil || sentiment.Account.Name != "Northwind Logistics" {
		t.Fatalf("account = %+v", sentiment.Account)
	}

	churn, err := tickets.DetermineChurnRisk(context.Background(), rt, sentiment)
	if err != nil {
		t.Fatalf("DetermineChurnRisk: %v", err)
	}
	if churn.RiskAssessment.PriorityScore != 88 || churn.RiskAssessment.RiskLevel != "high" {
		t.Errorf("risk = %+v", churn.RiskAssessment)
	}
	if churn.Sentiment.Sentiment != "negative" || churn.Account == nil {
		t.Errorf("pass-through lost: %+v", churn)
	}
}

func TestAnalyzeSentimentUnknownAccount(t *testing.T) {
	rt := newRuntime(&config.Config{})
	scripted := llmtest.Text(`{"sentiment":"neutral","confidence":0.5,"key_phrases":[],"emotion_indicators":[],"urgency_level":"low","satisfaction_indicators":[]}`)
	rt.Register(tickets.ConnectorModel, scripted)

	ticket := sampleTicket()
	ticket.Organization = "Globex"

	resp, err := tickets.AnalyzeSentiment(context.Background(), rt, tickets.SummaryResponse{Ticket: ticket, Summary: "s"})
	if err != nil {
		t.Fatalf("AnalyzeSentiment: %v", err)
	}
	if resp.Account != nil {
		t.Errorf("account = %+v, want nil", resp.Account)
	}

	req := scripted.Requests()[0]
	if req.ResponseFormat == nil || req.ResponseFormat.JSONSchema.Name != "SentimentAnalysis" {
		t.Errorf("response format = %+v", req.ResponseFormat)
	}
}

func TestDecideEscalation(t *testing.T) {
	escalate := `{"should_escalate":true,"reasons":["outage","high ACV"],"recommended_actions":["page"],"priority_level":"critical","response_sla":"immediate"}`
	noEscalate := `{"should_escalate":false,"reasons":[],"recommended_actions":[],"priority_level":"low","response_sla":"24 hours"}`

	tests := []struct {
		name       string
		reply      string
		status     int
		wantSent   bool
		wantPosted int32
	}{
		{"escalates and notifies", escalate, http.StatusOK, true, 1},
		{"webhook rejects", escalate, http.StatusInternalServerError, false, 1},
		{"no escalation", noEscalate, http.StatusOK, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var posted atomic.Int32
			var body webhook.Message
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				posted.Add(1)
				json.NewDecoder(r.Body).Decode(&body)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			cfg := &config.Config{Connectors: config.Connectors{
				Webhook: map[string]*webhook.Config{tickets.ConnectorWebhook: {URL: srv.URL, Timeout: "5s"}},
			}}
			rt := newRuntime(cfg)
			rt.Register(tickets.ConnectorModel, llmtest.Text(tt.reply))

			account, _ := tickets.LookupAccount("Northwind Logistics")
			resp, err := tickets.DecideEscalation(context.Background(), rt, sampleChurn(account))
			if err != nil {
				t.Fatalf("DecideEscalation: %v", err)
			}
			if resp.NotificationSent != tt.wantSent {
				t.Errorf("NotificationSent = %v, want %v", resp.NotificationSent, tt.wantSent)
			}
			if got := posted.Load(); got != tt.wantPosted {
				t.Errorf("webhook posts = %d, want %d", got, tt.wantPosted)
			}
			if tt.wantPosted > 0 && !strings.HasPrefix(body.Text, "🚨 CRITICAL TICKET") {
				t.Errorf("notification text = %q", body.Text)
			}
		})
	}
}

func TestDecideEscalationWithoutWebhook(t *testing.T) {
	rt := newRuntime(&config.Config{})
	rt.Register(tickets.ConnectorModel, llmtest.Text(`{"should_escalate":true,"reasons":["x"],"recommended_actions":[],"priority_level":"high","response_sla":"4 hours"}`))

	resp, err := tickets.DecideEscalation(context.Background(), rt, sampleChurn(nil))
	if err != nil {
		t.Fatalf("missing webhook should be swallowed: %v", err)
	}
	if resp.NotificationSent {
		t.Error("NotificationSent should be false without a webhook")
	}
}

func TestDecideEscalationSecretFallback(t *testing.T) {
	tests := []struct {
		name     string
		declared map[string]*webhook.Config
	}{
		{"undeclared connector", nil},
		{"declared without url", map[string]*webhook.Config{
			tickets.ConnectorWebhook: {Timeout: "10s"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var posted atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				posted.Add(1)
			}))
			defer srv.Close()

			rt := newRuntime(&config.Config{
				Connectors: config.Connectors{Webhook: tt.declared},
				Secrets:    map[string]string{tickets.SecretWebhookURL: srv.URL},
			})
			rt.Register(tickets.ConnectorModel, llmtest.Text(`{"should_escalate":true,"reasons":["x"],"recommended_actions":[],"priority_level":"high","response_sla":"4 hours"}`))

			resp, err := tickets.DecideEscalation(context.Background(), rt, sampleChurn(nil))
			if err != nil {
				t.Fatalf("DecideEscalation: %v", err)
			}
			if !resp.NotificationSent || posted.Load() != 1 {
				t.Errorf("secret webhook not used: sent=%v posts=%d", resp.NotificationSent, posted.Load())
			}
		})
	}
}

func TestDecideEscalationModelError(t *testing.T) {
	rt := newRuntime(&config.Config{})
	rt.Register(tickets.ConnectorModel, llmtest.New(llmtest.Reply{Err: errors.New("rate limited")}))

	if _, err := tickets.DecideEscalation(context.Background(), rt, sampleChurn(nil)); err == nil {
		t.Error("model failure should propagate")
	}
}

func TestFormatNotification(t *testing.T) {
	account, _ := tickets.LookupAccount("Northwind Logistics")
	in := sampleChurn(account)
	criteria := tickets.EscalationCriteria{
		PriorityLevel: "critical",
		ResponseSLA:   "immediate",
		Reasons:       []string{"outage", "high ACV"},
	}
	now := in.Ticket.CreatedAt.Add(3*time.Hour + 20*time.Minute)

	got := tickets.FormatNotification(in, criteria, now)

	want := []string{
		"🚨 CRITICAL TICKET - IMMEDIATE ACTION REQUIRED",
		"Customer: Northwind Logistics",
		"Revenue Impact: $480,000 ARR",
		"Churn Risk: HIGH 🔥",
		"Issue: Order routing down",
		"Duration: 3+ hours",
		"Context: Priority Score 92/100",
		"Urgency: immediate",
		"AI Analysis: outage, high ACV",
		"View in Zendesk: https://acme.zendesk.com/agent/tickets/42",
		"Escalate to On-Call: [Click to Page]",
	}
	for _, line := range want {
		if !strings.Contains(got, line) {
			t.Errorf("notification missing %q\n%s", line, got)
		}
	}

	impact := "Impact: " + in.Ticket.Description[:97] + "..."
	if !strings.Contains(got, impact) {
		t.Errorf("description not truncated to 100:\n%s", got)
	}
}

func TestFormatNotificationFallbacks(t *testing.T) {
	in := sampleChurn(nil)
	in.Ticket.URL = ""
	in.Ticket.CreatedAt = time.Time{}
	in.RiskAssessment.RiskLevel = "medium"

	now := in.Ticket.UpdatedAt.Add(12 * time.Minute)
	got := tickets.FormatNotification(in, tickets.EscalationCriteria{PriorityLevel: "high"}, now)

	for _, line := range []string{
		"Customer: Northwind Logistics",
		"Revenue Impact: unknown",
		"Churn Risk: MEDIUM ⚠️",
		"Duration: 12 minutes",
		"View in Zendesk: [No URL]",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("notification missing %q\n%s", line, got)
		}
	}
}

func TestFetch(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [{"id": 7, "subject": "Login broken", "status": "new", "requester_id": 3, "organization_id": 9, "tags": ["auth"]}],
			"users": [{"id": 3, "email": "a@example.com"}],
			"organizations": [{"id": 9, "name": "Fabrikam Retail"}],
			"next_page": ""
		}`))
	}))
	defer srv.Close()

	cfg := &config.Config{Connectors: config.Connectors{
		Helpdesk: map[string]*helpdesk.Config{
			tickets.ConnectorHelpdesk: {BaseURL: srv.URL, Email: "bot@example.com", Token: "t", Timeout: "5s"},
		},
	}}
	rt := newRuntime(cfg)

	since := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	before := time.Now().UTC()
	resp, err := tickets.Fetch(context.Background(), rt, tickets.FetchInput{LastRunTime: &since})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if query != "type:ticket created>2026-01-02T03:04:05Z" {
		t.Errorf("query = %q", query)
	}
	if len(resp.Tickets) != 1 || resp.Tickets[0].Organization != "Fabrikam Retail" || resp.Tickets[0].Email != "a@example.com" {
		t.Errorf("tickets = %+v", resp.Tickets)
	}
	if resp.LastRunTime.Before(before) {
		t.Errorf("last_run_time %v should be at or after %v", resp.LastRunTime, before)
	}
}

func TestFetchWithoutHelpdesk(t *testing.T) {
	rt := newRuntime(&config.Config{})
	if _, err := tickets.Fetch(context.Background(), rt, tickets.FetchInput{}); !errors.Is(err, runtime.ErrConnectorNotFound) {
		t.Errorf("error = %v, want ErrConnectorNotFound", err)
	}
}
