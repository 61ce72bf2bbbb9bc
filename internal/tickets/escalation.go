package tickets

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/pkg/formatting"
	"github.com/JaimeStill/greenhouse/pkg/webhook"
)

// DecideEscalation asks the model whether the ticket needs escalation and,
// if so, posts a notification. Notification failures are logged and leave
// NotificationSent false.
func DecideEscalation(ctx context.Context, rt *runtime.Runtime, in ChurnResponse) (EscalationResponse, error) {
	criteria, err := structured[EscalationCriteria](ctx, rt, PromptEscalation, escalationContext(in))
	if err != nil {
		return EscalationResponse{}, fmt.Errorf("assess escalation for ticket %d: %w", in.Ticket.ID, err)
	}

	resp := EscalationResponse{
		Ticket:         in.Ticket,
		Summary:        in.Summary,
		Sentiment:      in.Sentiment,
		RiskAssessment: in.RiskAssessment,
		Account:        in.Account,
		Escalation:     criteria,
	}

	if criteria.ShouldEscalate {
		resp.NotificationSent = notify(ctx, rt, FormatNotification(in, criteria, time.Now()))
	}

	return resp, nil
}

func notify(ctx context.Context, rt *runtime.Runtime, text string) bool {
	logger := rt.Logger()

	client, err := rt.WebhookOrSecret(ConnectorWebhook, SecretWebhookURL)
	if err != nil {
		logger.Error("escalation webhook unavailable", "error", err)
		return false
	}

	status, err := client.Send(ctx, webhook.Message{Text: text})
	if err != nil {
		logger.Error("escalation notification failed", "error", err)
		return false
	}
	if status != http.StatusOK {
		logger.Warn("escalation notification rejected", "status", status)
	}
	return status == http.StatusOK
}

func escalationContext(in ChurnResponse) string {
	var b strings.Builder
	risk := in.RiskAssessment

	fmt.Fprintf(&b, "Ticket Summary:\n%s\n\n", in.Summary)

	b.WriteString("Risk Assessment:\n")
	fmt.Fprintf(&b, "- Risk Level: %s\n", risk.RiskLevel)
	fmt.Fprintf(&b, "- Priority Score: %d/100\n", risk.PriorityScore)
	fmt.Fprintf(&b, "- Risk Factors: %s\n", strings.Join(risk.RiskFactors.TechnicalFactors, ", "))
	fmt.Fprintf(&b, "- Recommendations: %s\n\n", strings.Join(risk.Recommendations, ", "))

	b.WriteString("Account Impact:\n")
	if a := in.Account; a != nil {
		fmt.Fprintf(&b, "- Annual Value: $%s\n", formatting.Thousands(a.ACV))
		fmt.Fprintf(&b, "- Tier: %s\n", a.Tier)
		fmt.Fprintf(&b, "- Support Level: %s\n", a.SupportLevel)
		fmt.Fprintf(&b, "- Critical Systems: %s\n\n", strings.Join(a.CriticalSystems, ", "))
	} else {
		b.WriteString("- No account information available\n\n")
	}

	b.WriteString("Sentiment Analysis:\n")
	fmt.Fprintf(&b, "- Overall: %s\n", in.Sentiment.Sentiment)
	fmt.Fprintf(&b, "- Urgency: %s\n", in.Sentiment.UrgencyLevel)
	fmt.Fprintf(&b, "- Key Indicators: %s\n", strings.Join(in.Sentiment.EmotionIndicators, ", "))

	return b.String()
}

// FormatNotification renders the on-call escalation message as of now.
func FormatNotification(in ChurnResponse, criteria EscalationCriteria, now time.Time) string {
	risk := strings.ToUpper(in.RiskAssessment.RiskLevel)
	marker := "⚠️"
	if risk == "HIGH" {
		marker = "🔥"
	}

	customer := "Unknown customer"
	revenue := "unknown"
	if a := in.Account; a != nil {
		customer = a.Name
		revenue = "$" + formatting.Thousands(a.ACV) + " ARR"
	} else if in.Ticket.Organization != "" {
		customer = in.Ticket.Organization
	}

	url := in.Ticket.URL
	if url == "" {
		url = "[No URL]"
	}

	lines := []string{
		fmt.Sprintf("🚨 %s TICKET - IMMEDIATE ACTION REQUIRED", strings.ToUpper(criteria.PriorityLevel)),
		"",
		"Customer: " + customer,
		"Revenue Impact: " + revenue,
		fmt.Sprintf("Churn Risk: %s %s", risk, marker),
		"",
		"Issue: " + in.Ticket.Subject,
		"Duration: " + formatting.Elapsed(now.Sub(in.Ticket.Opened())),
		"Impact: " + formatting.Truncate(in.Ticket.Description, 100),
		fmt.Sprintf("Context: Priority Score %d/100", in.RiskAssessment.PriorityScore),
		"Urgency: " + criteria.ResponseSLA,
		"",
		"AI Analysis: " + strings.Join(criteria.Reasons, ", "),
		"",
		"View in Zendesk: " + url,
		"Escalate to On-Call: [Click to Page]",
	}
	return strings.Join(lines, "\n")
}
