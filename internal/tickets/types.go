package tickets

import (
	"time"

	"github.com/JaimeStill/greenhouse/pkg/helpdesk"
)

// Ticket is a support ticket as it flows between steps. Its fields mirror
// helpdesk.Ticket so the two convert directly.
type Ticket struct {
	ID                  int64     `json:"id" validate:"required"`
	Email               string    `json:"email" validate:"required"`
	Subject             string    `json:"subject" validate:"required"`
	Description         string    `json:"description,omitempty"`
	Status              string    `json:"status" validate:"required"`
	Priority            string    `json:"priority,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Organization        string    `json:"organization,omitempty"`
	OrganizationDetails string    `json:"organization_details,omitempty"`
	OrganizationNotes   string    `json:"organization_notes,omitempty"`
	URL                 string    `json:"url,omitempty"`
	Tags                []string  `json:"tags"`
}

func fromHelpdesk(in []helpdesk.Ticket) []Ticket {
	out := make([]Ticket, len(in))
	for i, t := range in {
		out[i] = Ticket(t)
	}
	return out
}

// Opened returns the creation time, falling back to the last update.
func (t Ticket) Opened() time.Time {
	if !t.CreatedAt.IsZero() {
		return t.CreatedAt
	}
	return t.UpdatedAt
}

// Account is a customer record from the account catalog.
type Account struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	ACV             int64    `json:"acv"`
	Tier            string   `json:"tier"`
	Industry        string   `json:"industry"`
	SupportLevel    string   `json:"support_level"`
	CriticalSystems []string `json:"critical_systems"`
	Region          string   `json:"region"`
}

// SentimentAnalysis is the structured sentiment of a ticket.
type SentimentAnalysis struct {
	Sentiment              string   `json:"sentiment" jsonschema:"enum=positive,enum=negative,enum=neutral"`
	Confidence             float64  `json:"confidence"`
	KeyPhrases             []string `json:"key_phrases"`
	EmotionIndicators      []string `json:"emotion_indicators"`
	UrgencyLevel           string   `json:"urgency_level" jsonschema:"enum=high,enum=medium,enum=low"`
	SatisfactionIndicators []string `json:"satisfaction_indicators"`
}

// ChurnRiskFactors groups the evidence behind a churn assessment.
type ChurnRiskFactors struct {
	SentimentIndicators []string `json:"sentiment_indicators"`
	TechnicalFactors    []string `json:"technical_factors"`
	AccountFactors      []string `json:"account_factors"`
	HistoricalFactors   []string `json:"historical_factors"`
}

// ChurnRiskAssessment is the structured churn risk of a ticket's customer.
type ChurnRiskAssessment struct {
	RiskLevel       string           `json:"risk_level" jsonschema:"enum=high,enum=medium,enum=low"`
	Confidence      float64          `json:"confidence"`
	RiskFactors     ChurnRiskFactors `json:"risk_factors"`
	Recommendations []string         `json:"recommendations"`
	PriorityScore   int              `json:"priority_score" jsonschema:"minimum=1,maximum=100"`
}

// EscalationCriteria is the structured escalation decision.
type EscalationCriteria struct {
	ShouldEscalate     bool     `json:"should_escalate"`
	Reasons            []string `json:"reasons"`
	RecommendedActions []string `json:"recommended_actions"`
	PriorityLevel      string   `json:"priority_level" jsonschema:"enum=critical,enum=high,enum=medium,enum=low"`
	ResponseSLA        string   `json:"response_sla"`
}

// FetchInput selects tickets created after LastRunTime. Helpdesk credentials
// in the input take precedence over the configured connector.
type FetchInput struct {
	LastRunTime      *time.Time `json:"last_run_time,omitempty"`
	ZendeskSubdomain string     `json:"zendesk_subdomain,omitempty"`
	ZendeskEmail     string     `json:"zendesk_email,omitempty"`
	ZendeskToken     string     `json:"zendesk_token,omitempty"`
}

// FetchResponse carries the fetched tickets and the cursor for the next run.
type FetchResponse struct {
	Tickets     []Ticket  `json:"tickets"`
	LastRunTime time.Time `json:"last_run_time"`
}

// SummaryResponse is a ticket with its generated summary.
type SummaryResponse struct {
	Ticket  Ticket `json:"ticket"`
	Summary string `json:"summary" validate:"required"`
}

// SentimentResponse adds sentiment and the matched account.
type SentimentResponse struct {
	Ticket   Ticket            `json:"ticket"`
	Analysis SentimentAnalysis `json:"analysis"`
	Account  *Account          `json:"account"`
	Summary  string            `json:"summary" validate:"required"`
}

// ChurnResponse adds the churn risk assessment.
type ChurnResponse struct {
	Ticket         Ticket              `json:"ticket"`
	Summary        string              `json:"summary" validate:"required"`
	Sentiment      SentimentAnalysis   `json:"sentiment"`
	Account        *Account            `json:"account"`
	RiskAssessment ChurnRiskAssessment `json:"risk_assessment"`
}

// EscalationResponse adds the escalation decision and notification outcome.
type EscalationResponse struct {
	Ticket           Ticket              `json:"ticket"`
	Summary          string              `json:"summary"`
	Sentiment        SentimentAnalysis   `json:"sentiment"`
	RiskAssessment   ChurnRiskAssessment `json:"risk_assessment"`
	Account          *Account            `json:"account"`
	Escalation       EscalationCriteria  `json:"escalation"`
	NotificationSent bool                `json:"notification_sent"`
}
