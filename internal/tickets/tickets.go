// Package tickets implements the support-ticket analysis workflow: fetch
// new helpdesk tickets, summarize each one, analyze customer sentiment,
// assess churn risk, and escalate to the on-call channel when warranted.
package tickets

import (
	"github.com/JaimeStill/greenhouse/internal/steps"
)

// Connector and prompt names used by the workflow.
const (
	ConnectorModel    = "ticket-summarizer-model"
	ConnectorHelpdesk = "zendesk"
	ConnectorWebhook  = "escalation-webhook"

	// SecretWebhookURL is consulted when ConnectorWebhook is not declared.
	SecretWebhookURL = "slack_webhook_url"

	PromptSummarize    = "summarize-ticket"
	PromptEnrichedText = "enriched-text-summary"
	PromptSentiment    = "analyze-sentiment"
	PromptChurnData    = "churn-analysis-data"
	PromptChurnRisk    = "assess-churn-risk"
	PromptEscalation   = "assess-escalation"
)

// Steps returns the workflow's steps in execution order.
func Steps() []steps.Step {
	return []steps.Step{
		{
			Name:        "fetch-tickets",
			Description: "Fetch helpdesk tickets created since the last run",
			Connectors:  []string{ConnectorHelpdesk},
			Handler:     steps.Typed(Fetch),
		},
		{
			Name:        "summarize-ticket",
			Description: "Summarize a support ticket",
			Connectors:  []string{ConnectorModel},
			Handler:     steps.Typed(Summarize),
		},
		{
			Name:        "analyze-customer-sentiment",
			Description: "Analyze customer sentiment and attach the matching account",
			Connectors:  []string{ConnectorModel},
			Handler:     steps.Typed(AnalyzeSentiment),
		},
		{
			Name:        "determine-churn-risk",
			Description: "Assess the customer's churn risk",
			Connectors:  []string{ConnectorModel},
			Handler:     steps.Typed(DetermineChurnRisk),
		},
		{
			Name:        "escalation-decision",
			Description: "Decide on escalation and notify the on-call channel",
			Connectors:  []string{ConnectorModel, ConnectorWebhook},
			Handler:     steps.Typed(DecideEscalation),
		},
	}
}
