package tickets

import (
	"context"
	"fmt"

	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/pkg/llm"
)

// Summarize asks the model for a free-text summary of the ticket.
func Summarize(ctx context.Context, rt *runtime.Runtime, ticket Ticket) (SummaryResponse, error) {
	model, err := rt.LLM(ConnectorModel)
	if err != nil {
		return SummaryResponse{}, err
	}
	system, err := rt.Prompt(PromptSummarize)
	if err != nil {
		return SummaryResponse{}, err
	}

	description := ticket.Description
	if description == "" {
		description = "No description provided"
	}
	content := fmt.Sprintf("Subject: %s\n\nDescription: %s", ticket.Subject, description)

	summary, err := llm.Text(ctx, model, llm.Request{
		Messages: []llm.Message{llm.System(system), llm.User(content)},
	})
	if err != nil {
		return SummaryResponse{}, fmt.Errorf("summarize ticket %d: %w", ticket.ID, err)
	}

	return SummaryResponse{Ticket: ticket, Summary: summary}, nil
}

// AnalyzeSentiment classifies the customer's sentiment and attaches the
// catalog account for the ticket's organization.
func AnalyzeSentiment(ctx context.Context, rt *runtime.Runtime, in SummaryResponse) (SentimentResponse, error) {
	account, err := LookupAccount(in.Ticket.Organization)
	if err != nil {
		return SentimentResponse{}, err
	}

	content, err := rt.RenderPrompt(PromptEnrichedText, struct {
		Ticket  Ticket
		Summary string
		Account *Account
	}{in.Ticket, in.Summary, account})
	if err != nil {
		return SentimentResponse{}, err
	}

	analysis, err := structured[SentimentAnalysis](ctx, rt, PromptSentiment, content)
	if err != nil {
		return SentimentResponse{}, fmt.Errorf("analyze sentiment for ticket %d: %w", in.Ticket.ID, err)
	}

	return SentimentResponse{
		Ticket:   in.Ticket,
		Analysis: analysis,
		Account:  account,
		Summary:  in.Summary,
	}, nil
}

// DetermineChurnRisk assesses how likely the customer is to churn.
func DetermineChurnRisk(ctx context.Context, rt *runtime.Runtime, in SentimentResponse) (ChurnResponse, error) {
	content, err := rt.RenderPrompt(PromptChurnData, struct {
		Ticket   Ticket
		Summary  string
		Account  *Account
		Analysis SentimentAnalysis
	}{in.Ticket, in.Summary, in.Account, in.Analysis})
	if err != nil {
		return ChurnResponse{}, err
	}

	risk, err := structured[ChurnRiskAssessment](ctx, rt, PromptChurnRisk, content)
	if err != nil {
		return ChurnResponse{}, fmt.Errorf("assess churn risk for ticket %d: %w", in.Ticket.ID, err)
	}

	return ChurnResponse{
		Ticket:         in.Ticket,
		Summary:        in.Summary,
		Sentiment:      in.Analysis,
		Account:        in.Account,
		RiskAssessment: risk,
	}, nil
}

// structured sends the named system prompt and user content to the
// workflow model and parses the reply into T.
func structured[T any](ctx context.Context, rt *runtime.Runtime, prompt, content string) (T, error) {
	var zero T

	model, err := rt.LLM(ConnectorModel)
	if err != nil {
		return zero, err
	}
	system, err := rt.Prompt(prompt)
	if err != nil {
		return zero, err
	}

	return llm.Parse[T](ctx, model, llm.Request{
		Messages: []llm.Message{llm.System(system), llm.User(content)},
	})
}
