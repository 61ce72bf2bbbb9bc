// Package trivia implements the trivia challenge workflow: stage a question
// dataset in the object store, answer a random sample of questions with a
// model, and have a second pass judge each answer against its reference.
package trivia

import (
	"github.com/JaimeStill/greenhouse/internal/steps"
)

// Connector, object and prompt names used by the workflow.
const (
	ConnectorStore = "sandgarden-trivia-challenge"
	ConnectorModel = "trivia-openai"

	DatasetKey = "har_dataset.jsonl"
	DatasetURL = "https://raw.githubusercontent.com/google-research-datasets/cf_triviaqa/refs/heads/main/har_dataset.jsonl"

	PromptAnswer = "answer-trivia"
	PromptJudge  = "judge-system-prompt"
	PromptCheck  = "check-answers"
)

// Steps returns the workflow's steps in execution order.
func Steps() []steps.Step {
	return []steps.Step{
		{
			Name:        "load-trivia-dataset",
			Description: "Copy the trivia dataset into the object store when missing",
			Connectors:  []string{ConnectorStore},
			Handler:     steps.Typed(LoadDataset),
		},
		{
			Name:        "answer-questions",
			Description: "Answer a random sample of trivia questions",
			Connectors:  []string{ConnectorStore, ConnectorModel},
			Handler:     steps.Typed(AnswerQuestions),
		},
		{
			Name:        "check-answers",
			Description: "Judge each answer against the question's reference text",
			Connectors:  []string{ConnectorModel},
			Handler:     steps.Typed(CheckAnswers),
		},
	}
}
