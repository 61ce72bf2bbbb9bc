package trivia

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/pkg/llm"
)

// AnswerQuestions samples the stored dataset and answers each question.
// Answers keep the sample order.
func AnswerQuestions(ctx context.Context, rt *runtime.Runtime, in AnswerInput) (AnswersResponse, error) {
	store, err := rt.Store(ConnectorStore)
	if err != nil {
		return AnswersResponse{}, err
	}
	model, err := rt.LLM(ConnectorModel)
	if err != nil {
		return AnswersResponse{}, err
	}

	questions, err := ReadQuestions(ctx, store)
	if err != nil {
		return AnswersResponse{}, err
	}
	sample := Sample(questions, in.SampleSize, in.Seed)

	answers := make([]Answer, len(sample))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.Concurrency)

	for i, q := range sample {
		g.Go(func() error {
			content, err := rt.RenderPrompt(PromptAnswer, struct {
				Question string
				Text     string
			}{q.QuestionText, q.ParagraphText})
			if err != nil {
				return err
			}

			reply, err := llm.Text(gctx, model, llm.Request{
				Messages: []llm.Message{llm.User(content)},
			})
			if err != nil {
				return fmt.Errorf("answer question %s: %w", q.QuestionID, err)
			}

			answers[i] = Answer{Question: q, Answer: reply}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AnswersResponse{}, err
	}

	rt.Logger().Info("questions answered", "count", len(answers), "population", len(questions))
	return AnswersResponse{Answers: answers}, nil
}
