package trivia

import (
	"context"
	"fmt"

	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/pkg/llm"
)

// CheckAnswers judges each answer against the question's reference answer.
// Questions without a reference answer are skipped.
func CheckAnswers(ctx context.Context, rt *runtime.Runtime, in AnswersResponse) (JudgmentsResponse, error) {
	model, err := rt.LLM(ConnectorModel)
	if err != nil {
		return JudgmentsResponse{}, err
	}
	system, err := rt.Prompt(PromptJudge)
	if err != nil {
		return JudgmentsResponse{}, err
	}

	judgments := make([]Judgment, 0, len(in.Answers))
	for _, a := range in.Answers {
		q := a.Question
		reference := q.Reference()
		if reference == "" {
			rt.Logger().Warn("question has no reference answer, skipping", "question_id", q.QuestionID)
			continue
		}

		content, err := rt.RenderPrompt(PromptCheck, struct {
			ID            string
			Question      string
			ReferenceText string
			Answer        string
			GivenAnswer   string
		}{q.QuestionID, q.QuestionText, q.ParagraphText, reference, a.Answer})
		if err != nil {
			return JudgmentsResponse{}, err
		}

		j, err := llm.Parse[Judgment](ctx, model, llm.Request{
			Messages: []llm.Message{llm.System(system), llm.User(content)},
		})
		if err != nil {
			return JudgmentsResponse{}, fmt.Errorf("judge question %s: %w", q.QuestionID, err)
		}
		judgments = append(judgments, j)
	}

	return JudgmentsResponse{Judgments: judgments}, nil
}
