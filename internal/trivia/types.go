package trivia

// Question is one record of the JSONL dataset.
type Question struct {
	QuestionID    string     `json:"question_id"`
	QuestionText  string     `json:"question_text"`
	ParagraphText string     `json:"paragraph_text"`
	Annotation    Annotation `json:"annotation"`
}

// Annotation holds the reference answers for a question.
type Annotation struct {
	Answer []AnnotatedAnswer `json:"answer"`
}

// AnnotatedAnswer points at the span of the paragraph that answers the question.
type AnnotatedAnswer struct {
	ParagraphReference ParagraphReference `json:"paragraph_reference"`
}

// ParagraphReference is the answering span.
type ParagraphReference struct {
	String string `json:"string"`
}

// Reference returns the first annotated answer, or "" when there is none.
func (q Question) Reference() string {
	if len(q.Annotation.Answer) == 0 {
		return ""
	}
	return q.Annotation.Answer[0].ParagraphReference.String
}

// LoadInput overrides the dataset source.
type LoadInput struct {
	DatasetURL string `json:"dataset_url" validate:"omitempty,url"`
}

func (l *LoadInput) SetDefaults() {
	if l.DatasetURL == "" {
		l.DatasetURL = DatasetURL
	}
}

// LoadResponse reports where the dataset lives and whether it was copied.
type LoadResponse struct {
	Container string `json:"container"`
	Key       string `json:"key"`
	Loaded    bool   `json:"loaded"`
	Bytes     int64  `json:"bytes,omitempty"`
}

// AnswerInput controls sampling. Seed makes the sample reproducible.
type AnswerInput struct {
	SampleSize  int     `json:"sample_size" validate:"gte=0,lte=500"`
	Seed        *uint64 `json:"seed"`
	Concurrency int     `json:"concurrency" validate:"gte=0,lte=32"`
}

func (a *AnswerInput) SetDefaults() {
	if a.SampleSize == 0 {
		a.SampleSize = 20
	}
	if a.Concurrency == 0 {
		a.Concurrency = 4
	}
}

// Answer pairs a question with the model's reply.
type Answer struct {
	Question Question `json:"question"`
	Answer   string   `json:"answer"`
}

// AnswersResponse is the output of answer-questions and the input of check-answers.
type AnswersResponse struct {
	Answers []Answer `json:"answers"`
}

// Judgment is the evaluator's verdict on one answer.
type Judgment struct {
	QuestionID  string `json:"question_id"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// JudgmentsResponse lists the verdicts in answer order.
type JudgmentsResponse struct {
	Judgments []Judgment `json:"judgments"`
}
