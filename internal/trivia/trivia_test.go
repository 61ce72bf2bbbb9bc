package trivia_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/greenhouse/internal/config"
	"github.com/JaimeStill/greenhouse/internal/prompts"
	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/internal/steps"
	"github.com/JaimeStill/greenhouse/internal/trivia"
	"github.com/JaimeStill/greenhouse/pkg/llm"
	"github.com/JaimeStill/greenhouse/pkg/llm/llmtest"
	"github.com/JaimeStill/greenhouse/pkg/storage"
)

type memStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	types   map[string]string
	ensured bool
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Container() string { return "trivia" }

func (m *memStore) EnsureContainer(context.Context) error {
	m.ensured = true
	return nil
}

func (m *memStore) Upload(_ context.Context, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.blobs, key)
	return nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.blobs[key]
	return ok, nil
}

func newRuntime() *runtime.Runtime {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return runtime.New(&config.Config{}, prompts.New("", logger), logger)
}

func dataset(n int) []byte {
	var buf bytes.Buffer
	for i := range n {
		q := trivia.Question{
			QuestionID:    fmt.Sprintf("q%d", i),
			QuestionText:  fmt.Sprintf("question %d?", i),
			ParagraphText: fmt.Sprintf("The answer to question %d is %d.", i, i),
			Annotation: trivia.Annotation{Answer: []trivia.AnnotatedAnswer{
				{ParagraphReference: trivia.ParagraphReference{String: fmt.Sprint(i)}},
			}},
		}
		line, _ := json.Marshal(q)
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func TestLoadDataset(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write(dataset(3))
	}))
	defer srv.Close()

	store := newMemStore()
	rt := newRuntime()
	rt.Register(trivia.ConnectorStore, store)

	in := trivia.LoadInput{DatasetURL: srv.URL}
	resp, err := trivia.LoadDataset(context.Background(), rt, in)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if !resp.Loaded || resp.Key != trivia.DatasetKey || resp.Container != "trivia" {
		t.Errorf("response = %+v", resp)
	}
	if !store.ensured || store.types[trivia.DatasetKey] != "application/x-ndjson" {
		t.Errorf("upload not performed as expected: ensured=%v types=%v", store.ensured, store.types)
	}

	resp, err = trivia.LoadDataset(context.Background(), rt, in)
	if err != nil {
		t.Fatalf("LoadDataset (second): %v", err)
	}
	if resp.Loaded {
		t.Error("existing dataset should not be reloaded")
	}
	if hits != 1 {
		t.Errorf("dataset downloads = %d, want 1", hits)
	}
}

func TestLoadDatasetDownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := newMemStore()
	rt := newRuntime()
	rt.Register(trivia.ConnectorStore, store)

	if _, err := trivia.LoadDataset(context.Background(), rt, trivia.LoadInput{DatasetURL: srv.URL}); err == nil {
		t.Error("non-200 download should fail")
	}
	if len(store.blobs) != 0 {
		t.Error("nothing should be uploaded on failure")
	}
}

func TestLoadDatasetInputValidation(t *testing.T) {
	reg := steps.NewRegistry(nil)
	reg.Register(trivia.Steps()...)

	_, err := reg.Invoke(context.Background(), newRuntime(), "load-trivia-dataset", json.RawMessage(`{"dataset_url": "not a url"}`))
	if !errors.Is(err, steps.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestParseQuestions(t *testing.T) {
	input := string(dataset(2)) + "\n   \n"
	got, err := trivia.ParseQuestions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseQuestions: %v", err)
	}
	if len(got) != 2 || got[1].QuestionID != "q1" || got[1].Reference() != "1" {
		t.Errorf("questions = %+v", got)
	}

	if _, err := trivia.ParseQuestions(strings.NewReader("{broken\n")); err == nil {
		t.Error("malformed line should fail")
	}
}

func TestSample(t *testing.T) {
	questions, _ := trivia.ParseQuestions(bytes.NewReader(dataset(10)))
	seed := uint64(7)

	a := trivia.Sample(questions, 4, &seed)
	b := trivia.Sample(questions, 4, &seed)
	if len(a) != 4 {
		t.Fatalf("sample size = %d, want 4", len(a))
	}
	seen := map[string]bool{}
	for i := range a {
		if a[i].QuestionID != b[i].QuestionID {
			t.Errorf("seeded samples differ at %d: %s vs %s", i, a[i].QuestionID, b[i].QuestionID)
		}
		if seen[a[i].QuestionID] {
			t.Errorf("duplicate %s in sample", a[i].QuestionID)
		}
		seen[a[i].QuestionID] = true
	}

	if all := trivia.Sample(questions, 50, nil); len(all) != 10 {
		t.Errorf("oversized sample = %d, want 10", len(all))
	}
}

func TestAnswerQuestions(t *testing.T) {
	store := newMemStore()
	store.blobs[trivia.DatasetKey] = dataset(8)

	rt := newRuntime()
	rt.Register(trivia.ConnectorStore, store)
	rt.Register(trivia.ConnectorModel, llmtest.Func(func(_ context.Context, req llm.Request) (string, error) {
		content := req.Messages[0].Content
		start := strings.Index(content, "question ") + len("question ")
		end := strings.Index(content[start:], "?")
		return " answer " + content[start:start+end] + " ", nil
	}))

	seed := uint64(3)
	resp, err := trivia.AnswerQuestions(context.Background(), rt, trivia.AnswerInput{SampleSize: 5, Seed: &seed, Concurrency: 3})
	if err != nil {
		t.Fatalf("AnswerQuestions: %v", err)
	}
	if len(resp.Answers) != 5 {
		t.Fatalf("answers = %d, want 5", len(resp.Answers))
	}

	want := trivia.Sample(mustParse(t, store.blobs[trivia.DatasetKey]), 5, &seed)
	for i, a := range resp.Answers {
		if a.Question.QuestionID != want[i].QuestionID {
			t.Errorf("answer %d question = %s, want %s", i, a.Question.QuestionID, want[i].QuestionID)
		}
		if a.Answer != "answer "+strings.TrimPrefix(a.Question.QuestionID, "q") {
			t.Errorf("answer %d = %q for %s", i, a.Answer, a.Question.QuestionID)
		}
	}
}

func TestAnswerQuestionsDefaults(t *testing.T) {
	store := newMemStore()
	store.blobs[trivia.DatasetKey] = dataset(30)

	rt := newRuntime()
	rt.Register(trivia.ConnectorStore, store)
	rt.Register(trivia.ConnectorModel, llmtest.Func(func(context.Context, llm.Request) (string, error) {
		return "x", nil
	}))

	reg := steps.NewRegistry(nil)
	reg.Register(trivia.Steps()...)

	out, err := reg.Invoke(context.Background(), rt, "answer-questions", nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	var resp trivia.AnswersResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Answers) != 20 {
		t.Errorf("default sample = %d, want 20", len(resp.Answers))
	}
}

func TestAnswerQuestionsModelError(t *testing.T) {
	store := newMemStore()
	store.blobs[trivia.DatasetKey] = dataset(3)

	rt := newRuntime()
	rt.Register(trivia.ConnectorStore, store)
	rt.Register(trivia.ConnectorModel, llmtest.Func(func(context.Context, llm.Request) (string, error) {
		return "", errors.New("rate limited")
	}))

	if _, err := trivia.AnswerQuestions(context.Background(), rt, trivia.AnswerInput{SampleSize: 3, Concurrency: 1}); err == nil {
		t.Error("model failure should propagate")
	}
}

func TestCheckAnswers(t *testing.T) {
	questions := mustParse(t, dataset(2))
	unanswerable := trivia.Question{QuestionID: "q9", QuestionText: "unknown?"}

	rt := newRuntime()
	scripted := llmtest.Text(
		`{"question_id":"q0","correct":true,"explanation":"matches"}`,
		`{"question_id":"q1","correct":false,"explanation":"differs"}`,
	)
	rt.Register(trivia.ConnectorModel, scripted)

	resp, err := trivia.CheckAnswers(context.Background(), rt, trivia.AnswersResponse{Answers: []trivia.Answer{
		{Question: questions[0], Answer: "0"},
		{Question: unanswerable, Answer: "?"},
		{Question: questions[1], Answer: "7"},
	}})
	if err != nil {
		t.Fatalf("CheckAnswers: %v", err)
	}

	if len(resp.Judgments) != 2 {
		t.Fatalf("judgments = %d, want 2", len(resp.Judgments))
	}
	if !resp.Judgments[0].Correct || resp.Judgments[1].Correct {
		t.Errorf("judgments = %+v", resp.Judgments)
	}

	reqs := scripted.Requests()
	if len(reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(reqs))
	}
	user := reqs[1].Messages[1].Content
	for _, line := range []string{"ID: q1", "Correct Answer: 1", "Given Answer: 7", "Reference Text: The answer to question 1 is 1."} {
		if !strings.Contains(user, line) {
			t.Errorf("user content missing %q:\n%s", line, user)
		}
	}
	if !strings.Contains(reqs[0].Messages[0].Content, "reference text") {
		t.Errorf("system prompt = %q", reqs[0].Messages[0].Content)
	}
}

func mustParse(t *testing.T, data []byte) []trivia.Question {
	t.Helper()
	q, err := trivia.ParseQuestions(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseQuestions: %v", err)
	}
	return q
}
