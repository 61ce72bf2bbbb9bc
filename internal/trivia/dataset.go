package trivia

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/JaimeStill/greenhouse/internal/runtime"
	"github.com/JaimeStill/greenhouse/pkg/formatting"
	"github.com/JaimeStill/greenhouse/pkg/storage"
)

const maxLineSize = 4 << 20

var httpClient = &http.Client{Timeout: 2 * time.Minute}

// LoadDataset copies the dataset into the store unless it is already there.
func LoadDataset(ctx context.Context, rt *runtime.Runtime, in LoadInput) (LoadResponse, error) {
	store, err := rt.Store(ConnectorStore)
	if err != nil {
		return LoadResponse{}, err
	}
	resp := LoadResponse{Container: store.Container(), Key: DatasetKey}

	exists, err := store.Exists(ctx, DatasetKey)
	if err != nil {
		return LoadResponse{}, err
	}
	if exists {
		rt.Logger().Info("dataset already present", "key", DatasetKey)
		return resp, nil
	}

	data, err := download(ctx, in.DatasetURL)
	if err != nil {
		return LoadResponse{}, err
	}

	if err := store.EnsureContainer(ctx); err != nil {
		return LoadResponse{}, err
	}
	if err := store.Upload(ctx, DatasetKey, bytes.NewReader(data), "application/x-ndjson"); err != nil {
		return LoadResponse{}, err
	}

	resp.Loaded = true
	resp.Bytes = int64(len(data))
	rt.Logger().Info("dataset uploaded", "key", DatasetKey, "size", formatting.FormatBytes(resp.Bytes))
	return resp, nil
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dataset request: %w", err)
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download dataset: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download dataset: unexpected status %d", res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

// ReadQuestions loads every question of the stored dataset.
func ReadQuestions(ctx context.Context, store storage.System) ([]Question, error) {
	body, err := store.Download(ctx, DatasetKey)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	defer body.Close()

	return ParseQuestions(body)
}

// ParseQuestions decodes one question per non-blank JSONL line.
func ParseQuestions(r io.Reader) ([]Question, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var questions []Question
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var q Question
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", line, err)
		}
		questions = append(questions, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan dataset: %w", err)
	}
	return questions, nil
}

// Sample picks n questions without replacement. A nil seed draws a random one.
// When n exceeds the population every question is returned in shuffled order.
func Sample(questions []Question, n int, seed *uint64) []Question {
	var rng *rand.Rand
	if seed != nil {
		rng = rand.New(rand.NewPCG(*seed, *seed))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	n = min(n, len(questions))
	out := make([]Question, n)
	for i, j := range rng.Perm(len(questions))[:n] {
		out[i] = questions[j]
	}
	return out
}
