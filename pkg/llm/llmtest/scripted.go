// Package llmtest provides a deterministic llm.Client for handler tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/JaimeStill/greenhouse/pkg/llm"
)

// Reply configures one completion in a scripted sequence.
type Reply struct {
	Content string
	Err     error
}

// Scripted returns queued replies in order and records every request.
type Scripted struct {
	mu       sync.Mutex
	index    int
	replies  []Reply
	requests []llm.Request
}

var _ llm.Client = (*Scripted)(nil)

// New creates a Scripted client from replies.
func New(replies ...Reply) *Scripted {
	cloned := make([]Reply, len(replies))
	copy(cloned, replies)
	return &Scripted{replies: cloned}
}

// Text creates a Scripted client whose replies are the given contents.
func Text(contents ...string) *Scripted {
	replies := make([]Reply, len(contents))
	for i, c := range contents {
		replies[i] = Reply{Content: c}
	}
	return New(replies...)
}

func (s *Scripted) Model() string {
	return "scripted"
}

func (s *Scripted) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)

	if s.index >= len(s.replies) {
		return nil, fmt.Errorf("script exhausted at request %d", s.index+1)
	}
	current := s.replies[s.index]
	s.index++

	if current.Err != nil {
		return nil, current.Err
	}
	return &llm.Response{Model: s.Model(), Content: current.Content, FinishReason: "stop"}, nil
}

// Requests returns a copy of every request received so far.
func (s *Scripted) Requests() []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]llm.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Func adapts a function to llm.Client for tests whose replies depend on the request.
type Func func(ctx context.Context, req llm.Request) (string, error)

func (f Func) Model() string {
	return "func"
}

func (f Func) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	content, err := f(ctx, req)
	if err != nil {
		return nil, err
	}
	return &llm.Response{Model: f.Model(), Content: content, FinishReason: "stop"}, nil
}
