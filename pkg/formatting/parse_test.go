package formatting_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/greenhouse/pkg/formatting"
)

type sample struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    sample
		wantErr bool
	}{
		{"direct JSON", `{"name":"test","value":42}`, sample{"test", 42}, false},
		{"padded JSON", `  {"name":"padded","value":1}  `, sample{"padded", 1}, false},
		{"fenced JSON", "```json\n{\"name\":\"fenced\",\"value\":7}\n```", sample{"fenced", 7}, false},
		{"fence without language", "```\n{\"name\":\"bare\",\"value\":3}\n```", sample{"bare", 3}, false},
		{"fence with prose", "Result:\n```json\n{\"name\":\"wrapped\",\"value\":5}\n```\nDone.", sample{"wrapped", 5}, false},
		{"plain text", "no json here", sample{}, true},
		{"broken fence", "```json\n{not json}\n```", sample{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[sample](tt.input)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Fatalf("error = %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractBlock(t *testing.T) {
	block, ok := formatting.ExtractBlock("text\n```json\n{\"a\":1}\n```")
	if !ok {
		t.Fatal("expected block")
	}
	if block != `{"a":1}` {
		t.Errorf("block = %q", block)
	}

	if _, ok := formatting.ExtractBlock("no fence"); ok {
		t.Error("expected no block")
	}
}
