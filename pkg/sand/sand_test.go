package sand_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/greenhouse/pkg/sand"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	result sand.Result
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (sand.Result, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.result, f.err
}

func newClient(runner sand.Runner, dryRun bool) *sand.Client {
	return sand.New(sand.Config{
		Path:   "sand",
		DryRun: dryRun,
		Runner: runner,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestCreatePrompt(t *testing.T) {
	runner := &fakeRunner{result: sand.Result{Stdout: []byte(`{"version": 3}`)}}

	published, err := newClient(runner, false).CreatePrompt(context.Background(), "summarize", "Summarize this.")
	if err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	if published.Version != 3 {
		t.Errorf("version = %d, want 3", published.Version)
	}

	want := []string{"prompts", "create", "--content", "Summarize this.", "--name", "summarize", "--json"}
	if len(runner.calls) != 1 || !slices.Equal(runner.calls[0].args, want) {
		t.Errorf("args = %v, want %v", runner.calls, want)
	}
	if runner.calls[0].name != "sand" {
		t.Errorf("command = %q", runner.calls[0].name)
	}
}

func TestPushStep(t *testing.T) {
	runner := &fakeRunner{result: sand.Result{Stdout: []byte(`{"version": 5}`)}}

	_, err := newClient(runner, false).PushStep(context.Background(), sand.StepPush{
		Name:       "first-step",
		File:       "workflows/wf/steps/01_first-step",
		Tag:        "main",
		Prompts:    []sand.PromptRef{{Name: "p1", Version: 2}},
		Connectors: []string{"openai"},
	})
	if err != nil {
		t.Fatalf("PushStep: %v", err)
	}

	want := []string{
		"steps", "push", "docker",
		"--name", "first-step",
		"--description", "Updated via GitHub sync",
		"--file", "workflows/wf/steps/01_first-step",
		"--sync",
		"--tag", "main",
		"--json",
		"--prompt", "p1:2",
		"--connector", "openai",
	}
	if !slices.Equal(runner.calls[0].args, want) {
		t.Errorf("args = %v\nwant %v", runner.calls[0].args, want)
	}
}

func TestPushWorkflow(t *testing.T) {
	runner := &fakeRunner{result: sand.Result{Stdout: []byte(`{"version": 1}`)}}

	stages := []map[string]any{{"name": "a", "step": "a:1"}}
	if _, err := newClient(runner, false).PushWorkflow(context.Background(), "wf", stages, "v1"); err != nil {
		t.Fatalf("PushWorkflow: %v", err)
	}

	args := runner.calls[0].args
	if args[0] != "workflows" || args[1] != "push" {
		t.Fatalf("args = %v", args)
	}
	idx := slices.Index(args, "--stages")
	if idx < 0 || args[idx+1] != `[{"name":"a","step":"a:1"}]` {
		t.Errorf("stages arg = %v", args)
	}
	if args[len(args)-1] != "--json" || !slices.Contains(args, "v1") {
		t.Errorf("args = %v", args)
	}
}

func TestDryRun(t *testing.T) {
	runner := &fakeRunner{}

	published, err := newClient(runner, true).CreatePrompt(context.Background(), "p", "c")
	if err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	if published.Version != 1 || !published.DryRun {
		t.Errorf("published = %+v, want dry run version 1", published)
	}
	if len(runner.calls) != 0 {
		t.Errorf("runner called %d times during dry run", len(runner.calls))
	}
}

func TestMutationFailures(t *testing.T) {
	tests := []struct {
		name    string
		result  sand.Result
		wantErr error
	}{
		{"nonzero exit", sand.Result{ExitCode: 1, Stderr: []byte("boom")}, sand.ErrCommandFailed},
		{"invalid json", sand.Result{Stdout: []byte("Invalid JSON")}, sand.ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: tt.result}
			_, err := newClient(runner, false).CreatePrompt(context.Background(), "p", "c")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLatest(t *testing.T) {
	tests := []struct {
		name        string
		result      sand.Result
		wantVersion int
		wantNil     bool
	}{
		{
			name:        "highest version",
			result:      sand.Result{Stdout: []byte(`{"prompts":[{"name":"p","version":1,"content":"old"},{"name":"p","version":4,"content":"new"},{"name":"p","version":2}]}`)},
			wantVersion: 4,
		},
		{"empty listing", sand.Result{Stdout: []byte(`{"prompts":[]}`)}, 0, true},
		{"list output", sand.Result{Stdout: []byte(`[]`)}, 0, true},
		{"nonzero exit", sand.Result{ExitCode: 2}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: tt.result}
			got, err := newClient(runner, false).Latest(context.Background(), sand.Prompts, "p")
			if err != nil {
				t.Fatalf("Latest: %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Errorf("got %+v, want nil", got)
				}
				return
			}
			if got == nil || got.Version != tt.wantVersion {
				t.Fatalf("got %+v, want version %d", got, tt.wantVersion)
			}
			if got.Content != "new" {
				t.Errorf("content = %q", got.Content)
			}

			want := []string{"prompts", "list", "--name", "p", "--json"}
			if !slices.Equal(runner.calls[0].args, want) {
				t.Errorf("args = %v", runner.calls[0].args)
			}
		})
	}
}

func TestLatestInvalidKind(t *testing.T) {
	_, err := newClient(&fakeRunner{}, false).Latest(context.Background(), sand.Kind("invalid"), "x")
	if !errors.Is(err, sand.ErrInvalidKind) {
		t.Errorf("error = %v, want ErrInvalidKind", err)
	}
}

func TestCommandPath(t *testing.T) {
	t.Setenv(sand.EnvCLIPath, "")
	if got := sand.CommandPath(); got != "sand" {
		t.Errorf("CommandPath() = %q, want sand", got)
	}

	t.Setenv(sand.EnvCLIPath, "/opt/bin/sand")
	if got := sand.CommandPath(); got != "/opt/bin/sand" {
		t.Errorf("CommandPath() = %q", got)
	}
}

func TestDownload(t *testing.T) {
	var requested string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		io.WriteString(w, "#!/bin/sh\necho sand\n")
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := sand.Download(context.Background(), srv.Client(), srv.URL, dir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	if want := "/sand_" + runtime.GOOS + "_" + runtime.GOARCH; requested != want {
		t.Errorf("requested %q, want %q", requested, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "echo sand") {
		t.Errorf("content = %q", data)
	}
}

func TestAssetURL(t *testing.T) {
	if got := sand.AssetURL("", "linux", "amd64"); got != sand.AssetBaseURL+"/sand_linux_amd64" {
		t.Errorf("AssetURL = %q", got)
	}
}
