package sync

import (
	"fmt"
	"regexp"
	"strings"
)

// StatusLines marks every workflow, step and prompt that will be published.
func StatusLines(workflows []Workflow) []string {
	var lines []string
	for _, wf := range workflows {
		if wf.Updated {
			lines = append(lines, fmt.Sprintf("Workflow: %s ⚡", wf.Name))
		}
		for _, st := range wf.Steps {
			if st.Updated {
				lines = append(lines, fmt.Sprintf("  Step: %s ⚡", st.Name))
			}
			for _, p := range st.Prompts {
				if p.Updated {
					lines = append(lines, fmt.Sprintf("    Prompt: %s ⚡", p.Name))
				}
			}
		}
	}
	return lines
}

// SuccessMessage renders the markdown comment for a completed sync.
func SuccessMessage(r Result) string {
	var b strings.Builder
	b.WriteString("\n# ✅ Sync Complete\n")
	if r.Total() > 0 {
		b.WriteString("Successfully synced the following resources to Sandgarden:\n\n")
	}

	sections := []struct {
		title string
		names []string
	}{
		{"Workflows", r.Workflows},
		{"Steps", r.Steps},
		{"Prompts", r.Prompts},
	}
	for _, s := range sections {
		if len(s.names) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", s.title)
		for _, n := range s.names {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FailureMessage renders the markdown comment for a failed sync.
func FailureMessage(err error) string {
	return "# ❌ Sandgarden Sync Failed\n\n" +
		"Failed to sync to Sandgarden with the following error:\n\n" +
		"```\n" + err.Error() + "\n```"
}

var heading = regexp.MustCompile(`(?m)^#+\s+`)

// Plain strips markdown heading markers for console output.
func Plain(markdown string) string {
	return heading.ReplaceAllString(markdown, "")
}
