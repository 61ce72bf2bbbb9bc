package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/greenhouse/internal/infrastructure"
)

func newInvokeCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "invoke <step>",
		Short: "Run one step and print its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(inputPath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			infra, err := infrastructure.New(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer infra.Runtime.Close()

			out, err := infra.Steps.Invoke(cmd.Context(), infra.Runtime, args[0], input)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input JSON file, or - for stdin")
	return cmd
}

func newStepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List registered steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			infra, err := infrastructure.New(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer infra.Runtime.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, s := range infra.Steps.List() {
				fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.Description)
			}
			return tw.Flush()
		},
	}
}

// readInput returns the step input named by path. An empty path means no
// input; "-" reads stdin.
func readInput(path string, stdin io.Reader) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return nil, nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if len(bytes.TrimSpace(data)) > 0 && !json.Valid(data) {
		return nil, fmt.Errorf("input from %q is not valid JSON", path)
	}
	return data, nil
}

func writeOutput(w io.Writer, out json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, out, "", "  "); err != nil {
		_, err = w.Write(out)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
