/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sony-level/step-builder/internal/guard"
	"github.com/sony-level/step-builder/internal/response"
)

var parseJSON bool

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Extract file blocks from a saved response without writing",
	Long: `Sanitize a captured backend response, extract its file blocks and show
the write decision for each one. Nothing is written.

Reads standard input when no file (or "-") is given.

Examples:
  builder parse saved.txt
  ollama run qwen3-coder:480b-cloud < prompt.txt | builder parse
  builder parse saved.txt --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := "-"
		if len(args) > 0 {
			source = args[0]
		}
		return executeParse(cmd, source)
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Print proposals as JSON")
	rootCmd.AddCommand(parseCmd)
}

// parsedBlock is the JSON view of one proposal and its decision
type parsedBlock struct {
	response.FileProposal
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func executeParse(cmd *cobra.Command, source string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	raw, err := readSource(cmd, source)
	if err != nil {
		return err
	}

	g, err := guard.New(cfg.Project.Policy(), afero.NewMemMapFs(), guard.WithDryRun(true), guard.WithLogger(logger))
	if err != nil {
		return err
	}

	parsed := response.Parse(response.Sanitize(raw))
	out := cmd.OutOrStdout()

	if parseJSON {
		blocks := make([]parsedBlock, 0, len(parsed.Proposals))
		for _, p := range parsed.Proposals {
			d := g.Check(p.Path)
			blocks = append(blocks, parsedBlock{FileProposal: p, Allowed: d.Allowed, Reason: string(d.Reason)})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(blocks)
	}

	if parsed.Empty() {
		fmt.Fprintln(out, emptyParseMessage(parsed))
		return nil
	}
	for _, p := range parsed.Proposals {
		renderDecision(out, g.Check(p.Path), faintStyle.Render(fmt.Sprintf(" %d bytes", len(p.Content))))
	}
	for _, p := range parsed.Discarded {
		fmt.Fprintln(out, faintStyle.Render("empty "+p))
	}
	return nil
}

// emptyParseMessage explains an empty parse result
func emptyParseMessage(parsed *response.ParseResult) string {
	if n := len(parsed.Discarded); n > 0 {
		return fmt.Sprintf("No file blocks with content (%d empty).", n)
	}
	return "No file blocks found."
}

// readSource reads a file, or standard input for "-"
func readSource(cmd *cobra.Command, source string) (string, error) {
	if source == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", source, err)
	}
	return string(data), nil
}
