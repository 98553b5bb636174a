package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mdflow"
	"mdflow/internal/logging"
)

var (
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mdflow",
	Short: "mdflow - markdown-flow document toolkit",
	Long: `mdflow parses markdown-flow documents: blocks, interaction
directives, variables, and streamed JSON records.

Useful for inspecting how a document splits and how a model response
decodes, without calling any model.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.SetLogger(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

// parseCmd splits a document file into blocks.
var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Split a document into blocks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		blocks := mdflow.ParseDocument(string(data))
		out := make([]map[string]any, 0, len(blocks))
		for _, b := range blocks {
			entry := map[string]any{
				"index":   b.Index,
				"type":    b.Type.String(),
				"content": b.Content,
			}
			if len(b.Variables) > 0 {
				entry["variables"] = b.Variables
			}
			out = append(out, entry)
		}
		return emit(cmd.OutOrStdout(), out)
	},
}

// directiveCmd parses a single interaction directive.
var directiveCmd = &cobra.Command{
	Use:   "directive <text>",
	Short: "Parse an interaction directive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := mdflow.ParseDirective(args[0])
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), map[string]any{
			"kind":     d.Kind.String(),
			"variable": d.Variable,
			"options":  d.Options,
			"prompt":   d.Prompt,
		})
	},
}

// varsCmd lists the variables a document references.
var varsCmd = &cobra.Command{
	Use:   "vars <file>",
	Short: "List the variables a document references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), mdflow.ExtractVariables(string(data)))
	},
}

// extractCmd decodes streamed records from stdin, as a model response
// replay.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract and validate JSON records from stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := io.ReadAll(bufio.NewReader(cmd.InOrStdin()))
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, raw := range mdflow.ExtractObjects(string(data)) {
			step, err := mdflow.DecodeStep(raw)
			if err != nil {
				return fmt.Errorf("record %q: %w", raw, err)
			}
			if err := mdflow.ValidateStep(step); err != nil {
				fmt.Fprintf(w, "INVALID %v\n", err)
				continue
			}
			if err := emit(w, step); err != nil {
				return err
			}
		}
		return nil
	},
}

func emit(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(parseCmd, directiveCmd, varsCmd, extractCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
