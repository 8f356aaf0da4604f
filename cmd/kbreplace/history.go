package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/kbreplace/internal/database"
	"github.com/nao1215/kbreplace/internal/kb"
	"github.com/nao1215/kbreplace/internal/model"
	"github.com/nao1215/kbreplace/internal/report"
)

// defaultHistoryLimit is the number of entries shown when --limit is not set.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [KB#######]",
		Short: "List lookups recorded with --save",
		Long: `History lists lookups previously recorded with --save, most recent first.

Give a KB identifier to show only lookups of that update.

Examples:
  # Show the last 20 lookups
  kbreplace history

  # Show every recorded lookup of one update as JSON
  kbreplace history --limit 0 --json KB5001234`,
		Args: validateHistoryArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of entries to show (0 = all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")

	return cmd
}

// validateHistoryArgs accepts at most one well formed KB identifier.
func validateHistoryArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		return &usageError{err: err}
	}
	for _, arg := range args {
		if _, err := kb.Validate(arg); err != nil {
			return &usageError{err: fmt.Errorf("%q: %w", arg, err)}
		}
	}
	return nil
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return &usageError{err: errors.New("--json and --markdown cannot be used together")}
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit < 0 {
		return &usageError{err: fmt.Errorf("invalid limit %d: must be non-negative", limit)}
	}

	opts := database.ListOptions{Limit: limit}
	if len(args) == 1 {
		opts.Number, _ = kb.ExtractNumber(args[0])
	}

	lookups, err := loadHistory(cmd, cfg.DBDir, opts)
	if err != nil {
		return err
	}

	format := outputFormat(cfg)
	if format == report.FormatText && len(lookups) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No lookups recorded.")
		return nil
	}

	return writeLookups(cmd.OutOrStdout(), format, lookups, false)
}

// loadHistory reads stored lookups. A missing database is an empty history.
func loadHistory(cmd *cobra.Command, dbDir string, opts database.ListOptions) ([]*model.Lookup, error) {
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() { _ = db.Close() }()

	records, err := db.ListLookups(cmd.Context(), opts)
	if err != nil {
		return nil, err
	}

	lookups := make([]*model.Lookup, len(records))
	for i, rec := range records {
		lookups[i] = rec.Lookup
	}
	return lookups, nil
}
