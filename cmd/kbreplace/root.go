package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/kbreplace/internal/catalog"
	"github.com/nao1215/kbreplace/internal/config"
	"github.com/nao1215/kbreplace/internal/database"
	"github.com/nao1215/kbreplace/internal/kb"
	kblog "github.com/nao1215/kbreplace/internal/log"
	"github.com/nao1215/kbreplace/internal/model"
	"github.com/nao1215/kbreplace/internal/pipeline"
	"github.com/nao1215/kbreplace/internal/report"
	"github.com/nao1215/kbreplace/internal/transport"
)

// Process exit codes.
const (
	exitOK = 0
	// exitFailure covers HTTP status, transport and other runtime errors.
	exitFailure = 1
	// exitUsage covers invalid arguments, flags and configuration.
	exitUsage = 2
	// exitNotFound covers catalog pages that lack the expected entries.
	exitNotFound = 3
)

// usageError marks an error caused by how the command was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// run executes the CLI with args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	printError(stdout, stderr, err)
	return exitCode(err)
}

// printError reports err to the user. HTTP status failures go to stdout
// as "HTTP Error: <code>", a blank line and "URL: <url>".
func printError(stdout, stderr io.Writer, err error) {
	var statusErr *catalog.StatusError
	if errors.As(err, &statusErr) {
		fmt.Fprintf(stdout, "HTTP Error: %d\n\nURL: %s\n", statusErr.StatusCode, kblog.RedactUserinfo(statusErr.URL))
		return
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(stderr, "Run 'kbreplace --help' for usage.")
	}
}

// exitCode maps err to a process exit code.
func exitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ue), errors.Is(err, transport.ErrInvalidProxyAddress):
		return exitUsage
	case errors.Is(err, catalog.ErrRedirectNotFound),
		errors.Is(err, catalog.ErrNoCumulativeUpdate),
		errors.Is(err, catalog.ErrMalformedEntry):
		return exitNotFound
	default:
		return exitFailure
	}
}

// NewRootCmd creates the root command for kbreplace.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kbreplace [flags] KB#######...",
		Short: "Find the cumulative update a Windows KB supersedes",
		Long: `kbreplace looks up a Windows update in the Microsoft Update Catalog and
prints the cumulative update it replaces.

For each KB identifier it fetches the catalog search page, follows the
first listed product to its package details and reports the earliest
cumulative update listed there.

Examples:
  # Resolve one update
  kbreplace KB5001234

  # Resolve several updates, two at a time, as JSON
  kbreplace -b 2 --json KB5001234 KB5002345 KB5003456

  # Route catalog requests through a SOCKS5 proxy and record the result
  kbreplace -x 127.0.0.1:1080 --save KB5001234

Exit status is 0 on success, 1 on HTTP or network failure, 2 on invalid
arguments and 3 when the catalog has no matching entries.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          validateTargets,
		RunE:          runLookupCmd,
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .kbreplace in current or home directory)")

	// Request flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each catalog request")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address for catalog requests ([user:password@]host:port)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of KB identifiers resolved concurrently")
	cmd.Flags().Float64P("rate", "r", config.DefaultRateLimit,
		"Maximum catalog requests per second (0 = unlimited)")

	// Output flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().BoolP("save", "s", false,
		"Record successful lookups in the history database")

	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// validateTargets rejects malformed KB identifiers before any request is made.
func validateTargets(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &usageError{err: config.ErrNoTarget}
	}
	for _, arg := range args {
		if _, err := kb.Validate(arg); err != nil {
			return &usageError{err: fmt.Errorf("%q: %w", arg, err)}
		}
	}
	return nil
}

// runLookupCmd resolves every KB argument and prints the results.
func runLookupCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return &usageError{err: fmt.Errorf("configuration error: %w", err)}
	}

	logger := kblog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)

	client, err := newCatalogClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	lookups, err := resolve(ctx, cfg, client, logger)
	if err != nil {
		return err
	}

	if cfg.SaveToDB {
		if err := saveLookups(ctx, cfg.DBDir, lookups); err != nil {
			return err
		}
		logger.Debug("saved lookups", "count", len(lookups), "dir", cfg.DBDir)
	}

	return writeLookups(cmd.OutOrStdout(), outputFormat(cfg), lookups, len(args) == 1)
}

// newCatalogClient builds the catalog client described by cfg.
func newCatalogClient(cfg *config.Config, logger *slog.Logger) (*catalog.Client, error) {
	httpClient, err := transport.NewHTTPClient(transport.Options{
		Timeout:      cfg.Timeout,
		ProxyAddress: cfg.ProxyAddress,
		UserAgent:    cfg.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	if cfg.ProxyAddress != "" {
		logger.Debug("using SOCKS5 proxy", "proxy", cfg.ProxyAddress)
	}

	return catalog.NewClient(httpClient,
		catalog.WithSearchURL(cfg.SearchURL),
		catalog.WithDetailURL(cfg.DetailURL),
		catalog.WithMaxBodySize(cfg.MaxBodySize),
		catalog.WithRateLimit(cfg.RateLimit),
		catalog.WithLogger(logger),
	), nil
}

// resolve runs one lookup per target. A single target runs inline; several
// go through the batch processor.
func resolve(ctx context.Context, cfg *config.Config, client *catalog.Client, logger *slog.Logger) ([]*model.Lookup, error) {
	if len(cfg.Targets) == 1 {
		input := cfg.Targets[0]
		lookup, err := pipeline.Resolve(ctx, client, input, logger)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", input, err)
		}
		return []*model.Lookup{lookup}, nil
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline { return pipeline.NewLookupPipeline(client, logger) },
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)
	return bp.ProcessBatch(ctx, cfg.Targets)
}

// saveLookups records lookups in the history database under dbDir.
func saveLookups(ctx context.Context, dbDir string, lookups []*model.Lookup) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() { _ = db.Close() }()

	for _, lookup := range lookups {
		if _, err := db.InsertLookup(ctx, lookup); err != nil {
			return err
		}
	}
	return nil
}

// outputFormat returns the report format selected in cfg.
func outputFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

// writeLookups prints lookups. single selects the one-object form for JSON.
func writeLookups(w io.Writer, format report.Format, lookups []*model.Lookup, single bool) error {
	writer := report.NewWriter(format, w)
	if single && len(lookups) == 1 {
		_, err := writer.Write(lookups[0])
		return err
	}
	_, err := writer.WriteAll(lookups)
	return err
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig layers defaults, the configuration file and explicitly set
// flags, in that order. Flags a command does not define are skipped.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Targets = args
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath == "" && cfg.ConfigFilePath != "" {
		return nil, &usageError{err: fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)}
	}
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("rate") {
		if cfg.RateLimit, err = flags.GetFloat64("rate"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("json") != nil {
		if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("markdown") != nil {
		if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("save") != nil {
		if cfg.SaveToDB, err = flags.GetBool("save"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
