package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/stmtreactor/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

type options struct {
	libraryPaths []string
	logFormat    string
	logLevel     string
	output       string
	target       string
	workers      int
	isolate      bool
	lenient      bool
	features     []string
	metricsPort  int
}

func newCommand(output io.Writer, opts *options, run func(args []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stmtreactor [flags] SOURCE_PATH...",
		Short: "Compile schema modules into an effective model.",
		Long: `stmtreactor - builds schema modules written in HCL or YAML into a fully
resolved effective model.

Each SOURCE_PATH is a document (.hcl, .yaml, .yml) or a directory searched
recursively for documents. Imports and includes that are not supplied are
looked up in the library paths.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args)
		},
	}
	cmd.SetOut(output)
	cmd.SetErr(output)

	f := cmd.Flags()
	f.StringSliceVarP(&opts.libraryPaths, "lib", "L", nil, "Directory searched for imported and included documents. Repeatable.")
	f.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	f.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	f.StringVarP(&opts.output, "output", "o", app.OutputText, "Model output format. Options: 'text', 'yaml' or 'json'.")
	f.StringVar(&opts.target, "target", "effective-model", "Phase to build to. Options: 'full-declaration' or 'effective-model'.")
	f.IntVar(&opts.workers, "workers", 8, "Maximum concurrent library fetches and isolated builds.")
	f.BoolVar(&opts.isolate, "isolate", false, "Build every supplied module as the root of its own build.")
	f.BoolVar(&opts.lenient, "lenient", false, "Skip extension statements whose extension is not defined.")
	f.StringArrayVar(&opts.features, "feature", nil, "Supported feature as NAMESPACE:NAME. Repeatable; without it every feature is supported.")
	f.IntVar(&opts.metricsPort, "metrics-port", 0, "Port for the /metrics and /health HTTP server. 0 is disabled.")
	return cmd
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		opts   options
		config *app.Config
	)
	cmd := newCommand(output, &opts, func(paths []string) error {
		if len(paths) == 0 {
			return nil
		}
		cfg, err := app.NewConfig(app.Config{
			SourcePaths:  paths,
			LibraryPaths: opts.libraryPaths,
			LogFormat:    strings.ToLower(opts.logFormat),
			LogLevel:     strings.ToLower(opts.logLevel),
			Output:       strings.ToLower(opts.output),
			TargetPhase:  opts.target,
			FetchWorkers: opts.workers,
			Isolate:      opts.isolate,
			Lenient:      opts.lenient,
			Features:     opts.features,
			MetricsPort:  opts.metricsPort,
		})
		if err != nil {
			return err
		}
		config = cfg
		return nil
	})
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if config == nil {
		// --help, or no source paths given.
		if helpRequested(cmd) {
			return nil, true, nil
		}
		slog.Debug("No source path provided, printing usage and exiting.")
		_ = cmd.Usage()
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "sources", config.SourcePaths)
	return config, false, nil
}

func helpRequested(cmd *cobra.Command) bool {
	help, err := cmd.Flags().GetBool("help")
	return err == nil && help
}
