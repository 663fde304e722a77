// Package main provides the CLI entry point for the anemoi-transform runtime.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecmwf/anemoi-transform-sub000/internal/cli"
	"github.com/ecmwf/anemoi-transform-sub000/internal/config"
	"github.com/ecmwf/anemoi-transform-sub000/internal/engine"
	"github.com/ecmwf/anemoi-transform-sub000/internal/logger"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/filters"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/registry"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/source"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitParseError      = 2
	ExitRuntimeError    = 3
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	logFormat string

	// Run command flags
	dryRun  bool
	reverse bool

	// Build information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitRuntimeError)
	}
}

// newRegistries builds the source and filter registries. This is the
// composition root: the registries are constructed here and passed to
// everything that creates transforms by name.
func newRegistries() (sources, filterReg *registry.Registry) {
	return registry.New("source", source.Register),
		registry.New("filter", filters.Register)
}

var rootCmd = &cobra.Command{
	Use:   "anemoi-transform",
	Short: "anemoi-transform - Reversible field transform pipelines",
	Long: `anemoi-transform runs declarative workflows over collections of labeled,
gridded fields: a source produces the fields, and a chain of filters derives
new variables, converts units, or reworks metadata. Reversible filters can
run backward to reconstruct their inputs.

Examples:
  # Validate a workflow file
  anemoi-transform validate workflow.yaml

  # Run a workflow
  anemoi-transform run workflow.yaml

  # Plan the run without moving fields
  anemoi-transform run --dry-run workflow.yaml

  # Undo a derivation by running the chain backward
  anemoi-transform run --reverse workflow.yaml`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		} else if quiet {
			level = slog.LevelError
		}
		format := logger.FormatJSON
		if logFormat == "human" {
			format = logger.FormatHuman
		}
		logger.SetLevelAndFormat(level, format)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <workflow-file>",
	Short: "Validate a workflow configuration file",
	Long: `Validate a workflow configuration file against the schema.

Supports both JSON and YAML formats. The format is auto-detected
based on file extension (.json, .yaml, .yml) or content.

Exit codes:
  0 - Configuration is valid
  1 - Validation errors (schema violations)
  2 - Parse errors (invalid JSON/YAML syntax)`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

var runCmd = &cobra.Command{
	Use:   "run <workflow-file>",
	Short: "Run a workflow from a configuration file",
	Long: `Run the workflow defined in the configuration file.

The file is first validated against the schema; an invalid workflow is
never executed.

Flags:
  --dry-run   Build the chain and report the patched upstream request
              and planned stages without moving fields
  --reverse   Run the filter chain backward over the source output

Exit codes:
  0 - Workflow executed successfully
  1 - Validation errors
  2 - Parse errors
  3 - Runtime errors`,
	Args: cobra.ExactArgs(1),
	Run:  runWorkflow,
}

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the available sources and filters",
	Long:  "List the registered source and filter names, one catalog per registry.",
	Run:   runCatalog,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version, commit hash, and build date information.",
	Run:   runVersion,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log output format (json|human)")

	// Run command flags
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the run without moving fields")
	runCmd.Flags().BoolVar(&reverse, "reverse", false, "Run the filter chain backward")

	// Add commands
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(filtersCmd)
	rootCmd.AddCommand(versionCmd)
}

func runValidate(_ *cobra.Command, args []string) {
	path := args[0]

	if !quiet {
		fmt.Printf("Validating workflow: %s\n", path)
	}

	wf, result := config.Load(path)
	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(result.ParseErrors, verbose)
		os.Exit(ExitParseError)
	}
	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(result.ValidationErrors, verbose, quiet)
		os.Exit(ExitValidationError)
	}

	if !quiet {
		fmt.Printf("✓ Workflow is valid (format: %s)\n", result.Format)
		if verbose {
			cli.PrintWorkflowSummary(wf)
		}
	}
	os.Exit(ExitSuccess)
}

func runWorkflow(cmd *cobra.Command, args []string) {
	path := args[0]

	if !quiet {
		fmt.Printf("Loading workflow: %s\n", path)
	}

	wf, result := config.Load(path)
	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(result.ParseErrors, verbose)
		os.Exit(ExitParseError)
	}
	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(result.ValidationErrors, verbose, quiet)
		os.Exit(ExitValidationError)
	}

	if !quiet {
		fmt.Printf("✓ Workflow loaded successfully (format: %s)\n", result.Format)
		if verbose {
			cli.PrintWorkflowSummary(wf)
		}
	}

	sources, filterReg := newRegistries()
	executor := engine.New(sources, filterReg)

	if !quiet {
		switch {
		case dryRun:
			fmt.Println("Planning workflow (dry-run mode - no fields will be moved)...")
		case reverse:
			fmt.Println("Executing workflow backward...")
		default:
			fmt.Println("Executing workflow...")
		}
	}

	execResult, fields, err := executor.Execute(cmd.Context(), wf, engine.Options{
		DryRun:  dryRun,
		Reverse: reverse,
	})

	cli.PrintExecutionResult(execResult, fields, err, cli.OutputOptions{
		Verbose: verbose,
		Quiet:   quiet,
	})

	if err != nil {
		os.Exit(ExitRuntimeError)
	}
	os.Exit(ExitSuccess)
}

func runCatalog(_ *cobra.Command, _ []string) {
	sources, filterReg := newRegistries()

	sourceNames, err := sources.Names()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to list sources: %v\n", err)
		os.Exit(ExitRuntimeError)
	}
	filterNames, err := filterReg.Names()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to list filters: %v\n", err)
		os.Exit(ExitRuntimeError)
	}

	cli.PrintCatalog("Sources", sourceNames)
	fmt.Println()
	cli.PrintCatalog("Filters", filterNames)
	os.Exit(ExitSuccess)
}

func runVersion(_ *cobra.Command, _ []string) {
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Commit: %s\n", commit)
	fmt.Printf("Build Date: %s\n", buildDate)
}
