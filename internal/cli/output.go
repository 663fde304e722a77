// Package cli provides output formatting for the command-line tool: execution
// result summaries and parse/validation error listings.
package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/workflow"
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
}

// PrintExecutionResult displays the outcome of one workflow run. The fields
// are the run's final collection; they are listed only in verbose mode.
func PrintExecutionResult(result *workflow.ExecutionResult, fields field.List, err error, opts OutputOptions) {
	if result == nil {
		fmt.Fprintln(os.Stderr, "✗ No execution result available")
		return
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Workflow execution failed")
		if result.Error != nil {
			if result.Error.Stage != "" {
				fmt.Fprintf(os.Stderr, "  Stage: %s\n", result.Error.Stage)
			}
			fmt.Fprintf(os.Stderr, "  Code: %s\n", result.Error.Code)
			fmt.Fprintf(os.Stderr, "  Error: %s\n", result.Error.Message)
		}
		return
	}

	if opts.Quiet {
		return
	}

	if result.DryRun {
		printDryRunPlan(result)
		return
	}

	fmt.Println("✓ Workflow executed successfully")
	fmt.Printf("  Status: %s\n", result.Status)
	if result.Reversed {
		fmt.Println("  Direction: backward")
	}
	fmt.Printf("  Fields in: %d\n", result.FieldsIn)
	fmt.Printf("  Fields out: %d\n", result.FieldsOut)

	if opts.Verbose {
		fmt.Printf("  Duration: %v\n", result.CompletedAt.Sub(result.StartedAt))
		printStageTimings(result.Stages)
		printFields(fields)
	}
}

// printDryRunPlan displays the planned stages and the patched upstream
// request without any field counts.
func printDryRunPlan(result *workflow.ExecutionResult) {
	fmt.Println("✓ Dry run: workflow builds cleanly")
	fmt.Println("  Planned stages:")
	for i, name := range result.PlannedStages {
		fmt.Printf("    %d. %s\n", i+1, name)
	}
	printRequest(result.PatchedRequest)
	fmt.Println()
	fmt.Println("No fields were moved (dry-run mode)")
}

// printRequest prints the request entries with sorted keys.
func printRequest(req transform.Request) {
	if len(req) == 0 {
		fmt.Println("  Upstream request: (empty)")
		return
	}
	keys := make([]string, 0, len(req))
	for k := range req {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Println("  Upstream request:")
	for _, k := range keys {
		fmt.Printf("    %s: %s\n", k, strings.Join(req[k], ", "))
	}
}

func printStageTimings(stages []workflow.StageTiming) {
	if len(stages) == 0 {
		return
	}
	fmt.Println("  Stages:")
	for i, s := range stages {
		fmt.Printf("    %d. %s (%s): %d fields, %v\n", i+1, s.Name, s.Kind, s.FieldsOut, s.Duration)
	}
}

func printFields(fields field.List) {
	if len(fields) == 0 {
		return
	}
	fmt.Println("  Output fields:")
	for _, f := range fields {
		fmt.Printf("    %s\n", f)
	}
}

// PrintWorkflowSummary prints the workflow name and description.
func PrintWorkflowSummary(wf *workflow.Workflow) {
	if wf == nil {
		return
	}
	fmt.Printf("  Workflow: %s\n", wf.Name)
	if wf.Description != "" {
		fmt.Printf("  Description: %s\n", wf.Description)
	}
	fmt.Printf("  Source: %s\n", wf.Source.Type)
	fmt.Printf("  Filters: %d\n", len(wf.Filters))
}

// PrintCatalog lists the registered names of one registry kind.
func PrintCatalog(kind string, names []string) {
	fmt.Printf("%s (%d):\n", kind, len(names))
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
}
