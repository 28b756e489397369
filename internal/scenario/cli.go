package scenario

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/navguard/pkg/logger"
)

// SetupLogging initializes the global logger, optionally teeing to logFile.
func SetupLogging(logFile string, verbose bool) error {
	if err := logger.Init(logger.WithFile(logFile, 0)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return fmt.Errorf("failed to set log level: %w", err)
		}
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return nil
}

// PrintReport writes a one-line summary per result followed by totals.
func PrintReport(w io.Writer, results []Result) {
	passed := 0
	for i := range results {
		r := &results[i]
		status := "FAIL"
		if r.Passed() {
			status = "PASS"
			passed++
		}
		fmt.Fprintf(w, "%-4s %-20s ticks=%-3d alerts=%-3d simulated=%s\n", status, r.Name, r.Ticks, len(r.Alerts), r.Simulated)
		for _, g := range r.Got {
			fmt.Fprintf(w, "       %s\n", g)
		}
		if r.Err != nil {
			fmt.Fprintf(w, "       %v\n", r.Err)
		}
	}
	fmt.Fprintf(w, "\n%d/%d scenarios passed\n", passed, len(results))
}

// ShowHelp prints usage information for the scenario tool.
func ShowHelp() {
	os.Stdout.WriteString(`NavGuard Scenario Runner
========================

Replays scripted flights through the alerting engines on a simulated clock
and checks the alerts they raise.

Usage:
  go run cmd/scenario/main.go [options]

Options:
  -name string
        Built-in scenario to run (default: all)
  -file string
        YAML scenario file to run instead of the built-ins
  -list
        List built-in scenarios and exit
  -log string
        Also write logs to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Run every built-in scenario
  go run cmd/scenario/main.go

  # Run one scenario with debug logs
  go run cmd/scenario/main.go -name ra-encounter -verbose

  # Run a scenario from a file
  go run cmd/scenario/main.go -file testdata/approach.yaml
`)
}
