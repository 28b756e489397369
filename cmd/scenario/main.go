package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/navguard/internal/scenario"
	"github.com/okian/navguard/pkg/logger"
)

const defaultTimeout = time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	var (
		name    = flag.String("name", "", "Built-in scenario to run (default: all)")
		path    = flag.String("file", "", "YAML scenario file to run")
		list    = flag.Bool("list", false, "List built-in scenarios and exit")
		logFile = flag.String("log", "", "Also write logs to this file")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		scenario.ShowHelp()
		return 0
	}
	if *list {
		for _, n := range scenario.Names() {
			sc, _ := scenario.Lookup(n)
			os.Stdout.WriteString(n + "\t" + sc.Description + "\n")
		}
		return 0
	}

	if err := scenario.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	scenarios, err := selectScenarios(*name, *path)
	if err != nil {
		logger.Get().Error(ctx, "failed to load scenarios", logger.Error(err))
		return 1
	}

	runner := scenario.NewRunner(scenario.WithLogger(logger.Named("scenario")))
	results, err := runner.RunAll(ctx, scenarios)
	scenario.PrintReport(os.Stdout, results)
	if err != nil {
		return 1
	}
	return 0
}

func selectScenarios(name, path string) ([]scenario.Scenario, error) {
	switch {
	case path != "":
		sc, err := scenario.LoadFile(path)
		if err != nil {
			return nil, err
		}
		return []scenario.Scenario{sc}, nil
	case name != "":
		sc, err := scenario.Lookup(name)
		if err != nil {
			return nil, err
		}
		return []scenario.Scenario{sc}, nil
	}
	all := make([]scenario.Scenario, 0, len(scenario.Names()))
	for _, n := range scenario.Names() {
		sc, _ := scenario.Lookup(n)
		all = append(all, sc)
	}
	return all, nil
}
