// Copyright 2019-2020 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command slt is the reference command-line front-end for this module's
// parser, runner, and unparse packages: it globs test files, executes
// them against a reference adapter, and reports pass/fail/skip, optionally
// rewriting files in place (--override) or just reformatting them
// (--format).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/sqllogictest-go/slt/parser"
	"github.com/sqllogictest-go/slt/runner"
	"github.com/sqllogictest-go/slt/unparse"
)

// CLI is the full flag surface spec.md's "CLI surface (collaborator,
// summarised)" describes.
var CLI struct {
	Paths []string `arg:"" optional:"" help:"Test files or globs to run"`

	Config          string   `help:"YAML config file with default connection parameters" default:"slt.yaml"`
	Override        bool     `help:"Rewrite each file's expectations to match observed output"`
	Format          bool     `help:"Reformat each file without executing it"`
	Color           string   `help:"Color output: auto|always|never" default:"auto" enum:"auto,always,never"`
	Jobs            int      `help:"Above 1, run all of a file's include-children at once (the number is not a cap)" default:"1"`
	Label           []string `help:"Label satisfying onlyif/skipif conditions (repeatable)"`
	Junit           string   `help:"Write a JUnit XML report to this path"`
	FailFast        bool     `help:"Stop after the first file with a failing record (the rest of that file still runs)"`
	KeepDBOnFailure bool     `help:"With --jobs 1, do not fail the run on a connection shutdown error (connections are still shut down)"`
}

func main() {
	kctx := kong.Parse(&CLI)
	kctx.FatalIfErrorf(run())
}

func run() error {
	switch CLI.Color {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	}

	cfg, err := loadConfig(CLI.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	failFast := CLI.FailFast || envBool("SLT_FAIL_FAST")
	keepDBOnFailure := CLI.KeepDBOnFailure || envBool("SLT_KEEP_DB_ON_FAILURE")

	paths, err := expandGlobs(CLI.Paths)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no test files matched")
	}

	if CLI.Format {
		return formatFiles(paths)
	}

	if _, err := connectionFactory(cfg, ""); err != nil {
		return err
	}

	labels := append([]string{}, CLI.Label...)
	baseConfig := runner.NewConfig(labels...)
	baseConfig.HashThreshold = cfg.HashThreshold

	ctx := context.Background()

	if CLI.Override {
		connect, err := connectionFactory(cfg, "")
		if err != nil {
			return err
		}
		for _, path := range paths {
			if err := runner.UpdateTestFile(ctx, path, connect, baseConfig, unparse.Options{HashThreshold: cfg.HashThreshold}); err != nil {
				return fmt.Errorf("updating %s: %w", path, err)
			}
		}
		return nil
	}

	reporter := &colorReporter{}

	for _, path := range paths {
		records, err := parser.ParseFile(path)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}

		var outcomes []runner.RecordOutcome
		if CLI.Jobs > 1 {
			// cfg.Driver was already validated above, so this can't fail.
			connFactory := func(dbName string) runner.MakeConnection {
				connect, _ := connectionFactory(cfg, dbName)
				return connect
			}
			results, err := runner.RunParallel(ctx, records, baseConfig, connFactory, reporter)
			if err != nil {
				return fmt.Errorf("running %s: %w", path, err)
			}
			for _, res := range results {
				outcomes = append(outcomes, res.Outcomes...)
			}
		} else {
			connect, err := connectionFactory(cfg, "")
			if err != nil {
				return err
			}
			r := runner.NewRunner(connect, baseConfig, reporter)
			outcomes, err = r.RunRecords(ctx, records)
			shutdownErr := r.Shutdown(ctx)
			if err != nil {
				return fmt.Errorf("running %s: %w", path, err)
			}
			if shutdownErr != nil && !keepDBOnFailure {
				return fmt.Errorf("shutting down %s: %w", path, shutdownErr)
			}
		}

		if failFast {
			for _, o := range outcomes {
				if o.Verdict == runner.Failed {
					return reportAndExit(reporter, CLI.Junit)
				}
			}
		}
	}

	return reportAndExit(reporter, CLI.Junit)
}

func reportAndExit(reporter *colorReporter, junitPath string) error {
	passed, failed, skipped := reporter.summary()
	fmt.Fprintf(color.Output, "\n%d passed, %d failed, %d skipped\n", passed, failed, skipped)

	if junitPath != "" {
		if err := writeJUnit(junitPath, passed, failed, skipped, reporter.failures); err != nil {
			return fmt.Errorf("writing junit report: %w", err)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
	return nil
}

func expandGlobs(patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", p, err)
		}
		out = append(out, matches...)
	}
	return out, nil
}

func formatFiles(paths []string) error {
	for _, path := range paths {
		records, err := parser.ParseFile(path)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		tree, err := unparse.WriteTree(records, unparse.Options{})
		if err != nil {
			return fmt.Errorf("formatting %s: %w", path, err)
		}
		for filePath, content := range tree {
			if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}
