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

package main

import (
	"fmt"
	"sync"

	"github.com/fatih/color"

	"github.com/sqllogictest-go/slt/runner"
)

// colorReporter upgrades runner.StdoutReporter's plain log line with
// colorized pass/fail/skip markers, the same color.New(...).SprintFunc()
// idiom the testrunner package's fixture_runner.go uses for its own
// summary output. It also tallies outcomes for the final summary line and
// records failures for the JUnit writer.
type colorReporter struct {
	mu       sync.Mutex
	passed   int
	failed   int
	skipped  int
	failures []runner.RecordOutcome
}

var (
	okLabel   = color.New(color.FgGreen).SprintFunc()
	failLabel = color.New(color.Bold, color.FgRed).SprintFunc()
	skipLabel = color.New(color.FgYellow).SprintFunc()
)

func (r *colorReporter) Report(o runner.RecordOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch o.Verdict {
	case runner.Passed:
		r.passed++
		fmt.Fprintf(color.Output, "%s %s\n", okLabel("ok"), o.Record.Loc.String())
	case runner.Skipped:
		r.skipped++
		fmt.Fprintf(color.Output, "%s %s\n", skipLabel("skip"), o.Record.Loc.String())
	default:
		r.failed++
		r.failures = append(r.failures, o)
		msg := ""
		if o.Err != nil {
			msg = ": " + o.Err.Error()
		}
		fmt.Fprintf(color.Output, "%s %s%s\n", failLabel("FAIL"), o.Record.Loc.String(), msg)
	}
}

// Progress implements runner.ProgressReporter, printing a dim heartbeat
// line so a long-running file doesn't look stuck.
func (r *colorReporter) Progress(count int) {
	fmt.Fprintf(color.Output, "%s\n", color.New(color.Faint).Sprintf("... %d records processed", count))
}

func (r *colorReporter) summary() (passed, failed, skipped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.passed, r.failed, r.skipped
}
