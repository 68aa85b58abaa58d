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

package runner

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sqllogictest-go/slt/record"
	"github.com/sqllogictest-go/slt/validate"
)

// heartbeatInterval is how often RunRecords calls a ProgressReporter's
// Progress hook while a file is running. Not a const so tests can shrink
// it rather than wait out the real interval.
var heartbeatInterval = 2 * time.Second

// DefaultConnection is the name resolved when a statement or query
// doesn't specify a `connection NAME` directive.
const DefaultConnection = "(default)"

// Verdict is the outcome of one executed statement, query, or system
// record.
type Verdict int

const (
	Passed Verdict = iota
	Failed
	Skipped
)

func (v Verdict) String() string {
	switch v {
	case Passed:
		return "ok"
	case Skipped:
		return "skipped"
	default:
		return "not ok"
	}
}

// RecordOutcome is what the Runner reports for every statement, query,
// and system record it attempts (control/sleep/halt/etc. produce none).
type RecordOutcome struct {
	Record   *record.Record
	Observed record.Observed
	Verdict  Verdict
	Err      error
}

// Reporter receives a RecordOutcome as each record finishes running.
type Reporter interface {
	Report(outcome RecordOutcome)
}

// ProgressReporter is a Reporter that also wants a periodic heartbeat of
// how many records have been processed so far, independent of the
// per-record Report calls. RunRecords calls Progress roughly every two
// seconds of wall time for any Reporter that implements it, a "still
// alive" heartbeat for long single-file runs.
type ProgressReporter interface {
	Reporter
	Progress(count int)
}

// FuncReporter adapts a plain function to Reporter.
type FuncReporter func(RecordOutcome)

// Report calls f.
func (f FuncReporter) Report(outcome RecordOutcome) { f(outcome) }

// Runner executes one file's worth of records in order against the
// connections its MakeConnection factory produces. A Runner is not safe
// for concurrent use; RunParallel gives each include-child its own.
type Runner struct {
	connect     MakeConnection
	connections map[string]AsyncDB
	config      Config
	reporter    Reporter
	halted      bool

	baseTestDir string
	testDirOnce sync.Once
	testDir     string
	testDirErr  error

	labelResults map[string][]string
	processed    atomic.Int64
}

// NewRunner builds a Runner. reporter may be nil to run silently.
func NewRunner(connect MakeConnection, config Config, reporter Reporter) *Runner {
	return &Runner{
		connect:     connect,
		connections: map[string]AsyncDB{},
		config:      config,
		reporter:    reporter,
	}
}

// RunRecords executes records in order, stopping early (without error) at
// a Halt record or when the Runner was already halted by an earlier run.
// It returns every outcome reached before stopping; a non-nil error means
// a connection failure that isn't itself a test failure interrupted the
// run (a substitution failure is reported as that record's Failed
// outcome instead).
func (r *Runner) RunRecords(ctx context.Context, records []*record.Record) ([]RecordOutcome, error) {
	if pr, ok := r.reporter.(ProgressReporter); ok {
		stop := make(chan struct{})
		defer close(stop)
		go r.heartbeat(pr, stop)
	}

	var outcomes []RecordOutcome
	for _, rec := range records {
		if r.halted {
			break
		}
		outcome, err := r.step(ctx, rec)
		r.processed.Add(1)
		if err != nil {
			return outcomes, err
		}
		if outcome == nil {
			continue
		}
		outcomes = append(outcomes, *outcome)
		if r.reporter != nil {
			r.reporter.Report(*outcome)
		}
	}
	return outcomes, nil
}

// heartbeat calls pr.Progress with the running processed-record count
// every heartbeatInterval until stop is closed.
func (r *Runner) heartbeat(pr ProgressReporter, stop <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			pr.Progress(int(r.processed.Load()))
		}
	}
}

// Shutdown closes every connection this Runner opened and removes its
// temporary directory, if one was created. Idempotent.
func (r *Runner) Shutdown(ctx context.Context) error {
	var firstErr error
	for name, db := range r.connections {
		if err := db.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.connections, name)
	}
	if r.testDir != "" {
		if err := os.RemoveAll(r.testDir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Runner) step(ctx context.Context, rec *record.Record) (*RecordOutcome, error) {
	switch rec.Kind {
	case record.KindControl:
		r.config.applyControl(rec.Ctrl)
		return nil, nil
	case record.KindHashThreshold:
		r.config.HashThreshold = rec.HashThreshold
		return nil, nil
	case record.KindHalt:
		r.halted = true
		return nil, nil
	case record.KindSleep:
		r.sleep(ctx, rec.SleepFor)
		return nil, nil
	case record.KindStatement:
		return r.runStatement(ctx, rec)
	case record.KindQuery:
		return r.runQuery(ctx, rec)
	case record.KindSystem:
		return r.runSystem(ctx, rec)
	default:
		// Include/Connection/Whitespace/Comment/Injected carry no
		// executable content of their own.
		return nil, nil
	}
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) {
	if db, ok := r.connections[DefaultConnection]; ok {
		db.Sleep(ctx, d)
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (r *Runner) connection(ctx context.Context, name string) (AsyncDB, error) {
	if name == "" {
		name = DefaultConnection
	}
	if db, ok := r.connections[name]; ok {
		return db, nil
	}
	db, err := r.connect(ctx, name)
	if err != nil {
		return nil, err
	}
	r.connections[name] = db
	return db, nil
}

func (r *Runner) ensureTestDir() (string, error) {
	r.testDirOnce.Do(func() {
		r.testDir, r.testDirErr = os.MkdirTemp(r.baseTestDir, "slt-")
	})
	return r.testDir, r.testDirErr
}

func (r *Runner) substContext(connName string) substContext {
	if connName == "" {
		connName = DefaultConnection
	}
	return substContext{
		testDir:  r.ensureTestDir,
		now:      time.Now(),
		database: connName,
	}
}

func (r *Runner) runStatement(ctx context.Context, rec *record.Record) (*RecordOutcome, error) {
	if !r.config.satisfies(rec.Conditions) {
		return &RecordOutcome{Record: rec, Verdict: Skipped}, nil
	}

	db, err := r.connection(ctx, rec.Connection)
	if err != nil {
		return nil, err
	}

	sql := rec.SQL
	if r.config.SubstitutionOn {
		sql, err = substitute(sql, r.substContext(rec.Connection))
		if err != nil {
			return &RecordOutcome{Record: rec, Verdict: Failed, Err: err}, nil
		}
	}

	var obs record.Observed
	verr := retryLoop(ctx, rec.StatementExpect.Retry, db, func() error {
		out, err := db.Run(ctx, sql)
		obs = observedFromRun(out, err)
		return validate.ValidateStatement(rec, obs)
	})

	return &RecordOutcome{Record: rec, Observed: obs, Verdict: verdictFor(verr), Err: verr}, nil
}

func (r *Runner) runQuery(ctx context.Context, rec *record.Record) (*RecordOutcome, error) {
	if !r.config.satisfies(rec.Conditions) {
		return &RecordOutcome{Record: rec, Verdict: Skipped}, nil
	}

	db, err := r.connection(ctx, rec.Connection)
	if err != nil {
		return nil, err
	}

	sql := rec.SQL
	if r.config.SubstitutionOn {
		sql, err = substitute(sql, r.substContext(rec.Connection))
		if err != nil {
			return &RecordOutcome{Record: rec, Verdict: Failed, Err: err}, nil
		}
	}

	sortMode := r.config.SortMode
	if rec.SortModeExplicit {
		sortMode = rec.SortMode
	}

	policy := validate.Policy{
		SortMode:      sortMode,
		ResultMode:    r.config.ResultMode,
		HashThreshold: r.config.HashThreshold,
		Normalizer:    r.config.Normalizer,
		Types:         rec.Types,
		ColNames:      rec.ColNames,
	}

	var obs record.Observed
	verr := retryLoop(ctx, rec.QueryExpect.Retry, db, func() error {
		out, err := db.Run(ctx, sql)
		obs = observedFromRun(out, err)
		return validate.ValidateQuery(rec, obs, policy)
	})

	if verr == nil && rec.Label != "" && rec.QueryExpect.Kind == record.QueryRows {
		verr = r.checkLabel(rec.Label, obs.Rows, policy)
	}

	return &RecordOutcome{Record: rec, Observed: obs, Verdict: verdictFor(verr), Err: verr}, nil
}

func (r *Runner) runSystem(ctx context.Context, rec *record.Record) (*RecordOutcome, error) {
	if !r.config.satisfies(rec.Conditions) {
		return &RecordOutcome{Record: rec, Verdict: Skipped}, nil
	}

	db, err := r.connection(ctx, DefaultConnection)
	if err != nil {
		return nil, err
	}

	command := rec.Command
	if r.config.SubstitutionOn {
		command, err = substitute(command, r.substContext(DefaultConnection))
		if err != nil {
			return &RecordOutcome{Record: rec, Verdict: Failed, Err: err}, nil
		}
	}

	trimmed := strings.TrimSpace(command)
	fireAndForget := strings.HasSuffix(trimmed, "&")

	var obs record.Observed
	verr := retryLoop(ctx, rec.SystemExpect.Retry, db, func() error {
		if fireAndForget {
			go db.RunCommand(context.Background(), strings.TrimSuffix(trimmed, "&"))
			obs = record.Observed{}
			return nil
		}
		out, err := db.RunCommand(ctx, command)
		if err != nil {
			obs = record.Observed{Err: err.Error(), ExitCode: -1}
		} else {
			obs = record.Observed{ExitCode: out.ExitCode, Stdout: out.Stdout, Stderr: out.Stderr}
		}
		return validate.ValidateSystem(rec, obs)
	})

	return &RecordOutcome{Record: rec, Observed: obs, Verdict: verdictFor(verr), Err: verr}, nil
}

// retryLoop runs attempt once, and again up to retry.Attempts times with
// retry.Backoff sleeps between tries, stopping at the first success
// (spec.md §4.4 step 9). A nil retry means exactly one attempt.
func retryLoop(ctx context.Context, retry *record.Retry, sleeper interface {
	Sleep(context.Context, time.Duration)
}, attempt func() error) error {
	tries := 1
	var backoff time.Duration
	if retry != nil {
		tries = retry.Attempts + 1
		backoff = retry.Backoff
	}

	var err error
	for i := 0; i < tries; i++ {
		err = attempt()
		if err == nil {
			return nil
		}
		if i < tries-1 {
			sleeper.Sleep(ctx, backoff)
		}
	}
	return err
}

func verdictFor(err error) Verdict {
	if err == nil {
		return Passed
	}
	return Failed
}

func observedFromRun(out DBOutput, err error) record.Observed {
	if err != nil {
		return record.Observed{Err: err.Error()}
	}
	if out.Kind == Rows {
		return record.Observed{Types: out.Types, Rows: out.Values, ColumnNames: out.ColumnNames}
	}
	return record.Observed{RowsAffected: out.RowsAffected}
}
