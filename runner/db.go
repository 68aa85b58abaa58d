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
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/sqllogictest-go/slt/record"
)

// DBOutputKind distinguishes the two shapes AsyncDB.Run can return,
// generalizing the teacher's split between Harness.ExecuteStatement and
// Harness.ExecuteQuery into a single dispatch contract.
type DBOutputKind int

const (
	StatementComplete DBOutputKind = iota
	Rows
)

// DBOutput is what AsyncDB.Run returns for one statement or query.
type DBOutput struct {
	Kind         DBOutputKind
	RowsAffected int64               // valid when Kind == StatementComplete
	Types        []record.ColumnType // valid when Kind == Rows
	Values       [][]string          // valid when Kind == Rows, row-major
	ColumnNames  []string            // valid when Kind == Rows, if the adapter reports them
}

// CommandResult is what AsyncDB.RunCommand returns for a `system` record.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// AsyncDB is the contract a reference adapter (adapter/sqlite,
// adapter/mysql, adapter/postgres) implements so the Runner can execute
// statements, queries, and system commands against a real engine.
type AsyncDB interface {
	// Run executes one statement or query's SQL text.
	Run(ctx context.Context, sql string) (DBOutput, error)
	// EngineName contributes to the default label set (e.g. "sqlite",
	// "mysql", "postgresql") so files can onlyif/skipif on it.
	EngineName() string
	// Sleep honours ctx cancellation; BaseAsyncDB's default is a plain
	// platform sleep.
	Sleep(ctx context.Context, d time.Duration)
	// RunCommand executes a `system ok` shell command line.
	RunCommand(ctx context.Context, command string) (CommandResult, error)
	// Shutdown releases any resources held by the connection. Idempotent.
	Shutdown(ctx context.Context) error
}

// MakeConnection lazily creates the named connection (the default
// connection is always named "(default)"); the Runner calls it at most
// once per distinct name.
type MakeConnection func(ctx context.Context, name string) (AsyncDB, error)

// BaseAsyncDB provides the AsyncDB default behaviors spec.md describes
// for Sleep, RunCommand, and Shutdown, so a reference adapter only needs
// to implement Run and EngineName. Embed it by value.
type BaseAsyncDB struct{}

// Sleep waits for d or until ctx is cancelled, whichever comes first.
func (BaseAsyncDB) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// RunCommand spawns command in a shell and captures its stdout, stderr,
// and exit code. A non-zero exit is reported through ExitCode, not err;
// err is reserved for failures to even start the command.
func (BaseAsyncDB) RunCommand(ctx context.Context, command string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return CommandResult{ExitCode: exitErr.ExitCode(), Stdout: stdout.String(), Stderr: stderr.String()}, nil
		}
		return CommandResult{}, err
	}
	return CommandResult{ExitCode: 0, Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// Shutdown is a no-op by default.
func (BaseAsyncDB) Shutdown(ctx context.Context) error { return nil }
