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

package validate

import "fmt"

// StatementFailed wraps a database error returned while running a
// `statement ok`/`statement count` record, i.e. a statement that was not
// even supposed to fail.
type StatementFailed struct{ Err string }

func (e *StatementFailed) Error() string { return fmt.Sprintf("statement failed: %s", e.Err) }

// QueryFailed wraps a database error returned while running a query that
// was expected to succeed (QueryRows or QueryEmptyExpect).
type QueryFailed struct{ Err string }

func (e *QueryFailed) Error() string { return fmt.Sprintf("query failed: %s", e.Err) }

// StatementResultMismatch means a `statement` record unexpectedly
// produced tabular results instead of completing as a plain statement.
type StatementResultMismatch struct{}

func (e *StatementResultMismatch) Error() string {
	return "statement produced a result set, expected none"
}

// StatementCountMismatch means `statement count N` observed a different
// number of affected rows.
type StatementCountMismatch struct{ Expected, Actual int64 }

func (e *StatementCountMismatch) Error() string {
	return fmt.Sprintf("statement count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// StatementErrorButQuery means a `statement error` record's expectation
// would have been satisfiable by the error, but execution instead
// returned query rows rather than failing.
type StatementErrorButQuery struct{}

func (e *StatementErrorButQuery) Error() string {
	return "statement expected an error but returned rows instead"
}

// QuerySucceededUnexpectedly means `query error` ran to completion
// without the database reporting an error.
type QuerySucceededUnexpectedly struct{}

func (e *QuerySucceededUnexpectedly) Error() string {
	return "query expected an error but succeeded"
}

// ErrorMessageMismatch means the observed error text didn't satisfy the
// record's ExpectedError (regex or exact multiline).
type ErrorMessageMismatch struct{ Expected, Actual string }

func (e *ErrorMessageMismatch) Error() string {
	return fmt.Sprintf("error message mismatch: expected %q, got %q", e.Expected, e.Actual)
}

// QueryResultMismatch means the (possibly sorted, possibly hashed)
// linearised actual result didn't match the expected block. Diff is a
// unified-diff rendering of Expected vs Actual for display.
type QueryResultMismatch struct {
	Expected []string
	Actual   []string
	Diff     string
}

func (e *QueryResultMismatch) Error() string {
	return fmt.Sprintf("query result mismatch:\n%s", e.Diff)
}

// SystemCommandFailed means a `system ok` record's command exited
// non-zero.
type SystemCommandFailed struct {
	ExitCode       int
	Stdout, Stderr string
}

func (e *SystemCommandFailed) Error() string {
	return fmt.Sprintf("system command exited %d: %s", e.ExitCode, e.Stderr)
}

// SystemStdoutMismatch means a `system ok` record's observed stdout
// didn't match the "----" block.
type SystemStdoutMismatch struct {
	Expected, Actual string
	Diff             string
}

func (e *SystemStdoutMismatch) Error() string {
	return fmt.Sprintf("system stdout mismatch:\n%s", e.Diff)
}
