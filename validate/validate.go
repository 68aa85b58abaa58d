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

import (
	"fmt"
	"strings"

	"github.com/sqllogictest-go/slt/record"
)

// ValidateStatement compares obs against rec's StatementExpect. A nil
// return means the statement passed.
func ValidateStatement(rec *record.Record, obs record.Observed) error {
	exp := rec.StatementExpect
	returnedRows := obs.Rows != nil

	switch exp.Kind {
	case record.StatementOk, record.StatementCount:
		if returnedRows {
			return &StatementResultMismatch{}
		}
		if !obs.Succeeded() {
			return &StatementFailed{Err: obs.Err}
		}
		if exp.Kind == record.StatementCount && obs.RowsAffected != exp.Count {
			return &StatementCountMismatch{Expected: exp.Count, Actual: obs.RowsAffected}
		}
		return nil

	case record.StatementErrorExpect:
		if returnedRows {
			return &StatementErrorButQuery{}
		}
		if obs.Succeeded() {
			return &ErrorMessageMismatch{Expected: describeExpectedError(exp.Error), Actual: "(no error)"}
		}
		ok, err := exp.Error.Matches(obs.Err)
		if err != nil {
			return err
		}
		if !ok {
			return &ErrorMessageMismatch{Expected: describeExpectedError(exp.Error), Actual: obs.Err}
		}
		return nil

	default:
		return fmt.Errorf("validate: unknown statement expectation kind %d", exp.Kind)
	}
}

// ValidateQuery compares obs against rec's QueryExpect under policy. A
// nil return means the query passed.
func ValidateQuery(rec *record.Record, obs record.Observed, policy Policy) error {
	exp := rec.QueryExpect

	switch exp.Kind {
	case record.QueryErrorExpect:
		if obs.Succeeded() {
			return &QuerySucceededUnexpectedly{}
		}
		ok, err := exp.Error.Matches(obs.Err)
		if err != nil {
			return err
		}
		if !ok {
			return &ErrorMessageMismatch{Expected: describeExpectedError(exp.Error), Actual: obs.Err}
		}
		return nil

	case record.QueryEmptyExpect:
		if !obs.Succeeded() {
			return &QueryFailed{Err: obs.Err}
		}
		return nil

	case record.QueryRows:
		if !obs.Succeeded() {
			return &QueryFailed{Err: obs.Err}
		}
		actual := linearise(obs.Rows, policy)
		if policy.ColNames && len(obs.ColumnNames) > 0 {
			actual = append(colNameLines(obs.ColumnNames, policy.ResultMode), actual...)
		}
		if diff, ok := compareResultLines(exp.Lines, actual); !ok {
			return &QueryResultMismatch{Expected: exp.Lines, Actual: actual, Diff: diff}
		}
		return nil

	default:
		return fmt.Errorf("validate: unknown query expectation kind %d", exp.Kind)
	}
}

// ValidateSystem compares obs against rec's SystemExpect (exit status,
// and stdout when a "----" block was present). A nil return means the
// command passed.
func ValidateSystem(rec *record.Record, obs record.Observed) error {
	if obs.ExitCode != 0 {
		return &SystemCommandFailed{ExitCode: obs.ExitCode, Stdout: obs.Stdout, Stderr: obs.Stderr}
	}
	if rec.Stdout == nil {
		return nil
	}

	expected := strings.TrimSpace(*rec.Stdout)
	actual := strings.TrimSpace(obs.Stdout)
	if expected == actual {
		return nil
	}
	return &SystemStdoutMismatch{
		Expected: expected,
		Actual:   actual,
		Diff:     unifiedDiff(strings.Split(expected, "\n"), strings.Split(actual, "\n")),
	}
}

func describeExpectedError(e record.ExpectedError) string {
	if e.Kind == record.ErrorRegex {
		return e.Pattern
	}
	return e.Text
}
