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

package validate_test

import (
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqllogictest-go/slt/record"
	"github.com/sqllogictest-go/slt/validate"
)

func TestValidateStatementOkPasses(t *testing.T) {
	rec := &record.Record{StatementExpect: record.StatementExpect{Kind: record.StatementOk}}
	err := validate.ValidateStatement(rec, record.Observed{})
	assert.NoError(t, err)
}

func TestValidateStatementOkFailsOnError(t *testing.T) {
	rec := &record.Record{StatementExpect: record.StatementExpect{Kind: record.StatementOk}}
	err := validate.ValidateStatement(rec, record.Observed{Err: "boom"})
	require.Error(t, err)
	assert.IsType(t, &validate.StatementFailed{}, err)
}

func TestValidateStatementCountMatches(t *testing.T) {
	rec := &record.Record{StatementExpect: record.StatementExpect{Kind: record.StatementCount, Count: 3}}
	err := validate.ValidateStatement(rec, record.Observed{RowsAffected: 3})
	assert.NoError(t, err)
}

func TestValidateStatementCountMismatch(t *testing.T) {
	rec := &record.Record{StatementExpect: record.StatementExpect{Kind: record.StatementCount, Count: 3}}
	err := validate.ValidateStatement(rec, record.Observed{RowsAffected: 2})
	require.Error(t, err)
	mismatch, ok := err.(*validate.StatementCountMismatch)
	require.True(t, ok)
	assert.EqualValues(t, 3, mismatch.Expected)
	assert.EqualValues(t, 2, mismatch.Actual)
}

func TestValidateStatementOkButReturnedRows(t *testing.T) {
	rec := &record.Record{StatementExpect: record.StatementExpect{Kind: record.StatementOk}}
	err := validate.ValidateStatement(rec, record.Observed{Rows: [][]string{{"1"}}})
	require.Error(t, err)
	assert.IsType(t, &validate.StatementResultMismatch{}, err)
}

func TestValidateStatementErrorMatchesRegex(t *testing.T) {
	rec := &record.Record{StatementExpect: record.StatementExpect{
		Kind:  record.StatementErrorExpect,
		Error: record.ExpectedError{Kind: record.ErrorRegex, Pattern: "no such table"},
	}}
	err := validate.ValidateStatement(rec, record.Observed{Err: "error: no such table: foo"})
	assert.NoError(t, err)
}

func TestValidateStatementErrorMismatchedMessage(t *testing.T) {
	rec := &record.Record{StatementExpect: record.StatementExpect{
		Kind:  record.StatementErrorExpect,
		Error: record.ExpectedError{Kind: record.ErrorRegex, Pattern: "no such table"},
	}}
	err := validate.ValidateStatement(rec, record.Observed{Err: "syntax error"})
	require.Error(t, err)
	assert.IsType(t, &validate.ErrorMessageMismatch{}, err)
}

func TestValidateStatementErrorButSucceeded(t *testing.T) {
	rec := &record.Record{StatementExpect: record.StatementExpect{
		Kind:  record.StatementErrorExpect,
		Error: record.ExpectedError{Kind: record.ErrorRegex, Pattern: "no such table"},
	}}
	err := validate.ValidateStatement(rec, record.Observed{})
	require.Error(t, err)
	assert.IsType(t, &validate.ErrorMessageMismatch{}, err)
}

func TestValidateStatementErrorButReturnedRows(t *testing.T) {
	rec := &record.Record{StatementExpect: record.StatementExpect{
		Kind:  record.StatementErrorExpect,
		Error: record.ExpectedError{Kind: record.ErrorRegex, Pattern: "no such table"},
	}}
	err := validate.ValidateStatement(rec, record.Observed{Rows: [][]string{{"1"}}})
	require.Error(t, err)
	assert.IsType(t, &validate.StatementErrorButQuery{}, err)
}

func TestValidateQueryRowsExactMatch(t *testing.T) {
	rec := &record.Record{
		Types:      record.ParseColumnTypes("I"),
		SortMode:   record.NoSort,
		QueryExpect: record.QueryExpect{
			Kind:  record.QueryRows,
			Lines: []string{"1", "2"},
		},
	}
	obs := record.Observed{Rows: [][]string{{"1"}, {"2"}}}
	policy := validate.Policy{SortMode: rec.SortMode, ResultMode: record.Columnwise, Types: rec.Types}
	err := validate.ValidateQuery(rec, obs, policy)
	assert.NoError(t, err)
}

func TestValidateQueryRowsortReordersActualOnly(t *testing.T) {
	rec := &record.Record{
		SortMode:   record.RowSort,
		QueryExpect: record.QueryExpect{
			Kind:  record.QueryRows,
			Lines: []string{"1", "2", "3"},
		},
	}
	obs := record.Observed{Rows: [][]string{{"3"}, {"1"}, {"2"}}}
	policy := validate.Policy{SortMode: rec.SortMode, ResultMode: record.Columnwise}
	err := validate.ValidateQuery(rec, obs, policy)
	assert.NoError(t, err)
}

func TestValidateQueryResultMismatchCarriesDiff(t *testing.T) {
	rec := &record.Record{
		SortMode:   record.NoSort,
		QueryExpect: record.QueryExpect{
			Kind:  record.QueryRows,
			Lines: []string{"1", "2"},
		},
	}
	obs := record.Observed{Rows: [][]string{{"1"}, {"9"}}}
	policy := validate.Policy{SortMode: rec.SortMode, ResultMode: record.Columnwise}
	err := validate.ValidateQuery(rec, obs, policy)
	require.Error(t, err)
	mismatch, ok := err.(*validate.QueryResultMismatch)
	require.True(t, ok)
	assert.NotEmpty(t, mismatch.Diff)
}

func TestValidateQueryHashThresholdAccepted(t *testing.T) {
	rec := &record.Record{
		SortMode:   record.NoSort,
		QueryExpect: record.QueryExpect{
			Kind:  record.QueryRows,
			Lines: []string{"3 values hashing to " + hashOf("1", "2", "3")},
		},
	}
	obs := record.Observed{Rows: [][]string{{"1"}, {"2"}, {"3"}}}
	policy := validate.Policy{SortMode: rec.SortMode, ResultMode: record.Columnwise}
	err := validate.ValidateQuery(rec, obs, policy)
	assert.NoError(t, err)
}

func TestValidateQueryErrorExpectSatisfied(t *testing.T) {
	rec := &record.Record{QueryExpect: record.QueryExpect{
		Kind:  record.QueryErrorExpect,
		Error: record.ExpectedError{Kind: record.ErrorRegex, Pattern: "syntax error"},
	}}
	err := validate.ValidateQuery(rec, record.Observed{Err: "syntax error near FROM"}, validate.Policy{})
	assert.NoError(t, err)
}

func TestValidateQueryErrorExpectButSucceeded(t *testing.T) {
	rec := &record.Record{QueryExpect: record.QueryExpect{
		Kind:  record.QueryErrorExpect,
		Error: record.ExpectedError{Kind: record.ErrorRegex, Pattern: "syntax error"},
	}}
	err := validate.ValidateQuery(rec, record.Observed{Rows: [][]string{{"1"}}}, validate.Policy{})
	require.Error(t, err)
	assert.IsType(t, &validate.QuerySucceededUnexpectedly{}, err)
}

func TestValidateQueryEmptyExpectOnlyChecksSuccess(t *testing.T) {
	rec := &record.Record{QueryExpect: record.QueryExpect{Kind: record.QueryEmptyExpect}}
	assert.NoError(t, validate.ValidateQuery(rec, record.Observed{Rows: [][]string{{"1"}}}, validate.Policy{}))

	err := validate.ValidateQuery(rec, record.Observed{Err: "boom"}, validate.Policy{})
	require.Error(t, err)
	assert.IsType(t, &validate.QueryFailed{}, err)
}

func TestValidateSystemOkNoStdoutCheck(t *testing.T) {
	rec := &record.Record{SystemExpect: record.SystemExpect{Kind: record.SystemOk}}
	err := validate.ValidateSystem(rec, record.Observed{ExitCode: 0, Stdout: "whatever"})
	assert.NoError(t, err)
}

func TestValidateSystemNonZeroExit(t *testing.T) {
	rec := &record.Record{SystemExpect: record.SystemExpect{Kind: record.SystemOk}}
	err := validate.ValidateSystem(rec, record.Observed{ExitCode: 1, Stderr: "not found"})
	require.Error(t, err)
	assert.IsType(t, &validate.SystemCommandFailed{}, err)
}

func TestValidateSystemStdoutMatch(t *testing.T) {
	stdout := "hello\n"
	rec := &record.Record{Stdout: &stdout, SystemExpect: record.SystemExpect{Kind: record.SystemOk}}
	err := validate.ValidateSystem(rec, record.Observed{ExitCode: 0, Stdout: "hello"})
	assert.NoError(t, err)
}

func TestValidateSystemStdoutMismatch(t *testing.T) {
	stdout := "hello"
	rec := &record.Record{Stdout: &stdout, SystemExpect: record.SystemExpect{Kind: record.SystemOk}}
	err := validate.ValidateSystem(rec, record.Observed{ExitCode: 0, Stdout: "goodbye"})
	require.Error(t, err)
	assert.IsType(t, &validate.SystemStdoutMismatch{}, err)
}

func TestDecimalNormalizerCanonicalizesRealColumn(t *testing.T) {
	normalize := validate.DecimalNormalizer(validate.DefaultNormalizer)
	assert.Equal(t, "1000000", normalize("1e+06", record.ColumnType('R')))
	assert.Equal(t, "3.5", normalize("3.50", record.ColumnType('R')))
}

func TestDecimalNormalizerLeavesOtherColumnsAlone(t *testing.T) {
	normalize := validate.DecimalNormalizer(validate.DefaultNormalizer)
	assert.Equal(t, "hello", normalize("hello", record.ColumnType('T')))
}

func TestDecimalNormalizerPassesThroughUnparseableCell(t *testing.T) {
	normalize := validate.DecimalNormalizer(validate.DefaultNormalizer)
	assert.Equal(t, "NaN", normalize("NaN", record.ColumnType('R')))
}

func TestValidateQueryUsesDecimalNormalizerWhenConfigured(t *testing.T) {
	rec := &record.Record{
		Types:      []record.ColumnType{'R'},
		SortMode:   record.NoSort,
		QueryExpect: record.QueryExpect{
			Kind:  record.QueryRows,
			Lines: []string{"1000000"},
		},
	}
	policy := validate.Policy{
		SortMode:   record.NoSort,
		Normalizer: validate.DecimalNormalizer(validate.DefaultNormalizer),
		Types:      []record.ColumnType{'R'},
	}
	err := validate.ValidateQuery(rec, record.Observed{Rows: [][]string{{"1e+06"}}}, policy)
	assert.NoError(t, err)
}

func TestValidateQueryColNamesPrependsHeaderRow(t *testing.T) {
	rec := &record.Record{
		SortMode:   record.NoSort,
		ColNames:   true,
		QueryExpect: record.QueryExpect{
			Kind:  record.QueryRows,
			Lines: []string{"a b", "1 2"},
		},
	}
	obs := record.Observed{Rows: [][]string{{"1", "2"}}, ColumnNames: []string{"a", "b"}}
	policy := validate.Policy{SortMode: rec.SortMode, ResultMode: record.Columnwise, ColNames: true}
	assert.NoError(t, validate.ValidateQuery(rec, obs, policy))
}

func TestValidateQueryColNamesMismatchFails(t *testing.T) {
	rec := &record.Record{
		SortMode:   record.NoSort,
		ColNames:   true,
		QueryExpect: record.QueryExpect{
			Kind:  record.QueryRows,
			Lines: []string{"a b", "1 2"},
		},
	}
	obs := record.Observed{Rows: [][]string{{"1", "2"}}, ColumnNames: []string{"x", "y"}}
	policy := validate.Policy{SortMode: rec.SortMode, ResultMode: record.Columnwise, ColNames: true}
	assert.Error(t, validate.ValidateQuery(rec, obs, policy))
}

func TestValidateQueryColNamesIgnoredWhenPolicyOff(t *testing.T) {
	rec := &record.Record{
		SortMode:   record.NoSort,
		QueryExpect: record.QueryExpect{
			Kind:  record.QueryRows,
			Lines: []string{"1 2"},
		},
	}
	obs := record.Observed{Rows: [][]string{{"1", "2"}}, ColumnNames: []string{"a", "b"}}
	policy := validate.Policy{SortMode: rec.SortMode, ResultMode: record.Columnwise}
	assert.NoError(t, validate.ValidateQuery(rec, obs, policy))
}

func TestLineariseExportedHelperMatchesPolicy(t *testing.T) {
	policy := validate.Policy{SortMode: record.RowSort, ResultMode: record.Columnwise}
	lines := validate.Linearise([][]string{{"2"}, {"1"}}, policy)
	assert.Equal(t, []string{"1", "2"}, lines)
}

func hashOf(lines ...string) string {
	h := md5.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte("\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}
