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

package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqllogictest-go/slt/record"
	"github.com/sqllogictest-go/slt/unparse"
)

func TestParseStatementOk(t *testing.T) {
	records, err := ParseString(`statement ok
CREATE TABLE t1(a INTEGER, b INTEGER)


`, "virtual.test")
	require.NoError(t, err)
	require.Len(t, records, 2)

	stmt := records[0]
	assert.Equal(t, record.KindStatement, stmt.Kind)
	assert.Equal(t, record.StatementOk, stmt.StatementExpect.Kind)
	assert.Equal(t, "CREATE TABLE t1(a INTEGER, b INTEGER)", stmt.SQL)
	assert.Equal(t, record.KindWhitespace, records[1].Kind)
}

func TestParseStatementCount(t *testing.T) {
	records, err := ParseString("statement count 3\nDELETE FROM t1 WHERE a > 1\n", "virtual.test")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.StatementCount, records[0].StatementExpect.Kind)
	assert.EqualValues(t, 3, records[0].StatementExpect.Count)
}

func TestParseStatementErrorInline(t *testing.T) {
	records, err := ParseString("statement error duplicate column name.*\nALTER TABLE t1 ADD COLUMN a INTEGER\n", "virtual.test")
	require.NoError(t, err)
	require.Len(t, records, 1)

	exp := records[0].StatementExpect.Error
	assert.Equal(t, record.ErrorRegex, exp.Kind)
	assert.Equal(t, "duplicate column name.*", exp.Pattern)

	ok, err := exp.Matches("duplicate column name: a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseStatementErrorMultiline(t *testing.T) {
	src := "statement error\nALTER TABLE t1 ADD COLUMN a INTEGER\n----\nduplicate column name: a\n\n\n"
	records, err := ParseString(src, "virtual.test")
	require.NoError(t, err)
	require.Len(t, records, 1)

	exp := records[0].StatementExpect.Error
	assert.Equal(t, record.ErrorMultiline, exp.Kind)
	assert.Equal(t, "duplicate column name: a", exp.Text)
}

func TestParseQueryRows(t *testing.T) {
	src := "query III nosort\nSELECT a, b, c FROM t1 ORDER BY a\n----\n1\n2\n3\n"
	records, err := ParseString(src, "virtual.test")
	require.NoError(t, err)
	require.Len(t, records, 1)

	q := records[0]
	assert.Equal(t, record.KindQuery, q.Kind)
	assert.Equal(t, []record.ColumnType{'I', 'I', 'I'}, q.Types)
	assert.Equal(t, record.NoSort, q.SortMode)
	assert.True(t, q.SortModeExplicit)
	assert.Equal(t, record.QueryRows, q.QueryExpect.Kind)
	assert.Equal(t, []string{"1", "2", "3"}, q.QueryExpect.Lines)
}

func TestParseQueryOmittedSortModeToken(t *testing.T) {
	src := "query I\nSELECT a FROM t1\n----\n1\n"
	records, err := ParseString(src, "virtual.test")
	require.NoError(t, err)
	require.Len(t, records, 1)

	q := records[0]
	assert.Equal(t, record.NoSort, q.SortMode)
	assert.False(t, q.SortModeExplicit)
}

func TestParseQueryWithLabelAndRetry(t *testing.T) {
	src := "query I rowsort join-4-1 retry 3 backoff 50ms\nSELECT a FROM t1\n----\n1\n"
	records, err := ParseString(src, "virtual.test")
	require.NoError(t, err)
	require.Len(t, records, 1)

	q := records[0]
	assert.Equal(t, record.RowSort, q.SortMode)
	assert.Equal(t, "join-4-1", q.Label)
	require.NotNil(t, q.QueryExpect.Retry)
	assert.Equal(t, 3, q.QueryExpect.Retry.Attempts)
	assert.Equal(t, 50*time.Millisecond, q.QueryExpect.Retry.Backoff)
}

func TestParseQueryColNames(t *testing.T) {
	src := "query II rowsort colnames\nSELECT a, b FROM t1\n----\na b\n1 2\n"
	records, err := ParseString(src, "virtual.test")
	require.NoError(t, err)
	require.Len(t, records, 1)

	q := records[0]
	assert.True(t, q.ColNames)
	assert.Equal(t, record.RowSort, q.SortMode)
	assert.Equal(t, "", q.Label)
}

func TestParseQueryColNamesWithLabel(t *testing.T) {
	src := "query I nosort colnames my-label\nSELECT a FROM t1\n----\na\n1\n"
	records, err := ParseString(src, "virtual.test")
	require.NoError(t, err)
	require.Len(t, records, 1)

	q := records[0]
	assert.True(t, q.ColNames)
	assert.Equal(t, "my-label", q.Label)
}

func TestParseQueryEmpty(t *testing.T) {
	records, err := ParseString("query I nosort\nSELECT a FROM t1 WHERE 1=0\n\n", "virtual.test")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.QueryEmptyExpect, records[0].QueryExpect.Kind)
}

func TestParseQueryErrorRejectsSeparator(t *testing.T) {
	src := "query error division by zero\nSELECT 1/0\n----\nshould not be here\n"
	_, err := ParseString(src, "virtual.test")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, UnexpectedToken, pe.Kind)
}

func TestConditionsAndConnectionFoldIntoNextRecord(t *testing.T) {
	src := "onlyif mysql\nskipif postgresql\nconnection worker1\nstatement ok\nCREATE TABLE t1(a INTEGER)\n"
	records, err := ParseString(src, "virtual.test")
	require.NoError(t, err)
	require.Len(t, records, 1)

	stmt := records[0]
	assert.Equal(t, "worker1", stmt.Connection)
	require.Len(t, stmt.Conditions, 2)
	assert.Equal(t, record.OnlyIf, stmt.Conditions[0].Kind)
	assert.Equal(t, "mysql", stmt.Conditions[0].Label)
	assert.Equal(t, record.SkipIf, stmt.Conditions[1].Kind)
	assert.Equal(t, "postgresql", stmt.Conditions[1].Label)
}

func TestMisplacedConditionAtEOF(t *testing.T) {
	_, err := ParseString("onlyif mysql\n", "virtual.test")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, MisplacedCondition, pe.Kind)
}

func TestMisplacedConnectionBeforeHalt(t *testing.T) {
	_, err := ParseString("connection worker1\nhalt\n", "virtual.test")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, MisplacedConnection, pe.Kind)
}

func TestParseHashThresholdSleepHaltControl(t *testing.T) {
	src := "hash-threshold 16\nsleep 50ms\ncontrol sortmode rowsort\nhalt\n"
	records, err := ParseString(src, "virtual.test")
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, 16, records[0].HashThreshold)
	assert.Equal(t, 50*time.Millisecond, records[1].SleepFor)
	assert.Equal(t, record.ControlSortMode, records[2].Ctrl.Kind)
	assert.Equal(t, record.RowSort, records[2].Ctrl.SortMode)
	assert.Equal(t, record.KindHalt, records[3].Kind)
}

func TestParseSystemOkWithStdout(t *testing.T) {
	src := "system ok\necho hello\n----\nhello\n\n\n"
	records, err := ParseString(src, "virtual.test")
	require.NoError(t, err)
	require.Len(t, records, 1)

	sys := records[0]
	assert.Equal(t, "echo hello", sys.Command)
	require.NotNil(t, sys.Stdout)
	assert.Equal(t, "hello", *sys.Stdout)
}

func TestParseIncludeExpandsChildAndBrackets(t *testing.T) {
	dir := t.TempDir()
	child := filepath.Join(dir, "child.test")
	require.NoError(t, os.WriteFile(child, []byte("statement ok\nSELECT 1\n"), 0o644))

	parent := filepath.Join(dir, "parent.test")
	require.NoError(t, os.WriteFile(parent, []byte("include child.test\n"), 0o644))

	records, err := ParseFile(parent)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, record.KindInclude, records[0].Kind)
	assert.Equal(t, "child.test", records[0].Glob)
	assert.Equal(t, record.KindInjected, records[1].Kind)
	assert.Equal(t, record.BeginInclude, records[1].Injected)
	assert.Equal(t, record.KindStatement, records[2].Kind)
}

func TestParseIncludeEmptyGlobIsError(t *testing.T) {
	dir := t.TempDir()
	parent := filepath.Join(dir, "parent.test")
	require.NoError(t, os.WriteFile(parent, []byte("include nothing-matches-*.test\n"), 0o644))

	_, err := ParseFile(parent)
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, EmptyInclude, pe.Kind)
}

func TestParseIncludeCycleIsError(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.test")
	b := filepath.Join(dir, "b.test")
	require.NoError(t, os.WriteFile(a, []byte("include b.test\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("include a.test\n"), 0o644))

	_, err := ParseFile(a)
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, IncludeCycle, pe.Kind)
}

func TestParseCommentsAndBlankLinesPreserved(t *testing.T) {
	src := "# a leading comment\n\nstatement ok\nSELECT 1\n"
	records, err := ParseString(src, "virtual.test")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, record.KindComment, records[0].Kind)
	assert.Equal(t, record.KindWhitespace, records[1].Kind)
	assert.Equal(t, record.KindStatement, records[2].Kind)
}

func TestParseFileGoldenSelect1(t *testing.T) {
	records, err := ParseFile(filepath.Join("testdata", "select1.test"))
	require.NoError(t, err)

	var statements, queries int
	var sawHalt bool
	for _, r := range records {
		switch r.Kind {
		case record.KindStatement:
			statements++
		case record.KindQuery:
			queries++
		case record.KindHalt:
			sawHalt = true
		}
	}
	assert.Equal(t, 4, statements)
	assert.Equal(t, 2, queries)
	assert.True(t, sawHalt)

	var create, insert1, insert2, query, onlyifQuery, skipifStmt *record.Record
	for _, r := range records {
		switch {
		case r.Kind == record.KindStatement && strings.HasPrefix(r.SQL, "CREATE TABLE"):
			create = r
		case r.Kind == record.KindStatement && strings.Contains(r.SQL, "1, 2, 3.5"):
			insert1 = r
		case r.Kind == record.KindStatement && strings.Contains(r.SQL, "2, 4, 7.0"):
			insert2 = r
		case r.Kind == record.KindQuery && r.SortMode == record.RowSort:
			query = r
		case r.Kind == record.KindQuery && len(r.Conditions) > 0:
			onlyifQuery = r
		case r.Kind == record.KindStatement && r.StatementExpect.Kind == record.StatementErrorExpect:
			skipifStmt = r
		}
	}

	require.NotNil(t, create)
	require.NotNil(t, insert1)
	require.NotNil(t, insert2)
	require.NotNil(t, query)
	require.NotNil(t, onlyifQuery)
	require.NotNil(t, skipifStmt)

	assert.Equal(t, []record.ColumnType{'I', 'I', 'R', 'T'}, query.Types)
	assert.Equal(t, record.QueryRows, query.QueryExpect.Kind)
	assert.Equal(t, []string{"1", "2", "3.500", "hello", "2", "4", "7.000", "world"}, query.QueryExpect.Lines)

	require.Len(t, onlyifQuery.Conditions, 1)
	assert.Equal(t, record.OnlyIf, onlyifQuery.Conditions[0].Kind)
	assert.Equal(t, "mysql", onlyifQuery.Conditions[0].Label)

	require.Len(t, skipifStmt.Conditions, 1)
	assert.Equal(t, record.SkipIf, skipifStmt.Conditions[0].Kind)
	assert.Equal(t, "table t1 already exists", skipifStmt.StatementExpect.Error.Pattern)

	assert.False(t, onlyifQuery.SortModeExplicit)
	assert.Equal(t, record.NoSort, onlyifQuery.SortMode)

	src, err := os.ReadFile(filepath.Join("testdata", "select1.test"))
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, unparse.WriteRecords(&b, records, unparse.Options{}))
	assert.Equal(t, string(src), b.String())
}
