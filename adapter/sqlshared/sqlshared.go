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

// Package sqlshared holds the database/sql execution and row-formatting
// logic common to every reference adapter (adapter/sqlite, adapter/mysql,
// adapter/postgres); each of those packages supplies only a driver name
// and a DSN builder on top of it.
package sqlshared

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/sqllogictest-go/slt/record"
	"github.com/sqllogictest-go/slt/runner"
)

// DB adapts a database/sql handle to runner.AsyncDB. It embeds
// runner.BaseAsyncDB for Sleep/RunCommand and overrides Shutdown to close
// the underlying pool.
type DB struct {
	runner.BaseAsyncDB
	Handle *sql.DB
	Engine string
}

// Open opens driverName with dsn and pings it once so connection failures
// surface immediately as a ConnectionFailed-shaped error rather than on
// the first query.
func Open(ctx context.Context, driverName, dsn, engine string) (*DB, error) {
	handle, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", engine, err)
	}
	if err := handle.PingContext(ctx); err != nil {
		handle.Close()
		return nil, fmt.Errorf("%s: connect: %w", engine, err)
	}
	return &DB{Handle: handle, Engine: engine}, nil
}

// EngineName returns the engine label this adapter contributes to the
// default label set (e.g. "sqlite", "mysql", "postgresql").
func (db *DB) EngineName() string { return db.Engine }

// Shutdown closes the connection pool.
func (db *DB) Shutdown(_ context.Context) error { return db.Handle.Close() }

// Run executes sql, dispatching to ExecContext for a bare write and to
// QueryContext otherwise, the same isWriteWithoutReturning split the rest
// of this module's domain stack uses for its own query executor.
func (db *DB) Run(ctx context.Context, query string) (runner.DBOutput, error) {
	if isWriteWithoutReturning(query) {
		res, err := db.Handle.ExecContext(ctx, query)
		if err != nil {
			return runner.DBOutput{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			n = 0
		}
		return runner.DBOutput{Kind: runner.StatementComplete, RowsAffected: n}, nil
	}

	rows, err := db.Handle.QueryContext(ctx, query)
	if err != nil {
		return runner.DBOutput{}, err
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return runner.DBOutput{}, err
	}
	names, err := rows.Columns()
	if err != nil {
		return runner.DBOutput{}, err
	}

	types := make([]record.ColumnType, len(colTypes))
	for i, ct := range colTypes {
		types[i] = inferColumnType(ct)
	}

	values := make([]any, len(colTypes))
	scanArgs := make([]any, len(colTypes))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	var out [][]string
	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return runner.DBOutput{}, err
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return runner.DBOutput{}, err
	}

	return runner.DBOutput{Kind: runner.Rows, Types: types, Values: out, ColumnNames: names}, nil
}

// isWriteWithoutReturning detects INSERT/UPDATE/DELETE/CREATE/DROP/ALTER/
// TRUNCATE statements without a RETURNING clause, the statement-style SQL that never produces a row set.
func isWriteWithoutReturning(sql string) bool {
	s := strings.ToUpper(strings.TrimSpace(sql))
	for _, kw := range []string{"INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER", "TRUNCATE"} {
		if strings.HasPrefix(s, kw) {
			return !strings.Contains(s, " RETURNING ") && !strings.HasSuffix(s, " RETURNING")
		}
	}
	return false
}

// inferColumnType maps a driver-reported column type name to the closest
// sqllogictest ColumnType ('I' integer, 'R' real, 'T' text), defaulting
// to text for anything unrecognised.
func inferColumnType(ct *sql.ColumnType) record.ColumnType {
	switch strings.ToUpper(ct.DatabaseTypeName()) {
	case "INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "INT2", "INT4", "INT8", "SERIAL", "BIGSERIAL":
		return record.ColumnType('I')
	case "FLOAT", "DOUBLE", "REAL", "DECIMAL", "NUMERIC", "FLOAT4", "FLOAT8":
		return record.ColumnType('R')
	default:
		return record.ColumnType('T')
	}
}

// formatValue renders one scanned cell the way a test file expects to see
// it: NULL as the literal "NULL", floats in plain (non-exponent) form,
// everything else via its natural string form. Canonicalising 'R' column
// cells into a comparison-stable decimal form is validate.DecimalNormalizer's
// job, not this adapter's.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", t)
	}
}
