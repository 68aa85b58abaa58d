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

package record

// Observed is what actually happened when a statement, query, or system
// record was executed, independent of what the file said to expect. Both
// package validate (compare against Expect) and package unparse (rewrite
// Expect to match) operate on it, so it lives here rather than in either
// of them to avoid a dependency cycle.
type Observed struct {
	// Err is the database/system error message, or "" on success.
	Err string

	// RowsAffected is valid for a successful statement.
	RowsAffected int64

	// Types and Rows are valid for a successful query: Rows is row-major,
	// Rows[i][j] is the textual rendering of row i, column j, as the
	// adapter rendered it; ColumnType-specific normalisation for
	// comparison happens later, in package validate.
	Types []ColumnType
	Rows  [][]string

	// ColumnNames is valid for a successful query whose adapter reports
	// them; used only when the query's colnames option is set.
	ColumnNames []string

	// Command results, valid for a successful system record.
	ExitCode int
	Stdout   string
	Stderr   string
}

// Succeeded reports whether the dispatch itself completed without error
// (a statement/query/system that ran to completion, whatever its result
// content turns out to be when validated).
func (o Observed) Succeeded() bool {
	return o.Err == ""
}
