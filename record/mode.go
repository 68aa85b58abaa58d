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

// SortMode controls how the actual result of a query is ordered before it
// is compared against the expected block. The expected block is always
// taken to already be in the right order; only the actual result is
// sorted (this matches the post-0.9.0 sqllogictest semantics).
type SortMode int

const (
	// NoSort compares actual and expected rows in the order the database
	// returned them.
	NoSort SortMode = iota
	// RowSort sorts complete rows lexicographically after linearisation,
	// preserving column order within each row.
	RowSort
	// ValueSort lifts the result to valuewise form and sorts every value
	// independently of which row or column it came from.
	ValueSort
)

func (m SortMode) String() string {
	switch m {
	case RowSort:
		return "rowsort"
	case ValueSort:
		return "valuesort"
	default:
		return "nosort"
	}
}

// ParseSortMode parses a sort-mode token from a query header. ok is false
// for anything other than the three recognised tokens.
func ParseSortMode(s string) (mode SortMode, ok bool) {
	switch s {
	case "nosort", "":
		return NoSort, true
	case "rowsort":
		return RowSort, true
	case "valuesort":
		return ValueSort, true
	default:
		return NoSort, false
	}
}

// ResultMode controls how a multi-column result set is linearised into the
// flat list of lines a sort mode operates on.
type ResultMode int

const (
	// Columnwise emits one line per row, columns separated by a single
	// space. This is the default.
	Columnwise ResultMode = iota
	// Valuewise emits one line per value, the classic SQLite format.
	Valuewise
)

func (m ResultMode) String() string {
	if m == Valuewise {
		return "valuewise"
	}
	return "columnwise"
}

// ParseResultMode parses a result-mode token, as used by `control
// resultmode MODE`.
func ParseResultMode(s string) (mode ResultMode, ok bool) {
	switch s {
	case "columnwise", "":
		return Columnwise, true
	case "valuewise":
		return Valuewise, true
	default:
		return Columnwise, false
	}
}

// ColumnType is a single character from a query's type-string (e.g. the
// 'I' in "query ITR"). Its semantics — how a cell of this type is
// normalised for comparison — belong to the comparison step, not to the
// parser; see validate.Normalizer, which receives each cell's ColumnType.
type ColumnType byte

// ParseColumnTypes splits a type-string header token ("ITR") into its
// individual column types.
func ParseColumnTypes(s string) []ColumnType {
	types := make([]ColumnType, len(s))
	for i := 0; i < len(s); i++ {
		types[i] = ColumnType(s[i])
	}
	return types
}

// ColumnTypesString renders a column-type slice back to its header token
// form, e.g. []ColumnType{'I','T','R'} -> "ITR".
func ColumnTypesString(types []ColumnType) string {
	b := make([]byte, len(types))
	for i, t := range types {
		b[i] = byte(t)
	}
	return string(b)
}
