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

import "time"

// Kind identifies which variant of the record union a Record holds. Record
// is encoded as one flat struct with a Kind tag rather than as an
// interface hierarchy, following the teacher's original
// RecordType/Record split: the parser builds variants directly and the
// runner dispatches by tag (see spec.md §9, "Record polymorphism").
type Kind int

const (
	KindStatement Kind = iota
	KindQuery
	KindSystem
	KindSleep
	KindInclude
	KindControl
	KindConnection
	KindHalt
	KindHashThreshold
	KindWhitespace
	KindComment
	KindInjected
)

func (k Kind) String() string {
	switch k {
	case KindStatement:
		return "statement"
	case KindQuery:
		return "query"
	case KindSystem:
		return "system"
	case KindSleep:
		return "sleep"
	case KindInclude:
		return "include"
	case KindControl:
		return "control"
	case KindConnection:
		return "connection"
	case KindHalt:
		return "halt"
	case KindHashThreshold:
		return "hash-threshold"
	case KindWhitespace:
		return "whitespace"
	case KindComment:
		return "comment"
	case KindInjected:
		return "injected"
	default:
		return "unknown"
	}
}

// Record is a single unit of a sqllogictest file. Every record carries a
// Location; which of the remaining fields are meaningful is determined by
// Kind. Unknown control keywords and error kinds are rejected at parse
// time (see parser.ErrorKind) rather than silently accepted, per spec.md
// §9 "Open extension".
//
// `onlyif`/`skipif` and `connection` directives are folded by the parser
// into the Conditions/Connection fields of the statement or query they
// precede (spec.md invariants I2/I3: a condition or connection "is
// consumed by" the record it binds to), rather than surviving as their
// own entries in the record stream. This keeps the Statement/Query shape
// exactly as spec.md §3 describes it ("Statement { conditions,
// connection?, ... }") without representing the same information twice.
type Record struct {
	Kind Kind
	Loc  Location

	// Shared by Statement and Query.
	Conditions []Condition
	Connection string // "" means the default connection
	SQL        string

	// Statement-only.
	StatementExpect StatementExpect

	// Query-only.
	Types []ColumnType
	// SortMode is NoSort when SortModeExplicit is false: the source
	// omitted the token and the ambient Config.SortMode applies instead
	// (spec.md §4.1; the SORTMODE token in a query header is optional).
	SortMode         SortMode
	SortModeExplicit bool
	Label            string
	ColNames         bool // "colnames": expect a column-name header row ahead of the data rows
	QueryExpect      QueryExpect

	// System-only.
	Command      string
	Stdout       *string // non-nil when a "----" stdout block was present
	SystemExpect SystemExpect

	// Sleep-only.
	SleepFor time.Duration

	// Include-only. Glob is retained verbatim even after expansion so the
	// unparser can reconstruct the original `include GLOB` line; the
	// records it expanded to are bracketed by KindInjected
	// BeginInclude/EndInclude records immediately following it in the
	// stream.
	Glob string

	// Control-only.
	Ctrl Control

	// HashThreshold-only.
	HashThreshold int

	// Whitespace/Comment-only: the verbatim text of a blank line or a
	// comment line, preserved for byte-identical round-trip (I1).
	Text string

	// Injected-only.
	Injected InjectedKind
}

// ShouldRun reports whether this record's conditions allow it to execute
// given the active label set. Non-statement/query records (and records
// with no conditions) always run.
func (r *Record) ShouldRun(labels map[string]struct{}) bool {
	return SatisfiesAll(r.Conditions, labels)
}
