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

import (
	"regexp"
	"strings"
	"time"
)

// ErrorKind distinguishes the two forms an expected error can take.
type ErrorKind int

const (
	// ErrorRegex is the single-line "error PATTERN" form on a statement
	// or query header; PATTERN is matched unanchored against the
	// database's error message.
	ErrorRegex ErrorKind = iota
	// ErrorMultiline is the block form: "error" with no pattern, followed
	// by a "----" block holding the exact expected text, trimmed of
	// leading/trailing whitespace before comparison.
	ErrorMultiline
)

// ExpectedError is either a regex to match unanchored against a one-line
// error message, or an exact (whitespace-trimmed) multi-line block.
type ExpectedError struct {
	Kind    ErrorKind
	Pattern string // set when Kind == ErrorRegex
	Text    string // set when Kind == ErrorMultiline
}

// Matches reports whether actual satisfies this expectation. An empty
// multiline Text matches any error message, per spec.
func (e ExpectedError) Matches(actual string) (bool, error) {
	switch e.Kind {
	case ErrorRegex:
		re, err := regexp.Compile(e.Pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(actual), nil
	case ErrorMultiline:
		if strings.TrimSpace(e.Text) == "" {
			return true, nil
		}
		return strings.TrimSpace(e.Text) == strings.TrimSpace(actual), nil
	default:
		return false, nil
	}
}

// Retry is the optional "retry N backoff D" clause. The parser accepts it
// on `statement ok`, on `query` headers that expect rows or an empty
// result, and on `system ok`; a `query error` header, multi-line or not,
// takes no retry clause.
type Retry struct {
	Attempts int
	Backoff  time.Duration
}

// StatementExpectKind enumerates the three forms a statement's expectation
// can take.
type StatementExpectKind int

const (
	StatementOk StatementExpectKind = iota
	StatementCount
	StatementErrorExpect
)

// StatementExpect is the expected outcome of a `statement` record.
type StatementExpect struct {
	Kind  StatementExpectKind
	Count int64         // valid when Kind == StatementCount
	Error ExpectedError // valid when Kind == StatementErrorExpect
	Retry *Retry
}

// QueryExpectKind enumerates the three forms a query's expectation can
// take.
type QueryExpectKind int

const (
	// QueryRows means a "----" block followed by zero or more literal
	// result lines, or a single "N values hashing to HEX" summary line.
	QueryRows QueryExpectKind = iota
	// QueryErrorExpect means "query error ..." or a multi-line error
	// block under "----".
	QueryErrorExpect
	// QueryEmptyExpect means the query record has no "----" block at
	// all: it is only checked for success, never compared.
	QueryEmptyExpect
)

// QueryExpect is the expected outcome of a `query` record.
type QueryExpect struct {
	Kind  QueryExpectKind
	Lines []string      // valid when Kind == QueryRows (raw lines, hash-line form included verbatim)
	Error ExpectedError // valid when Kind == QueryErrorExpect
	Retry *Retry
}

// SystemExpectKind enumerates the outcomes a `system` record can expect.
type SystemExpectKind int

const (
	SystemOk SystemExpectKind = iota
)

// SystemExpect is the expected outcome of a `system` record.
type SystemExpect struct {
	Kind  SystemExpectKind
	Retry *Retry
}
