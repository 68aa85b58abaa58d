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

package unparse

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/sqllogictest-go/slt/record"
)

// UpdateRecordWithOutput returns a copy of rec whose expectation fields
// reflect obs, while retaining rec's Conditions, Connection, Types,
// SortMode, Label, and retry clause. It never mutates rec. resultMode is
// the ambient Config.ResultMode in effect when rec ran — a query header
// never carries its own result-mode token, so the caller must supply it.
//
// A query that observed zero rows keeps its `query` shape unless
// opts.CoerceEmptyQueryToStatementCount is set, in which case it becomes
// a `statement count 0` record instead, for callers that want a query
// whose result has degenerated to a plain existence check rewritten that
// way. The slt command never sets that option.
func UpdateRecordWithOutput(rec *record.Record, obs record.Observed, resultMode record.ResultMode, opts Options) *record.Record {
	updated := *rec

	switch rec.Kind {
	case record.KindStatement:
		if !obs.Succeeded() {
			updated.StatementExpect = record.StatementExpect{
				Kind:  record.StatementErrorExpect,
				Error: record.ExpectedError{Kind: record.ErrorRegex, Pattern: regexp.QuoteMeta(obs.Err)},
				Retry: rec.StatementExpect.Retry,
			}
			return &updated
		}
		updated.StatementExpect = record.StatementExpect{
			Kind:  record.StatementCount,
			Count: obs.RowsAffected,
			Retry: rec.StatementExpect.Retry,
		}
		return &updated

	case record.KindQuery:
		if !obs.Succeeded() {
			updated.QueryExpect = record.QueryExpect{
				Kind:  record.QueryErrorExpect,
				Error: record.ExpectedError{Kind: record.ErrorRegex, Pattern: regexp.QuoteMeta(obs.Err)},
				Retry: rec.QueryExpect.Retry,
			}
			return &updated
		}

		lines := linearise(obs.Rows, resultMode)
		if opts.HashThreshold > 0 {
			valueCount := 0
			for _, row := range obs.Rows {
				valueCount += len(row)
			}
			if valueCount >= opts.HashThreshold {
				lines = []string{fmt.Sprintf("%d values hashing to %s", valueCount, hashLines(lines))}
			}
		}
		if len(lines) == 0 && opts.CoerceEmptyQueryToStatementCount {
			updated.Kind = record.KindStatement
			updated.Types = nil
			updated.SortMode = record.NoSort
			updated.SortModeExplicit = false
			updated.Label = ""
			updated.QueryExpect = record.QueryExpect{}
			updated.StatementExpect = record.StatementExpect{Kind: record.StatementCount, Count: 0}
			return &updated
		}

		updated.QueryExpect = record.QueryExpect{Kind: record.QueryRows, Lines: lines, Retry: rec.QueryExpect.Retry}
		return &updated

	case record.KindSystem:
		// SystemExpect only models the successful "ok" outcome; a failing
		// command has nothing to fold into, so the record is returned
		// unchanged.
		if !obs.Succeeded() || obs.ExitCode != 0 {
			return &updated
		}
		if rec.Stdout != nil {
			out := obs.Stdout
			updated.Stdout = &out
		}
		return &updated

	default:
		return &updated
	}
}

// linearise flattens a row-major result set into the flat line list a
// query record's "----" block holds, honoring ResultMode.
func linearise(rows [][]string, mode record.ResultMode) []string {
	if mode == record.Valuewise {
		var out []string
		for _, row := range rows {
			out = append(out, row...)
		}
		return out
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, strings.Join(row, " "))
	}
	return out
}

// hashLines computes the MD5 digest the hash-threshold shorthand
// commits to: each line followed by a newline, matching the teacher's
// hashResults (go/logictest/runner.go) and validate.hashLines.
func hashLines(lines []string) string {
	h := md5.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte("\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}
