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
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/sqllogictest-go/slt/record"
)

// linearise normalises and flattens a row-major result into the flat line
// list a sort mode operates on, per Policy.ResultMode and Policy.SortMode.
// Only the actual result is sorted here; the expected block in the file
// is always taken as already in the right order.
func linearise(rows [][]string, policy Policy) []string {
	normalize := policy.normalizer()

	normalized := make([][]string, len(rows))
	for i, row := range rows {
		nr := make([]string, len(row))
		for j, cell := range row {
			var ct record.ColumnType
			if j < len(policy.Types) {
				ct = policy.Types[j]
			}
			nr[j] = normalize(cell, ct)
		}
		normalized[i] = nr
	}

	if policy.SortMode == record.ValueSort {
		var values []string
		for _, row := range normalized {
			values = append(values, row...)
		}
		sort.Strings(values)
		return values
	}

	var lines []string
	if policy.ResultMode == record.Valuewise {
		for _, row := range normalized {
			lines = append(lines, row...)
		}
	} else {
		for _, row := range normalized {
			lines = append(lines, strings.Join(row, " "))
		}
	}
	if policy.SortMode == record.RowSort {
		sort.Strings(lines)
	}
	return lines
}

// Linearise exposes linearise's canonical comparison form to callers
// outside this package that need it for the same result (the Runner's
// label-reuse memoization).
func Linearise(rows [][]string, policy Policy) []string {
	return linearise(rows, policy)
}

// colNameLines renders a colnames header the same way linearise lays out
// a data row, but it is never reordered by SortMode: it is always the
// actual result's first line(s), matching how the column-name row isn't
// itself a value the database returned.
func colNameLines(names []string, mode record.ResultMode) []string {
	if mode == record.Valuewise {
		return append([]string{}, names...)
	}
	return []string{strings.Join(names, " ")}
}

var hashLineRegex = regexp.MustCompile(`^(\d+) values hashing to ([0-9a-fA-F]{32})$`)

// parseHashForm reports whether expected is the single-line "N values
// hashing to HEX" shorthand, per spec.md's hash-threshold form.
func parseHashForm(expected []string) (count int, hex string, ok bool) {
	if len(expected) != 1 {
		return 0, "", false
	}
	m := hashLineRegex.FindStringSubmatch(expected[0])
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return n, strings.ToLower(m[2]), true
}

// hashLines computes the MD5 digest of lines joined with a trailing
// newline after each, the form the hash-threshold shorthand commits to.
func hashLines(lines []string) string {
	h := md5.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte("\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// unifiedDiff renders a human-readable diff between expected and actual
// line sets for inclusion in a QueryResultMismatch/SystemStdoutMismatch.
func unifiedDiff(expected, actual []string) string {
	d := difflib.UnifiedDiff{
		A:        expected,
		B:        actual,
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	}
	out, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return strings.Join(actual, "\n")
	}
	return out
}

// compareResultLines implements the hash-threshold-aware comparison
// described for the validator: when expected is in hash form, actual is
// accepted iff its value count and MD5 digest match; otherwise expected
// and actual are compared line for line.
func compareResultLines(expected, actual []string) (string, bool) {
	if n, hex, ok := parseHashForm(expected); ok {
		actualHex := hashLines(actual)
		if len(actual) == n && actualHex == hex {
			return "", true
		}
		diff := unifiedDiff([]string{expected[0]}, []string{strconv.Itoa(len(actual)) + " values hashing to " + actualHex})
		return diff, false
	}

	if len(expected) == len(actual) {
		equal := true
		for i := range expected {
			if expected[i] != actual[i] {
				equal = false
				break
			}
		}
		if equal {
			return "", true
		}
	}
	return unifiedDiff(expected, actual), false
}
