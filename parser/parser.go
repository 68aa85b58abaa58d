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
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sqllogictest-go/slt/record"
)

// Separator is the "----" token dividing a query/statement/system body
// from its expected results.
const Separator = "----"

// ParseFile parses the sqllogictest file at path, expanding any `include`
// directives it contains relative to its directory.
func ParseFile(path string) ([]*record.Record, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return parseFileWithStack(abs, nil)
}

// ParseString parses src as if it had been read from virtualPath. Include
// directives are still resolved against virtualPath's directory on disk;
// this is primarily useful for tests operating on an in-memory copy of a
// file that also exists on disk.
func ParseString(src, virtualPath string) ([]*record.Record, error) {
	return parseRecords(src, virtualPath, nil)
}

func parseFileWithStack(path string, includeStack []string) ([]*record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseRecords(string(data), path, includeStack)
}

// parseRecords is the core record-level grammar. It walks src line by
// line, folding onlyif/skipif/connection directives into the
// statement/query that follows them (invariants I2/I3), expanding include
// directives inline, and preserving blank lines and comment-only lines
// verbatim as KindWhitespace/KindComment records so that unparsing the
// result reproduces src exactly (I1).
func parseRecords(src, path string, includeStack []string) ([]*record.Record, error) {
	scanner := NewLineScanner(strings.NewReader(src))

	var records []*record.Record
	var pendingConditions []record.Condition
	var pendingConnection string
	var havePending bool

	loc := func() record.Location {
		return record.Location{Path: path, Line: scanner.LineNum, IncludeStack: includeStack}
	}

	emit := func(rec *record.Record) {
		if rec.Kind == record.KindStatement || rec.Kind == record.KindQuery {
			rec.Conditions = pendingConditions
			rec.Connection = pendingConnection
			pendingConditions = nil
			pendingConnection = ""
			havePending = false
		}
		records = append(records, rec)
	}

	for scanner.Scan() {
		line := scanner.Text()

		if IsBlankLine(line) {
			records = append(records, &record.Record{Kind: record.KindWhitespace, Loc: loc(), Text: line})
			continue
		}
		if IsCommentOnly(line) {
			records = append(records, &record.Record{Kind: record.KindComment, Loc: loc(), Text: line})
			continue
		}

		fields := Fields(line)
		if len(fields) == 0 {
			continue
		}
		headerLoc := loc()

		switch fields[0] {
		case "onlyif", "skipif":
			if len(fields) < 2 {
				return nil, newParseError(UnexpectedToken, headerLoc, "%s requires a label", fields[0])
			}
			kind := record.OnlyIf
			if fields[0] == "skipif" {
				kind = record.SkipIf
			}
			pendingConditions = append(pendingConditions, record.Condition{Kind: kind, Label: fields[1]})
			havePending = true

		case "connection":
			if len(fields) < 2 {
				return nil, newParseError(UnexpectedToken, headerLoc, "connection requires a name")
			}
			pendingConnection = fields[1]
			havePending = true

		case "statement":
			rec, err := parseStatement(scanner, headerLoc, fields)
			if err != nil {
				return nil, err
			}
			emit(rec)

		case "query":
			rec, err := parseQuery(scanner, headerLoc, fields)
			if err != nil {
				return nil, err
			}
			emit(rec)

		case "system":
			if havePending {
				return nil, misplacedErr(headerLoc, pendingConditions, pendingConnection)
			}
			rec, err := parseSystem(scanner, headerLoc, fields)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)

		case "sleep":
			if havePending {
				return nil, misplacedErr(headerLoc, pendingConditions, pendingConnection)
			}
			rec, err := parseSleep(headerLoc, fields)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)

		case "halt":
			if havePending {
				return nil, misplacedErr(headerLoc, pendingConditions, pendingConnection)
			}
			records = append(records, &record.Record{Kind: record.KindHalt, Loc: headerLoc})

		case "hash-threshold":
			if havePending {
				return nil, misplacedErr(headerLoc, pendingConditions, pendingConnection)
			}
			rec, err := parseHashThreshold(headerLoc, fields)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)

		case "include":
			if havePending {
				return nil, misplacedErr(headerLoc, pendingConditions, pendingConnection)
			}
			if len(fields) < 2 {
				return nil, newParseError(UnexpectedToken, headerLoc, "include requires a glob")
			}
			glob := fields[1]
			records = append(records, &record.Record{Kind: record.KindInclude, Loc: headerLoc, Glob: glob})
			expanded, err := expandInclude(path, glob, includeStack, headerLoc)
			if err != nil {
				return nil, err
			}
			records = append(records, expanded...)

		case "control":
			if havePending {
				return nil, misplacedErr(headerLoc, pendingConditions, pendingConnection)
			}
			rec, err := parseControl(headerLoc, fields)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)

		default:
			return nil, newParseError(UnexpectedToken, headerLoc, "unhandled directive %q", fields[0])
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if havePending {
		return nil, misplacedErr(loc(), pendingConditions, pendingConnection)
	}

	return records, nil
}

func misplacedErr(loc record.Location, conditions []record.Condition, connection string) error {
	if len(conditions) > 0 {
		return newParseError(MisplacedCondition, loc, "condition not followed by a statement or query")
	}
	return newParseError(MisplacedConnection, loc, "connection %q not followed by a statement or query", connection)
}

// readBody reads continuation lines (the SQL/command body of a record)
// until a blank line or a "----" separator, whichever comes first.
// sawSeparator reports which one terminated the body; EOF behaves like a
// blank line.
func readBody(scanner *LineScanner) (lines []string, sawSeparator bool) {
	for scanner.Scan() {
		line := scanner.Text()
		if IsBlankLine(line) {
			return lines, false
		}
		if strings.TrimSpace(line) == Separator {
			return lines, true
		}
		lines = append(lines, StripComment(line))
	}
	return lines, false
}

// readExpectedLines reads a query's literal/hash expected-result lines
// until a blank line (or EOF).
func readExpectedLines(scanner *LineScanner) []string {
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if IsBlankLine(line) {
			return lines
		}
		lines = append(lines, StripComment(line))
	}
	return lines
}

// readMultilineBlock reads an exact multi-line error/stdout block: lines
// are taken verbatim (no comment stripping -- '#' has no special meaning
// inside expected error text), and a single embedded blank line is
// content while two consecutive blank lines terminate the block.
// terminated is false if EOF was reached without ever seeing two
// consecutive blank lines.
func readMultilineBlock(scanner *LineScanner) (text string, terminated bool) {
	var lines []string
	pendingBlanks := 0
	for scanner.Scan() {
		line := scanner.Text()
		if IsBlankLine(line) {
			pendingBlanks++
			if pendingBlanks == 2 {
				return strings.Join(lines, "\n"), true
			}
			continue
		}
		if pendingBlanks == 1 {
			lines = append(lines, "")
			pendingBlanks = 0
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), false
}

func parseRetryClause(fields []string, loc record.Location) (*record.Retry, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	if fields[0] != "retry" {
		return nil, newParseError(UnexpectedToken, loc, "unexpected trailing token %q", fields[0])
	}
	if len(fields) < 4 || fields[2] != "backoff" {
		return nil, newParseError(UnexpectedToken, loc, `malformed retry clause, expected "retry N backoff D"`)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, newParseError(InvalidNumber, loc, "invalid retry count %q", fields[1])
	}
	d, err := time.ParseDuration(fields[3])
	if err != nil {
		return nil, newParseError(InvalidDuration, loc, "invalid backoff duration %q", fields[3])
	}
	return &record.Retry{Attempts: n, Backoff: d}, nil
}

func parseStatement(scanner *LineScanner, loc record.Location, fields []string) (*record.Record, error) {
	if len(fields) < 2 {
		return nil, newParseError(UnexpectedToken, loc, "statement requires ok, count, or error")
	}
	rec := &record.Record{Kind: record.KindStatement, Loc: loc}

	switch fields[1] {
	case "ok":
		retry, err := parseRetryClause(fields[2:], loc)
		if err != nil {
			return nil, err
		}
		rec.StatementExpect = record.StatementExpect{Kind: record.StatementOk, Retry: retry}
		body, _ := readBody(scanner)
		rec.SQL = strings.Join(body, "\n")
		return rec, nil

	case "count":
		if len(fields) < 3 {
			return nil, newParseError(InvalidNumber, loc, "statement count requires a number")
		}
		n, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, newParseError(InvalidNumber, loc, "invalid count %q", fields[2])
		}
		rec.StatementExpect = record.StatementExpect{Kind: record.StatementCount, Count: n}
		body, _ := readBody(scanner)
		rec.SQL = strings.Join(body, "\n")
		return rec, nil

	case "error":
		if rest := fields[2:]; len(rest) > 0 {
			pattern := strings.Join(rest, " ")
			rec.StatementExpect = record.StatementExpect{
				Kind:  record.StatementErrorExpect,
				Error: record.ExpectedError{Kind: record.ErrorRegex, Pattern: pattern},
			}
			body, sawSep := readBody(scanner)
			if sawSep {
				return nil, newParseError(UnexpectedToken, loc, "---- is not allowed after a statement with an inline error pattern")
			}
			rec.SQL = strings.Join(body, "\n")
			return rec, nil
		}

		body, sawSep := readBody(scanner)
		rec.SQL = strings.Join(body, "\n")
		if !sawSep {
			rec.StatementExpect = record.StatementExpect{
				Kind:  record.StatementErrorExpect,
				Error: record.ExpectedError{Kind: record.ErrorMultiline, Text: ""},
			}
			return rec, nil
		}
		text, terminated := readMultilineBlock(scanner)
		if !terminated {
			return nil, newParseError(UnterminatedErrorBlock, loc, "multi-line error block never terminated by two blank lines")
		}
		rec.StatementExpect = record.StatementExpect{
			Kind:  record.StatementErrorExpect,
			Error: record.ExpectedError{Kind: record.ErrorMultiline, Text: text},
		}
		return rec, nil

	default:
		return nil, newParseError(UnexpectedToken, loc, "unexpected token %q after statement", fields[1])
	}
}

func parseQuery(scanner *LineScanner, loc record.Location, fields []string) (*record.Record, error) {
	rec := &record.Record{Kind: record.KindQuery, Loc: loc}

	if len(fields) >= 2 && fields[1] == "error" {
		if rest := fields[2:]; len(rest) > 0 {
			pattern := strings.Join(rest, " ")
			rec.QueryExpect = record.QueryExpect{Kind: record.QueryErrorExpect, Error: record.ExpectedError{Kind: record.ErrorRegex, Pattern: pattern}}
			body, sawSep := readBody(scanner)
			if sawSep {
				return nil, newParseError(UnexpectedToken, loc, "---- is not allowed after a query with an inline error pattern")
			}
			rec.SQL = strings.Join(body, "\n")
			return rec, nil
		}

		body, sawSep := readBody(scanner)
		rec.SQL = strings.Join(body, "\n")
		if !sawSep {
			rec.QueryExpect = record.QueryExpect{Kind: record.QueryErrorExpect, Error: record.ExpectedError{Kind: record.ErrorMultiline, Text: ""}}
			return rec, nil
		}
		text, terminated := readMultilineBlock(scanner)
		if !terminated {
			return nil, newParseError(UnterminatedErrorBlock, loc, "multi-line error block never terminated by two blank lines")
		}
		rec.QueryExpect = record.QueryExpect{Kind: record.QueryErrorExpect, Error: record.ExpectedError{Kind: record.ErrorMultiline, Text: text}}
		return rec, nil
	}

	idx := 1
	if idx < len(fields) && fields[idx] != "retry" {
		rec.Types = record.ParseColumnTypes(fields[idx])
		idx++
	}
	if idx < len(fields) && fields[idx] != "retry" {
		mode, ok := record.ParseSortMode(fields[idx])
		if !ok {
			return nil, newParseError(InvalidSortMode, loc, "invalid sort mode %q", fields[idx])
		}
		rec.SortMode = mode
		rec.SortModeExplicit = true
		idx++
	}
	if idx < len(fields) && fields[idx] == "colnames" {
		rec.ColNames = true
		idx++
	}
	if idx < len(fields) && fields[idx] != "retry" {
		rec.Label = fields[idx]
		idx++
	}
	retry, err := parseRetryClause(fields[idx:], loc)
	if err != nil {
		return nil, err
	}

	body, sawSep := readBody(scanner)
	rec.SQL = strings.Join(body, "\n")
	if !sawSep {
		rec.QueryExpect = record.QueryExpect{Kind: record.QueryEmptyExpect, Retry: retry}
		return rec, nil
	}

	rec.QueryExpect = record.QueryExpect{Kind: record.QueryRows, Lines: readExpectedLines(scanner), Retry: retry}
	return rec, nil
}

func parseSystem(scanner *LineScanner, loc record.Location, fields []string) (*record.Record, error) {
	if len(fields) < 2 || fields[1] != "ok" {
		return nil, newParseError(UnexpectedToken, loc, `system requires "ok"`)
	}
	retry, err := parseRetryClause(fields[2:], loc)
	if err != nil {
		return nil, err
	}
	rec := &record.Record{Kind: record.KindSystem, Loc: loc, SystemExpect: record.SystemExpect{Kind: record.SystemOk, Retry: retry}}

	body, sawSep := readBody(scanner)
	rec.Command = strings.Join(body, "\n")
	if sawSep {
		out, terminated := readMultilineBlock(scanner)
		if !terminated {
			return nil, newParseError(UnterminatedErrorBlock, loc, "system stdout block never terminated by two blank lines")
		}
		rec.Stdout = &out
	}
	return rec, nil
}

func parseSleep(loc record.Location, fields []string) (*record.Record, error) {
	if len(fields) < 2 {
		return nil, newParseError(UnexpectedToken, loc, "sleep requires a duration")
	}
	d, err := time.ParseDuration(fields[1])
	if err != nil {
		return nil, newParseError(InvalidDuration, loc, "invalid duration %q", fields[1])
	}
	return &record.Record{Kind: record.KindSleep, Loc: loc, SleepFor: d}, nil
}

func parseHashThreshold(loc record.Location, fields []string) (*record.Record, error) {
	if len(fields) < 2 {
		return nil, newParseError(InvalidNumber, loc, "hash-threshold requires a number")
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, newParseError(InvalidNumber, loc, "invalid hash threshold %q", fields[1])
	}
	return &record.Record{Kind: record.KindHashThreshold, Loc: loc, HashThreshold: n}, nil
}

func parseControl(loc record.Location, fields []string) (*record.Record, error) {
	if len(fields) < 2 {
		return nil, newParseError(UnexpectedToken, loc, "control requires a directive")
	}
	switch fields[1] {
	case "substitution":
		if len(fields) < 3 || (fields[2] != "on" && fields[2] != "off") {
			return nil, newParseError(UnexpectedToken, loc, "control substitution requires on or off")
		}
		return &record.Record{Kind: record.KindControl, Loc: loc, Ctrl: record.Control{
			Kind: record.ControlSubstitution, SubstitutionOn: fields[2] == "on",
		}}, nil

	case "sortmode":
		if len(fields) < 3 {
			return nil, newParseError(InvalidSortMode, loc, "control sortmode requires a mode")
		}
		mode, ok := record.ParseSortMode(fields[2])
		if !ok {
			return nil, newParseError(InvalidSortMode, loc, "invalid sort mode %q", fields[2])
		}
		return &record.Record{Kind: record.KindControl, Loc: loc, Ctrl: record.Control{Kind: record.ControlSortMode, SortMode: mode}}, nil

	case "resultmode":
		if len(fields) < 3 {
			return nil, newParseError(InvalidResultMode, loc, "control resultmode requires a mode")
		}
		mode, ok := record.ParseResultMode(fields[2])
		if !ok {
			return nil, newParseError(InvalidResultMode, loc, "invalid result mode %q", fields[2])
		}
		return &record.Record{Kind: record.KindControl, Loc: loc, Ctrl: record.Control{Kind: record.ControlResultMode, ResultMode: mode}}, nil

	default:
		return nil, newParseError(UnknownControlDirective, loc, "unknown control directive %q", fields[1])
	}
}

// expandInclude resolves glob relative to the directory of the file
// containing the include directive (currentPath), recursively parses
// every match in lexicographic order, and brackets each child's records
// with BeginInclude/EndInclude pseudo-records so Location.IncludeStack can
// be reconstructed later. A glob matching zero files is a parse error, not
// a silent no-op; a file that is already on the include stack is an
// IncludeCycle error.
func expandInclude(currentPath, glob string, includeStack []string, loc record.Location) ([]*record.Record, error) {
	dir := filepath.Dir(currentPath)
	pattern := glob
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(dir, glob)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, newParseError(UnexpectedToken, loc, "invalid include glob %q: %v", glob, err)
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, newParseError(EmptyInclude, loc, "include %q matched no files", glob)
	}

	newStack := append(append([]string{}, includeStack...), currentPath)

	var out []*record.Record
	for _, m := range matches {
		abs, err := filepath.Abs(m)
		if err != nil {
			return nil, err
		}
		for _, p := range newStack {
			if p == abs {
				return nil, newParseError(IncludeCycle, loc, "include cycle: %s is already being expanded", abs)
			}
		}

		out = append(out, &record.Record{Kind: record.KindInjected, Loc: loc, Injected: record.BeginInclude, Text: abs})
		children, err := parseFileWithStack(abs, newStack)
		if err != nil {
			return nil, err
		}
		out = append(out, children...)
		out = append(out, &record.Record{Kind: record.KindInjected, Loc: loc, Injected: record.EndInclude, Text: abs})
	}
	return out, nil
}
