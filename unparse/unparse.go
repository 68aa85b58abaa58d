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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sqllogictest-go/slt/record"
)

// Options controls a handful of unparse policy decisions that the spec
// leaves to the caller rather than to the file format itself.
type Options struct {
	// CoerceEmptyQueryToStatementCount, when true, makes
	// UpdateRecordWithOutput turn a Query that observed zero rows into a
	// `statement count 0` record instead of an empty `query` block.
	// Left false by default so `--override` preserves the query's shape.
	CoerceEmptyQueryToStatementCount bool

	// HashThreshold, when greater than zero, makes UpdateRecordWithOutput
	// collapse a query's observed rows into the "N values hashing to HEX"
	// shorthand once the observed value count reaches it (spec.md §4.3).
	// Validation does not read this threshold: package validate honours a
	// hash-form expected block whenever one is present.
	HashThreshold int
}

// WriteRecords serialises records belonging to a single file (i.e. not
// recursively expanded into its includes) to w, one after another.
func WriteRecords(w io.Writer, records []*record.Record, opts Options) error {
	for _, rec := range records {
		if err := WriteRecord(w, rec, opts); err != nil {
			return err
		}
	}
	return nil
}

// WriteTree serialises a fully expanded record stream (as produced by
// parser.ParseFile, where every `include` has been recursively expanded
// and bracketed by BeginInclude/EndInclude) back into one rendered string
// per source file path. The root file's `include GLOB` lines are written
// literally; the files the glob matched are rendered separately under
// their own absolute paths, recursing to arbitrary depth.
func WriteTree(records []*record.Record, opts Options) (map[string]string, error) {
	if len(records) == 0 {
		return map[string]string{}, nil
	}

	type frame struct {
		path string
		buf  *strings.Builder
	}

	root := records[0].Loc.Path
	stack := []frame{{path: root, buf: &strings.Builder{}}}
	out := make(map[string]string)

	for _, rec := range records {
		if rec.Kind == record.KindInjected && rec.Injected == record.BeginInclude {
			stack = append(stack, frame{path: rec.Text, buf: &strings.Builder{}})
			continue
		}
		if rec.Kind == record.KindInjected && rec.Injected == record.EndInclude {
			finished := stack[len(stack)-1]
			out[finished.path] = finished.buf.String()
			stack = stack[:len(stack)-1]
			continue
		}

		top := stack[len(stack)-1]
		if err := WriteRecord(top.buf, rec, opts); err != nil {
			return nil, err
		}
	}

	out[root] = stack[0].buf.String()
	return out, nil
}

// WriteRecord writes the canonical textual form of a single record. The
// pseudo-records produced by include expansion (KindInjected) carry no
// textual form of their own and are silently skipped; callers that need
// to recurse into included files should use WriteTree instead.
func WriteRecord(w io.Writer, rec *record.Record, opts Options) error {
	switch rec.Kind {
	case record.KindWhitespace, record.KindComment:
		return writeLine(w, rec.Text)

	case record.KindInjected:
		return nil

	case record.KindStatement:
		return writeStatement(w, rec)

	case record.KindQuery:
		return writeQuery(w, rec)

	case record.KindSystem:
		return writeSystem(w, rec)

	case record.KindSleep:
		return writeLine(w, fmt.Sprintf("sleep %s", rec.SleepFor))

	case record.KindHalt:
		return writeLine(w, "halt")

	case record.KindHashThreshold:
		return writeLine(w, fmt.Sprintf("hash-threshold %d", rec.HashThreshold))

	case record.KindInclude:
		return writeLine(w, fmt.Sprintf("include %s", rec.Glob))

	case record.KindControl:
		return writeControl(w, rec)

	default:
		return fmt.Errorf("unparse: unsupported record kind %s", rec.Kind)
	}
}

func writeLine(w io.Writer, s string) error {
	_, err := io.WriteString(w, s+"\n")
	return err
}

func writeLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if err := writeLine(w, l); err != nil {
			return err
		}
	}
	return nil
}

func writeConditionsAndConnection(w io.Writer, rec *record.Record) error {
	for _, c := range rec.Conditions {
		keyword := "onlyif"
		if c.Kind == record.SkipIf {
			keyword = "skipif"
		}
		if err := writeLine(w, keyword+" "+c.Label); err != nil {
			return err
		}
	}
	if rec.Connection != "" {
		if err := writeLine(w, "connection "+rec.Connection); err != nil {
			return err
		}
	}
	return nil
}

func retrySuffix(r *record.Retry) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf(" retry %d backoff %s", r.Attempts, r.Backoff)
}

func sqlLines(sql string) []string {
	if sql == "" {
		return nil
	}
	return strings.Split(sql, "\n")
}

func writeStatement(w io.Writer, rec *record.Record) error {
	if err := writeConditionsAndConnection(w, rec); err != nil {
		return err
	}

	switch rec.StatementExpect.Kind {
	case record.StatementOk:
		if err := writeLine(w, "statement ok"+retrySuffix(rec.StatementExpect.Retry)); err != nil {
			return err
		}
		if err := writeLines(w, sqlLines(rec.SQL)); err != nil {
			return err
		}
		return writeLine(w, "")

	case record.StatementCount:
		if err := writeLine(w, "statement count "+strconv.FormatInt(rec.StatementExpect.Count, 10)); err != nil {
			return err
		}
		if err := writeLines(w, sqlLines(rec.SQL)); err != nil {
			return err
		}
		return writeLine(w, "")

	case record.StatementErrorExpect:
		exp := rec.StatementExpect.Error
		if exp.Kind == record.ErrorRegex {
			header := "statement error"
			if exp.Pattern != "" {
				header += " " + exp.Pattern
			}
			if err := writeLine(w, header); err != nil {
				return err
			}
			if err := writeLines(w, sqlLines(rec.SQL)); err != nil {
				return err
			}
			return writeLine(w, "")
		}
		if err := writeLine(w, "statement error"); err != nil {
			return err
		}
		if err := writeLines(w, sqlLines(rec.SQL)); err != nil {
			return err
		}
		if err := writeLine(w, Separator); err != nil {
			return err
		}
		if err := writeLines(w, strings.Split(exp.Text, "\n")); err != nil {
			return err
		}
		return writeLine(w, "\n")

	default:
		return fmt.Errorf("unparse: unknown statement expectation kind %d", rec.StatementExpect.Kind)
	}
}

func writeQuery(w io.Writer, rec *record.Record) error {
	if err := writeConditionsAndConnection(w, rec); err != nil {
		return err
	}

	if rec.QueryExpect.Kind == record.QueryErrorExpect {
		exp := rec.QueryExpect.Error
		if exp.Kind == record.ErrorRegex {
			header := "query error"
			if exp.Pattern != "" {
				header += " " + exp.Pattern
			}
			if err := writeLine(w, header); err != nil {
				return err
			}
			if err := writeLines(w, sqlLines(rec.SQL)); err != nil {
				return err
			}
			return writeLine(w, "")
		}
		if err := writeLine(w, "query error"); err != nil {
			return err
		}
		if err := writeLines(w, sqlLines(rec.SQL)); err != nil {
			return err
		}
		if err := writeLine(w, Separator); err != nil {
			return err
		}
		if err := writeLines(w, strings.Split(exp.Text, "\n")); err != nil {
			return err
		}
		return writeLine(w, "\n")
	}

	// The sort-mode token is optional on input (an omitted token falls
	// back to the ambient Config.SortMode at run time, see runner.go).
	// Re-emit it only when the source actually carried one, so a file
	// that relied on the omission round-trips byte-for-byte (spec.md
	// invariant I1).
	header := "query " + record.ColumnTypesString(rec.Types)
	if rec.SortModeExplicit {
		header += " " + rec.SortMode.String()
	}
	if rec.ColNames {
		header += " colnames"
	}
	if rec.Label != "" {
		header += " " + rec.Label
	}

	header += retrySuffix(rec.QueryExpect.Retry)

	if err := writeLine(w, header); err != nil {
		return err
	}
	if err := writeLines(w, sqlLines(rec.SQL)); err != nil {
		return err
	}

	if rec.QueryExpect.Kind == record.QueryEmptyExpect {
		return writeLine(w, "")
	}

	if err := writeLine(w, Separator); err != nil {
		return err
	}
	if err := writeLines(w, rec.QueryExpect.Lines); err != nil {
		return err
	}
	return writeLine(w, "")
}

func writeSystem(w io.Writer, rec *record.Record) error {
	if err := writeConditionsAndConnection(w, rec); err != nil {
		return err
	}
	if err := writeLine(w, "system ok"+retrySuffix(rec.SystemExpect.Retry)); err != nil {
		return err
	}
	if err := writeLines(w, sqlLines(rec.Command)); err != nil {
		return err
	}
	if rec.Stdout == nil {
		return writeLine(w, "")
	}
	if err := writeLine(w, Separator); err != nil {
		return err
	}
	if err := writeLines(w, strings.Split(*rec.Stdout, "\n")); err != nil {
		return err
	}
	return writeLine(w, "\n")
}

func writeControl(w io.Writer, rec *record.Record) error {
	switch rec.Ctrl.Kind {
	case record.ControlSubstitution:
		onOff := "off"
		if rec.Ctrl.SubstitutionOn {
			onOff = "on"
		}
		return writeLine(w, "control substitution "+onOff)
	case record.ControlSortMode:
		return writeLine(w, "control sortmode "+rec.Ctrl.SortMode.String())
	case record.ControlResultMode:
		return writeLine(w, "control resultmode "+rec.Ctrl.ResultMode.String())
	default:
		return fmt.Errorf("unparse: unknown control kind %d", rec.Ctrl.Kind)
	}
}

// Separator is re-exported from parser's grammar constant so callers of
// this package never need to import parser just to spell "----".
const Separator = "----"
