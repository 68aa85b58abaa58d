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

package runner

import (
	"context"
	"os"

	"github.com/sqllogictest-go/slt/parser"
	"github.com/sqllogictest-go/slt/record"
	"github.com/sqllogictest-go/slt/unparse"
)

// UpdateTestFile re-parses the file at path, executes every record
// through a fresh Runner, folds each (record, observed) pair through
// unparse.UpdateRecordWithOutput, and rewrites the file (and every
// file its includes expanded to, at any depth) with the observed expectations in
// place, per spec.md §4.2 "update_test_file". Records a halt stops the
// Runner at are copied through unchanged, matching the rule that parsing
// (and so unparsing) continues past a halt even though execution does
// not.
func UpdateTestFile(ctx context.Context, path string, connect MakeConnection, config Config, opts unparse.Options) error {
	records, err := parser.ParseFile(path)
	if err != nil {
		return err
	}

	r := NewRunner(connect, config, nil)
	defer r.Shutdown(ctx)

	updated := make([]*record.Record, len(records))
	for i, rec := range records {
		updated[i] = rec

		if r.halted {
			continue
		}

		outcome, err := r.step(ctx, rec)
		if err != nil {
			return err
		}
		if outcome == nil || outcome.Verdict == Skipped {
			continue
		}
		switch rec.Kind {
		case record.KindStatement, record.KindQuery, record.KindSystem:
			updated[i] = unparse.UpdateRecordWithOutput(rec, outcome.Observed, r.config.ResultMode, opts)
		}
	}

	tree, err := unparse.WriteTree(updated, opts)
	if err != nil {
		return err
	}
	for filePath, content := range tree {
		if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
