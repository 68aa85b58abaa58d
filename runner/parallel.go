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

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sqllogictest-go/slt/record"
)

// IncludeGroup is one child file's expanded records, as produced by
// splitting a parent's record stream on its BeginInclude/EndInclude
// brackets (see SplitIncludes, unparse.WriteTree for the same
// bracketing walked for a different purpose).
type IncludeGroup struct {
	Path    string
	Records []*record.Record
}

// ChildResult is one include-child's completed run.
type ChildResult struct {
	Group    IncludeGroup
	Outcomes []RecordOutcome
	Err      error
}

// ConnectionFactoryFor builds the MakeConnection a parallel child Runner
// uses: baseName with a uuid-derived suffix appended, so every child gets
// its own temporary database name even when several children run the
// same underlying test concurrently (spec.md §4.4, "Parallel execution").
type ConnectionFactoryFor func(childDatabaseName string) MakeConnection

// RunParallel partitions records into its top-level include children
// (records outside any include go into "(root)" groups, see
// SplitIncludes) and runs one Runner per group concurrently, inheriting
// config from parent. It returns once every group has finished; the first
// connection-level error a group returns cancels the context shared by
// the others and is the error returned (errgroup semantics).
func RunParallel(ctx context.Context, records []*record.Record, parent Config, connFactory ConnectionFactoryFor, reporter Reporter) ([]ChildResult, error) {
	groups := SplitIncludes(records)

	results := make([]ChildResult, len(groups))
	g, gctx := errgroup.WithContext(ctx)

	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			dbName := baseName(group.Path) + "_" + uuid.NewString()[:8]
			childRunner := NewRunner(connFactory(dbName), parent.clone(), reporter)
			defer childRunner.Shutdown(gctx)

			outcomes, err := childRunner.RunRecords(gctx, group.Records)
			results[i] = ChildResult{Group: group, Outcomes: outcomes, Err: err}
			return err
		})
	}

	err := g.Wait()
	return results, err
}

// SplitIncludes partitions a fully-expanded record stream into one group
// per top-level include child. Records outside any include become
// "(root)" groups: each unbroken run of them (before, between or after
// includes) is its own "(root)" group, in stream order. Nested includes
// stay with their top-level parent group, and their BeginInclude/
// EndInclude brackets are dropped; only top-level children are split
// out, since that is the granularity spec.md's parallel model
// partitions on.
func SplitIncludes(records []*record.Record) []IncludeGroup {
	var groups []IncludeGroup
	var root []*record.Record
	depth := 0
	var current []*record.Record
	var currentPath string

	flushRoot := func() {
		if len(root) > 0 {
			groups = append(groups, IncludeGroup{Path: "(root)", Records: root})
			root = nil
		}
	}

	for _, rec := range records {
		if rec.Kind == record.KindInjected && rec.Injected == record.BeginInclude {
			depth++
			if depth == 1 {
				flushRoot()
				currentPath = rec.Text
				current = nil
			}
			continue
		}
		if rec.Kind == record.KindInjected && rec.Injected == record.EndInclude {
			if depth == 1 {
				groups = append(groups, IncludeGroup{Path: currentPath, Records: current})
				current = nil
			}
			depth--
			continue
		}

		if depth == 0 {
			root = append(root, rec)
		} else {
			current = append(current, rec)
		}
	}
	flushRoot()

	return groups
}

func baseName(path string) string {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			base = path[i+1:]
			break
		}
	}
	return base
}
