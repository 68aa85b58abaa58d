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
	"fmt"

	"github.com/sqllogictest-go/slt/validate"
)

// LabelMismatch is reported when a query's label has been seen before in
// this run but its linearised result no longer matches the first
// occurrence.
type LabelMismatch struct {
	Label   string
	First   []string
	Current []string
}

func (e *LabelMismatch) Error() string {
	return fmt.Sprintf("label %q result differs from its first occurrence (%d lines vs %d lines)",
		e.Label, len(e.First), len(e.Current))
}

// checkLabel records rows under label the first time it is seen, and on
// every later occurrence verifies the linearised result still matches.
// It mutates the Runner's per-run memo, never the shared Config.
func (r *Runner) checkLabel(label string, rows [][]string, policy validate.Policy) error {
	if r.labelResults == nil {
		r.labelResults = map[string][]string{}
	}
	current := validate.Linearise(rows, policy)
	first, seen := r.labelResults[label]
	if !seen {
		r.labelResults[label] = current
		return nil
	}
	if !sameLines(first, current) {
		return &LabelMismatch{Label: label, First: first, Current: current}
	}
	return nil
}

func sameLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
