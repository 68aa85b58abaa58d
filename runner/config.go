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
	"golang.org/x/text/cases"

	"github.com/sqllogictest-go/slt/record"
	"github.com/sqllogictest-go/slt/validate"
)

var foldCase = cases.Fold()

// Config is the Runner's mutable configuration, updated in place by
// Control records as a file executes and inherited by child Runners
// spawned for parallel include execution.
type Config struct {
	SortMode       record.SortMode
	ResultMode     record.ResultMode
	HashThreshold  int
	SubstitutionOn bool
	Labels         map[string]struct{}
	Normalizer     validate.Normalizer
}

// NewConfig returns the zero-value configuration the Runner starts with
// absent any overrides: NoSort, Columnwise, hash-threshold 0 (never
// hashed), substitution off, and the given labels case-folded so
// onlyif/skipif comparisons are robust to case (the teacher compares
// engine strings informally; folding makes that exact).
func NewConfig(labels ...string) Config {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[foldCase.String(l)] = struct{}{}
	}
	return Config{Labels: set}
}

// clone returns a shallow copy suitable for handing to a child Runner: the
// Labels map is copied so later changes to the child's Labels never
// mutate the parent's set.
func (c Config) clone() Config {
	labels := make(map[string]struct{}, len(c.Labels))
	for l := range c.Labels {
		labels[l] = struct{}{}
	}
	c.Labels = labels
	return c
}

func (c *Config) applyControl(ctrl record.Control) {
	switch ctrl.Kind {
	case record.ControlSubstitution:
		c.SubstitutionOn = ctrl.SubstitutionOn
	case record.ControlSortMode:
		c.SortMode = ctrl.SortMode
	case record.ControlResultMode:
		c.ResultMode = ctrl.ResultMode
	}
}

func (c Config) satisfies(conditions []record.Condition) bool {
	folded := make([]record.Condition, len(conditions))
	for i, cond := range conditions {
		folded[i] = record.Condition{Kind: cond.Kind, Label: foldCase.String(cond.Label)}
	}
	return record.SatisfiesAll(folded, c.Labels)
}
