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
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sqllogictest-go/slt/record"
)

// Normalizer renders one cell of a query result for comparison. col is
// the declared ColumnType of the cell's column, or 0 if the query's
// type-string didn't cover it.
type Normalizer func(cell string, col record.ColumnType) string

// DefaultNormalizer trims trailing whitespace and maps the empty string
// to the literal token "(empty)", matching the convention every adapter
// in this module's reference implementations follows.
func DefaultNormalizer(cell string, _ record.ColumnType) string {
	cell = strings.TrimRight(cell, " \t\r")
	if cell == "" {
		return "(empty)"
	}
	return cell
}

// DecimalNormalizer wraps a Normalizer, reformatting any cell of column
// type 'R' through shopspring/decimal before handing it to next, so two
// adapters that render the same real number differently (trailing zeros,
// "1e+06" vs "1000000") compare equal. Cells that fail to parse as a
// decimal are passed through unchanged, on the assumption the column's
// declared type was wrong rather than the adapter.
func DecimalNormalizer(next Normalizer) Normalizer {
	return func(cell string, col record.ColumnType) string {
		if col == record.ColumnType('R') {
			if d, err := decimal.NewFromString(strings.TrimSpace(cell)); err == nil {
				cell = d.String()
			}
		}
		return next(cell, col)
	}
}

// NullSentinelNormalizer wraps a Normalizer, first rewriting any cell
// exactly equal to nullToken (an adapter's textual rendering of SQL NULL)
// to sentinel before normalizing.
func NullSentinelNormalizer(next Normalizer, nullToken, sentinel string) Normalizer {
	return func(cell string, col record.ColumnType) string {
		if cell == nullToken {
			cell = sentinel
		}
		return next(cell, col)
	}
}

// Policy is the full comparison configuration for one record. SortMode is
// the record's own mode if its query header specified one, else the
// ambient Config.SortMode in effect when it runs; ResultMode has no
// per-record token at all (spec.md §4.1's query header never carries
// one) and always comes from Config.ResultMode, as last set by a
// `control resultmode` directive. Types and HashThreshold/Normalizer
// come from the record and the ambient Config respectively.
type Policy struct {
	SortMode      record.SortMode
	ResultMode    record.ResultMode
	HashThreshold int
	Normalizer    Normalizer
	Types         []record.ColumnType

	// ColNames requests a column-name header line ahead of the data
	// rows in the actual result, per the query's "colnames" option.
	ColNames bool
}

func (p Policy) normalizer() Normalizer {
	if p.Normalizer != nil {
		return p.Normalizer
	}
	return DefaultNormalizer
}
