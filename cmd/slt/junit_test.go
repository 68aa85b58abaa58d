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

package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqllogictest-go/slt/record"
	"github.com/sqllogictest-go/slt/runner"
)

func TestWriteJUnitProducesParsableXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xml")

	failures := []runner.RecordOutcome{
		{
			Record: &record.Record{Loc: record.Location{Path: "sample.test", Line: 12}},
			Err:    errors.New("row count mismatch"),
		},
	}

	require.NoError(t, writeJUnit(path, 3, 1, 1, failures))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tests="5"`)
	assert.Contains(t, string(data), `failures="1"`)
	assert.Contains(t, string(data), "sample.test:12")
	assert.Contains(t, string(data), "row count mismatch")
}
