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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFilesRewritesFileInCanonicalForm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messy.test")
	require.NoError(t, os.WriteFile(path, []byte("statement   ok\nSELECT 1\n\n"), 0o644))

	require.NoError(t, formatFiles([]string{path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "statement ok\nSELECT 1\n\n", string(data))
}

func TestFormatFilesRejectsUnparsableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.test")
	require.NoError(t, os.WriteFile(path, []byte("bogus directive\n"), 0o644))

	err := formatFiles([]string{path})
	assert.Error(t, err)
}

func TestReportAndExitSucceedsWithNoFailures(t *testing.T) {
	reporter := &colorReporter{passed: 3}
	err := reportAndExit(reporter, "")
	assert.NoError(t, err)
}

func TestReportAndExitWritesJUnitReport(t *testing.T) {
	reporter := &colorReporter{passed: 2, skipped: 1}
	path := filepath.Join(t.TempDir(), "report.xml")

	require.NoError(t, reportAndExit(reporter, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tests="3"`)
}
