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
	"os"
	"strings"
	"time"

	"github.com/sqllogictest-go/slt/record"
)

// StdoutReporter prints one line per record outcome straight to stdout,
// matching the teacher's runner.go log format: a timestamp, file:line,
// the (possibly truncated) SQL or command text, and ok/not ok/skipped.
type StdoutReporter struct {
	// TruncateQueries mirrors the teacher's SQLLOGICTEST_TRUNCATE_QUERIES
	// env toggle when left at its zero value (checked once, at package
	// initialisation).
	TruncateQueries bool
}

var truncateQueriesEnv = func() bool {
	_, ok := os.LookupEnv("SQLLOGICTEST_TRUNCATE_QUERIES")
	return ok
}()

// Report implements Reporter.
func (s StdoutReporter) Report(o RecordOutcome) {
	text := o.Record.SQL
	if o.Record.Kind == record.KindSystem {
		text = o.Record.Command
	}
	prefix := fmt.Sprintf("%s %s: %s", time.Now().Format(time.RFC3339Nano), o.Record.Loc.String(), s.truncate(text))
	switch o.Verdict {
	case Passed:
		fmt.Println(prefix, "ok")
	case Skipped:
		fmt.Println(prefix, "skipped")
	default:
		msg := "not ok"
		if o.Err != nil {
			msg = "not ok: " + strings.ReplaceAll(o.Err.Error(), "\n", " ")
		}
		fmt.Println(prefix, msg)
	}
}

// Progress implements ProgressReporter, printing a running count the same
// way the teacher lineage's logicTest.success heartbeat does for a long
// single file with no other visible output.
func (s StdoutReporter) Progress(count int) {
	fmt.Printf("%s %d records processed so far\n", time.Now().Format(time.RFC3339Nano), count)
}

func (s StdoutReporter) truncate(query string) string {
	if (s.TruncateQueries || truncateQueriesEnv) && len(query) > 50 {
		return query[:47] + "..."
	}
	return query
}
