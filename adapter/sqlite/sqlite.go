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

// Package sqlite is the reference AsyncDB adapter over SQLite, the
// default local engine of the slt command. The parser and runner test
// suites do not use it; they run against in-memory fakes.
package sqlite

import (
	"context"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sqllogictest-go/slt/adapter/sqlshared"
	"github.com/sqllogictest-go/slt/runner"
)

// Open opens a SQLite database at path ("" or ":memory:" for an
// ephemeral in-process database, the common case for a named parallel
// connection).
func Open(ctx context.Context, path string) (runner.AsyncDB, error) {
	if path == "" {
		path = ":memory:"
	}
	return sqlshared.Open(ctx, "sqlite3", path, "sqlite")
}

// Connect builds the runner.MakeConnection for a directory of SQLite
// files, one per non-default connection name, rooted at dir; the default
// connection is always an in-memory database.
func Connect(dir string) runner.MakeConnection {
	return func(ctx context.Context, name string) (runner.AsyncDB, error) {
		if name == runner.DefaultConnection || name == "" {
			return Open(ctx, ":memory:")
		}
		if dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return Open(ctx, dir+"/"+name+".db")
	}
}
