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
	"fmt"
	"strings"

	"github.com/sqllogictest-go/slt/adapter/mysql"
	"github.com/sqllogictest-go/slt/adapter/postgres"
	"github.com/sqllogictest-go/slt/adapter/sqlite"
	"github.com/sqllogictest-go/slt/runner"
)

// connectionFactory resolves cfg.Driver to one of this module's reference
// adapters, normalizing aliases the way shibukawa-snapsql's
// normalizeSQLDriverName does for its own CLI.
func connectionFactory(cfg Config, dir string) (runner.MakeConnection, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "sqlite", "sqlite3":
		return sqlite.Connect(dir), nil
	case "mysql", "mariadb":
		return mysql.Connect(mysql.Params{Host: cfg.Host, Port: cfg.Port, User: cfg.User, Password: cfg.Password}), nil
	case "postgres", "postgresql", "pgx":
		return postgres.Connect(postgres.Params{Host: cfg.Host, Port: cfg.Port, User: cfg.User, Password: cfg.Password}), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}
