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

// Package mysql is the reference AsyncDB adapter over MySQL/MariaDB.
package mysql

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/sqllogictest-go/slt/adapter/sqlshared"
	"github.com/sqllogictest-go/slt/runner"
)

// Params are the connection parameters a default connection is built
// from, mirroring the SLT_HOST/PORT/DB/USER/PASSWORD environment keys
// the CLI front-end reads.
type Params struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Open opens a MySQL database named db against params.
func Open(ctx context.Context, params Params, db string) (runner.AsyncDB, error) {
	if params.Port == 0 {
		params.Port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", params.User, params.Password, params.Host, params.Port, db)
	return sqlshared.Open(ctx, "mysql", dsn, "mysql")
}

// Connect builds the runner.MakeConnection used for every named
// connection against one MySQL server, each connection name becoming its
// own database.
func Connect(params Params) runner.MakeConnection {
	return func(ctx context.Context, name string) (runner.AsyncDB, error) {
		if name == runner.DefaultConnection || name == "" {
			name = "slt_default"
		}
		return Open(ctx, params, name)
	}
}
