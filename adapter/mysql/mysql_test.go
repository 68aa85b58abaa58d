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

package mysql_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sqllogictest-go/slt/adapter/mysql"
)

// TestOpenAgainstLiveServer only runs when SLT_MYSQL_HOST is set in the
// environment, matching the SLT_HOST/PORT/DB/USER/PASSWORD keys the CLI
// front-end reads for its own default connection; there is no in-process
// MySQL to exercise this adapter against otherwise.
func TestOpenAgainstLiveServer(t *testing.T) {
	host := os.Getenv("SLT_MYSQL_HOST")
	if host == "" {
		t.Skip("SLT_MYSQL_HOST not set, skipping live MySQL adapter test")
	}

	ctx := context.Background()
	db, err := mysql.Open(ctx, mysql.Params{
		Host:     host,
		User:     os.Getenv("SLT_USER"),
		Password: os.Getenv("SLT_PASSWORD"),
	}, "slt_default")
	require.NoError(t, err)
	defer db.Shutdown(ctx)

	_, err = db.Run(ctx, "select 1")
	require.NoError(t, err)
}
