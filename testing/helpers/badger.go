// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package helpers

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/require"

	"github.com/optakt/proof-ledger/models/proof"
)

// InMemoryDB opens an in-memory badger database for testing. The database is
// closed when the test finishes.
func InMemoryDB(t *testing.T) *badger.DB {
	t.Helper()

	opts := proof.DefaultOptions("")

	db, err := badger.Open(opts)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// DiskDB opens a badger database in a temporary directory, so it can be
// closed and reopened within the same test.
func DiskDB(t *testing.T) (*badger.DB, string) {
	t.Helper()

	dir := t.TempDir()

	db, err := badger.Open(proof.DefaultOptions(dir))
	require.NoError(t, err)

	return db, dir
}
