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

package proof

import (
	"github.com/dgraph-io/badger/v2"
	"github.com/dgraph-io/badger/v2/options"
)

// DefaultOptions returns the Badger options used for the ledger journal. Writes
// are synced to disk before a block is published. An empty directory selects
// the in-memory mode, in which case the ledger starts over on every restart.
func DefaultOptions(dir string) badger.Options {
	if dir == "" {
		return badger.DefaultOptions("").
			WithInMemory(true).
			WithLogger(nil)
	}
	return badger.DefaultOptions(dir).
		WithSyncWrites(true).
		WithValueLogFileSize(64 << 20).
		WithTableLoadingMode(options.FileIO).
		WithValueLogLoadingMode(options.FileIO).
		WithNumMemtables(1).
		WithCompactL0OnClose(false).
		WithLogger(nil)
}
