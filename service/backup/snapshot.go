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

package backup

import (
	"fmt"
	"io"
	"runtime"

	"github.com/dgraph-io/badger/v2"
	"github.com/klauspost/compress/zstd"
)

// Snapshot writes a zstd-compressed full backup of the database to the given
// writer.
func Snapshot(db *badger.DB, w io.Writer) error {

	compressor, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("could not initialize zstd compression: %w", err)
	}
	defer compressor.Close()

	_, err = db.Backup(compressor, 0)
	if err != nil {
		return fmt.Errorf("could not backup badger db: %w", err)
	}

	err = compressor.Close()
	if err != nil {
		return fmt.Errorf("could not flush compressed snapshot: %w", err)
	}

	return nil
}

// Restore loads a snapshot written by Snapshot into the given database.
func Restore(db *badger.DB, r io.Reader) error {

	decompressor, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("could not initialize zstd decompression: %w", err)
	}
	defer decompressor.Close()

	err = db.Load(decompressor, runtime.GOMAXPROCS(0))
	if err != nil {
		return fmt.Errorf("could not load snapshot: %w", err)
	}

	return nil
}
