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

package storage

import (
	"fmt"

	"github.com/OneOfOne/xxhash"
	"github.com/dgraph-io/badger/v2"

	"github.com/optakt/proof-ledger/models/proof"
)

// SaveLast is an operation that writes the index of the last journaled block.
func (l *Library) SaveLast(index uint64) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixLast), index)
}

// SaveBlock is an operation that writes the given block at its index.
func (l *Library) SaveBlock(block proof.Block) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixBlock, block.Index), block)
}

// IndexDelivery is an operation that indexes the block index for a delivery
// identifier. A delivery can be indexed for several blocks.
func (l *Library) IndexDelivery(deliveryID string, index uint64) func(*badger.Txn) error {
	hash := xxhash.ChecksumString64(deliveryID)
	return l.save(EncodeKey(PrefixDelivery, hash, index), index)
}

// RetrieveLast retrieves the index of the last journaled block.
func (l *Library) RetrieveLast(index *uint64) func(*badger.Txn) error {
	return l.retrieve(EncodeKey(PrefixLast), index)
}

// RetrieveBlock retrieves the block at the given index.
func (l *Library) RetrieveBlock(index uint64, block *proof.Block) func(*badger.Txn) error {
	return l.retrieve(EncodeKey(PrefixBlock, index), block)
}

// LookupDelivery retrieves the block indices indexed for the given delivery
// identifier, in ascending order. Since keys only contain a checksum of the
// identifier, callers need to check the retrieved blocks for collisions.
func (l *Library) LookupDelivery(deliveryID string, indices *[]uint64) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		hash := xxhash.ChecksumString64(deliveryID)
		prefix := EncodeKey(PrefixDelivery, hash)
		opts := badger.DefaultIteratorOptions
		// NOTE: this is an optimization only, it does not enforce that all
		// results in the iteration have this prefix.
		opts.Prefix = prefix

		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var index uint64
			err := it.Item().Value(func(val []byte) error {
				return l.codec.Unmarshal(val, &index)
			})
			if err != nil {
				return fmt.Errorf("could not decode delivery index (key: %x): %w", it.Item().Key(), err)
			}

			*indices = append(*indices, index)
		}

		return nil
	}
}
