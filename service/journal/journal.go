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

package journal

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/optakt/proof-ledger/models/proof"
	"github.com/optakt/proof-ledger/service/storage"
)

// Journal is the badger-backed write-ahead log of a ledger. It only ever
// appends: a block is accepted if its index directly follows the last
// journaled one.
type Journal struct {
	db  *badger.DB
	lib proof.Library
}

// New creates a journal on top of the given database.
func New(db *badger.DB, lib proof.Library) *Journal {

	j := Journal{
		db:  db,
		lib: lib,
	}

	return &j
}

// Save writes the block, its delivery index entry and the new last index in a
// single transaction.
func (j *Journal) Save(block proof.Block) error {
	err := j.db.Update(func(tx *badger.Txn) error {

		var last uint64
		err := j.lib.RetrieveLast(&last)(tx)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			if block.Index != 0 {
				return fmt.Errorf("first journaled block must have index 0 (index: %d)", block.Index)
			}
		case err != nil:
			return fmt.Errorf("could not retrieve last index: %w", err)
		case block.Index != last+1:
			return fmt.Errorf("non-sequential block index (last: %d, index: %d)", last, block.Index)
		}

		ops := []func(*badger.Txn) error{
			j.lib.SaveBlock(block),
			j.lib.SaveLast(block.Index),
		}
		if block.Payload.DeliveryID != "" {
			ops = append(ops, j.lib.IndexDelivery(block.Payload.DeliveryID, block.Index))
		}

		return storage.Combine(ops...)(tx)
	})
	if err != nil {
		return fmt.Errorf("could not journal block (index: %d): %w", block.Index, err)
	}

	return nil
}

// Last returns the index of the last journaled block.
func (j *Journal) Last() (uint64, error) {
	var index uint64
	err := j.db.View(j.lib.RetrieveLast(&index))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, fmt.Errorf("empty journal: %w", proof.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("could not retrieve last index: %w", err)
	}
	return index, nil
}

// Block returns the journaled block at the given index.
func (j *Journal) Block(index uint64) (proof.Block, error) {
	var block proof.Block
	err := j.db.View(j.lib.RetrieveBlock(index, &block))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return proof.Block{}, fmt.Errorf("unknown block (index: %d): %w", index, proof.ErrNotFound)
	}
	if err != nil {
		return proof.Block{}, fmt.Errorf("could not retrieve block (index: %d): %w", index, err)
	}
	return block, nil
}

// Blocks returns all journaled blocks in index order, as they are stored. An
// empty journal returns no blocks and no error. Replay stops at the first block
// that is missing or cannot be decoded; the blocks before it are returned with
// an *UnreadableError holding its index.
func (j *Journal) Blocks() ([]proof.Block, error) {
	var blocks []proof.Block
	err := j.db.View(func(tx *badger.Txn) error {

		var last uint64
		err := j.lib.RetrieveLast(&last)(tx)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not retrieve last index: %w", err)
		}

		blocks = make([]proof.Block, 0, last+1)
		for index := uint64(0); index <= last; index++ {
			var block proof.Block
			err := j.lib.RetrieveBlock(index, &block)(tx)
			if errors.Is(err, badger.ErrKeyNotFound) || errors.Is(err, proof.ErrCorrupted) {
				return &proof.UnreadableError{Index: index, Err: err}
			}
			if err != nil {
				return fmt.Errorf("could not retrieve block (index: %d): %w", index, err)
			}
			blocks = append(blocks, block)
		}

		return nil
	})
	var unreadable *proof.UnreadableError
	if errors.As(err, &unreadable) {
		return blocks, unreadable
	}
	if err != nil {
		return nil, err
	}

	return blocks, nil
}

// Deliveries returns the journaled blocks of one delivery, oldest first.
func (j *Journal) Deliveries(deliveryID string) ([]proof.Block, error) {
	var blocks []proof.Block
	err := j.db.View(func(tx *badger.Txn) error {

		var indices []uint64
		err := j.lib.LookupDelivery(deliveryID, &indices)(tx)
		if err != nil {
			return fmt.Errorf("could not look up delivery: %w", err)
		}

		for _, index := range indices {
			var block proof.Block
			err := j.lib.RetrieveBlock(index, &block)(tx)
			if errors.Is(err, proof.ErrCorrupted) {
				continue
			}
			if err != nil {
				return fmt.Errorf("could not retrieve block (index: %d): %w", index, err)
			}
			// Delivery keys only hold a checksum of the identifier.
			if block.Payload.DeliveryID != deliveryID {
				continue
			}
			blocks = append(blocks, block)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return blocks, nil
}
