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

package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/optakt/proof-ledger/models/proof"
	"github.com/optakt/proof-ledger/service/hasher"
)

// Ledger is an append-only chain of hash-linked delivery-proof blocks.
//
// Appends are serialized by the write mutex, which covers reading the last
// block, hashing the next one, journaling it and publishing it. Readers only
// hold the guard long enough to copy the slice header; published blocks are
// never modified, so a snapshot stays consistent while new blocks are added.
type Ledger struct {
	log     zerolog.Logger
	hash    *hasher.Hasher
	journal proof.Journal
	clock   func() time.Time

	write  *sync.Mutex
	guard  *sync.RWMutex
	blocks []proof.Block

	// unreadable is the index of the journaled block at which replay stopped,
	// if any. It is only set during construction.
	unreadable *uint64
}

// New creates a ledger. If a journal is configured, its blocks are replayed
// first; a ledger without any replayed block is initialized with a genesis
// block. A replayed chain that fails verification is kept as it is, so that
// the corruption remains visible through Verify. The same holds for a journal
// with an unreadable block: the blocks before it are kept, Verify reports its
// index and the ledger refuses further appends.
func New(log zerolog.Logger, hash *hasher.Hasher, options ...Option) (*Ledger, error) {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	l := Ledger{
		log:     log.With().Str("component", "ledger").Logger(),
		hash:    hash,
		journal: cfg.Journal,
		clock:   cfg.Clock,
		write:   &sync.Mutex{},
		guard:   &sync.RWMutex{},
	}

	if l.journal != nil {
		blocks, err := l.journal.Blocks()
		var unreadable *proof.UnreadableError
		if errors.As(err, &unreadable) {
			index := unreadable.Index
			l.unreadable = &index
			err = nil
		}
		if err != nil {
			return nil, fmt.Errorf("could not replay journal: %w", err)
		}
		l.blocks = blocks
	}

	if len(l.blocks) == 0 && l.unreadable == nil {
		genesis, err := l.Genesis()
		if err != nil {
			return nil, fmt.Errorf("could not create genesis block: %w", err)
		}
		l.log.Info().Str("hash", genesis.Hash).Msg("ledger initialized with genesis block")
		return &l, nil
	}

	report := l.Verify()
	if !report.Valid {
		l.log.Error().
			Uint64("length", report.Length).
			Uint64("first_invalid", *report.FirstInvalid).
			Str("violation", string(report.Violation)).
			Msg("replayed chain failed verification")
		return &l, nil
	}

	l.log.Info().
		Uint64("length", report.Length).
		Str("head", report.Head).
		Msg("ledger restored from journal")

	return &l, nil
}

// Genesis creates the first block of the ledger. It fails with
// ErrAlreadyInitialized if the ledger already holds blocks, which is always
// the case for a ledger returned by New.
func (l *Ledger) Genesis() (proof.Block, error) {
	l.write.Lock()
	defer l.write.Unlock()

	if len(l.blocks) > 0 || l.unreadable != nil {
		return proof.Block{}, proof.ErrAlreadyInitialized
	}

	genesis := proof.Block{
		Index:        0,
		Timestamp:    l.clock().UnixMilli(),
		Payload:      proof.Payload{EvidenceLocator: proof.GenesisLocator},
		PreviousHash: proof.GenesisHash,
	}
	genesis.Hash = l.hash.Block(genesis)

	err := l.commit(genesis)
	if err != nil {
		return proof.Block{}, err
	}

	return genesis, nil
}

// Append links a new block with the given payload to the end of the chain and
// returns it. Either the block is fully created, journaled and visible, or the
// chain is left unchanged.
func (l *Ledger) Append(payload proof.Payload) (proof.Block, error) {

	err := payload.Validate()
	if err != nil {
		return proof.Block{}, err
	}

	if l.unreadable != nil {
		return proof.Block{}, fmt.Errorf("journal has an unreadable block (index: %d): %w", *l.unreadable, proof.ErrCorrupted)
	}

	l.write.Lock()
	defer l.write.Unlock()

	// The index is derived from the chain length rather than the last block's
	// index field, so that new blocks stay dense even behind a corrupted one.
	last := l.blocks[len(l.blocks)-1]
	timestamp := l.clock().UnixMilli()
	if timestamp < last.Timestamp {
		timestamp = last.Timestamp
	}

	block := proof.Block{
		Index:        uint64(len(l.blocks)),
		Timestamp:    timestamp,
		Payload:      payload,
		PreviousHash: last.Hash,
	}
	block.Hash = l.hash.Block(block)

	err = l.commit(block)
	if err != nil {
		return proof.Block{}, err
	}

	l.log.Debug().
		Uint64("index", block.Index).
		Str("entity", payload.EntityID).
		Str("delivery", payload.DeliveryID).
		Str("hash", block.Hash).
		Msg("proof block appended")

	return block, nil
}

// Chain returns a copy of all blocks in index order.
func (l *Ledger) Chain() []proof.Block {
	blocks := l.snapshot()
	chain := make([]proof.Block, len(blocks))
	copy(chain, blocks)
	return chain
}

// Verify checks all chain invariants over one snapshot of the ledger. A block
// that could not be replayed from the journal is reported as unreadable, unless
// an earlier block already breaks an invariant.
func (l *Ledger) Verify() proof.Report {
	report := Verify(l.hash, l.snapshot())
	if l.unreadable != nil && (report.Valid || *report.FirstInvalid >= *l.unreadable) {
		return invalid(report, *l.unreadable, proof.ViolationUnreadable)
	}
	return report
}

// Head returns the last block of the chain. It is the zero block only if the
// journal's genesis block could not be replayed.
func (l *Ledger) Head() proof.Block {
	blocks := l.snapshot()
	if len(blocks) == 0 {
		return proof.Block{}
	}
	return blocks[len(blocks)-1]
}

// Len returns the number of blocks in the chain, genesis included.
func (l *Ledger) Len() uint64 {
	return uint64(len(l.snapshot()))
}

// Block returns the block at the given index.
func (l *Ledger) Block(index uint64) (proof.Block, error) {
	blocks := l.snapshot()
	if index >= uint64(len(blocks)) {
		return proof.Block{}, fmt.Errorf("unknown block (index: %d, length: %d): %w", index, len(blocks), proof.ErrNotFound)
	}
	return blocks[index], nil
}

// Deliveries returns all blocks recorded for the given delivery, oldest first.
func (l *Ledger) Deliveries(deliveryID string) []proof.Block {
	var deliveries []proof.Block
	for _, block := range l.snapshot() {
		if block.Index > 0 && block.Payload.DeliveryID == deliveryID {
			deliveries = append(deliveries, block)
		}
	}
	return deliveries
}

// commit journals the block, if there is a journal, and publishes it. The
// caller must hold the write mutex.
func (l *Ledger) commit(block proof.Block) error {

	if l.journal != nil {
		err := l.journal.Save(block)
		if err != nil {
			return fmt.Errorf("could not journal block: %w", err)
		}
	}

	l.guard.Lock()
	l.blocks = append(l.blocks, block)
	l.guard.Unlock()

	return nil
}

func (l *Ledger) snapshot() []proof.Block {
	l.guard.RLock()
	defer l.guard.RUnlock()
	return l.blocks[:len(l.blocks):len(l.blocks)]
}
