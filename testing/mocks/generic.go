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

package mocks

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/optakt/proof-ledger/models/proof"
	"github.com/optakt/proof-ledger/service/hasher"
)

// Global variables that can be used for testing. They are non-nil valid values for the types commonly needed
// to test ledger components.
var (
	NoopLogger = zerolog.New(io.Discard)

	GenericError = errors.New("dummy error")

	GenericBytes = []byte(`test`)

	GenericTime = time.Date(1972, 11, 12, 13, 14, 15, 0, time.UTC)

	GenericTimestamp = GenericTime.UnixMilli()

	GenericDeliveryID = "DEL-1"
)

// GenericClock returns a clock that always returns GenericTime.
func GenericClock() time.Time {
	return GenericTime
}

// GenericHash returns a deterministic hexadecimal hash for the given number.
func GenericHash(number int) string {
	return strings.Repeat(fmt.Sprintf("%02x", number%256), 32)
}

// GenericPayload returns a valid payload for the given number.
func GenericPayload(number int) proof.Payload {
	return proof.Payload{
		EntityID:        "NGO1",
		DeliveryID:      fmt.Sprintf("DEL-%d", number),
		EvidenceLocator: fmt.Sprintf("https://x/%d.jpg", number),
		Temperature:     "25",
		Notes:           "ok",
	}
}

// GenericBlock returns a block with the given index and generic content. Its
// hashes are not linked to anything.
func GenericBlock(index uint64) proof.Block {
	return proof.Block{
		Index:        index,
		Timestamp:    GenericTimestamp + int64(index),
		Payload:      GenericPayload(int(index)),
		PreviousHash: GenericHash(int(index)),
		Hash:         GenericHash(int(index) + 1),
	}
}

// GenericChain returns a valid chain of the given length, starting with a
// genesis block.
func GenericChain(length int) []proof.Block {
	h := hasher.New()

	genesis := proof.Block{
		Index:        0,
		Timestamp:    GenericTimestamp,
		Payload:      proof.Payload{EvidenceLocator: proof.GenesisLocator},
		PreviousHash: proof.GenesisHash,
	}
	genesis.Hash = h.Block(genesis)

	blocks := []proof.Block{genesis}
	for i := 1; i < length; i++ {
		block := proof.Block{
			Index:        uint64(i),
			Timestamp:    GenericTimestamp + int64(i),
			Payload:      GenericPayload(i),
			PreviousHash: blocks[i-1].Hash,
		}
		block.Hash = h.Block(block)
		blocks = append(blocks, block)
	}

	return blocks
}
