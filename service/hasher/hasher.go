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

package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/optakt/proof-ledger/models/proof"
)

// domain separates ledger block digests from any other SHA-256 digest over CBOR
// data. Changing it invalidates every existing chain.
const domain = "proof-ledger/v1"

// record is the canonical form of a block's content. Both record and entry are
// encoded as CBOR arrays, so the field order below is the serialization order.
type record struct {
	_            struct{} `cbor:",toarray"`
	Domain       string
	Index        uint64
	Timestamp    int64
	Payload      entry
	PreviousHash string
}

type entry struct {
	_               struct{} `cbor:",toarray"`
	EntityID        string
	DeliveryID      string
	EvidenceLocator string
	Temperature     string
	Notes           string
}

// Hasher computes the content hash of ledger blocks.
type Hasher struct {
	encoder cbor.EncMode
}

// New creates a new Hasher.
func New() *Hasher {

	// We should never fail here if the options are valid, so use panic to keep
	// the function signature clean.
	encoder, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}

	h := Hasher{
		encoder: encoder,
	}

	return &h
}

// Compute returns the lowercase hexadecimal SHA-256 digest of the given block
// content.
func (h *Hasher) Compute(index uint64, timestamp int64, payload proof.Payload, previous string) string {

	rec := record{
		Domain:    domain,
		Index:     index,
		Timestamp: timestamp,
		Payload: entry{
			EntityID:        payload.EntityID,
			DeliveryID:      payload.DeliveryID,
			EvidenceLocator: payload.EvidenceLocator,
			Temperature:     payload.Temperature,
			Notes:           payload.Notes,
		},
		PreviousHash: previous,
	}

	// The record only holds strings and integers, for which encoding cannot fail.
	data, err := h.encoder.Marshal(rec)
	if err != nil {
		panic(fmt.Sprintf("could not encode block record: %s", err))
	}

	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}

// Block recomputes the hash of a block from its stored fields.
func (h *Hasher) Block(block proof.Block) string {
	return h.Compute(block.Index, block.Timestamp, block.Payload, block.PreviousHash)
}
