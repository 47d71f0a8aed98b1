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
	"strings"
)

// GenesisLocator is the evidence locator reserved for the genesis block.
const GenesisLocator = "genesis"

// GenesisHash is the previous hash of the genesis block.
var GenesisHash = strings.Repeat("0", 64)

// Block is one hash-linked record of the ledger. Once created, a block is never
// modified.
type Block struct {
	Index        uint64  `json:"index" cbor:"1,keyasint"`
	Timestamp    int64   `json:"timestamp" cbor:"2,keyasint"`
	Payload      Payload `json:"payload" cbor:"3,keyasint"`
	PreviousHash string  `json:"previousHash" cbor:"4,keyasint"`
	Hash         string  `json:"hash" cbor:"5,keyasint"`
}

// IsGenesis returns whether the block carries the genesis payload.
func (b Block) IsGenesis() bool {
	return b.Payload.EvidenceLocator == GenesisLocator
}
