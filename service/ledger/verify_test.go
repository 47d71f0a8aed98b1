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

package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/proof-ledger/models/proof"
	"github.com/optakt/proof-ledger/service/hasher"
	"github.com/optakt/proof-ledger/service/ledger"
	"github.com/optakt/proof-ledger/testing/mocks"
)

func TestVerify(t *testing.T) {
	h := hasher.New()

	tests := []struct {
		desc   string
		tamper func(blocks []proof.Block) []proof.Block

		wantValid     bool
		wantInvalid   uint64
		wantViolation proof.Violation
	}{
		{
			desc:      "valid chain",
			tamper:    func(blocks []proof.Block) []proof.Block { return blocks },
			wantValid: true,
		},
		{
			desc:      "only genesis",
			tamper:    func(blocks []proof.Block) []proof.Block { return blocks[:1] },
			wantValid: true,
		},
		{
			desc:          "empty chain",
			tamper:        func([]proof.Block) []proof.Block { return nil },
			wantInvalid:   0,
			wantViolation: proof.ViolationGenesis,
		},
		{
			desc: "genesis with previous hash",
			tamper: func(blocks []proof.Block) []proof.Block {
				blocks[0].PreviousHash = mocks.GenericHash(1)
				blocks[0].Hash = h.Block(blocks[0])
				blocks[1].PreviousHash = blocks[0].Hash
				return blocks
			},
			wantInvalid:   0,
			wantViolation: proof.ViolationGenesis,
		},
		{
			desc: "genesis without locator",
			tamper: func(blocks []proof.Block) []proof.Block {
				blocks[0].Payload.EvidenceLocator = ""
				return blocks
			},
			wantInvalid:   0,
			wantViolation: proof.ViolationGenesis,
		},
		{
			desc: "reordered blocks",
			tamper: func(blocks []proof.Block) []proof.Block {
				blocks[2], blocks[3] = blocks[3], blocks[2]
				return blocks
			},
			wantInvalid:   2,
			wantViolation: proof.ViolationIndex,
		},
		{
			desc: "removed block",
			tamper: func(blocks []proof.Block) []proof.Block {
				return append(blocks[:1], blocks[2:]...)
			},
			wantInvalid:   1,
			wantViolation: proof.ViolationIndex,
		},
		{
			desc: "broken link",
			tamper: func(blocks []proof.Block) []proof.Block {
				blocks[2].PreviousHash = mocks.GenericHash(2)
				return blocks
			},
			wantInvalid:   2,
			wantViolation: proof.ViolationLink,
		},
		{
			desc: "changed timestamp",
			tamper: func(blocks []proof.Block) []proof.Block {
				blocks[3].Timestamp++
				return blocks
			},
			wantInvalid:   3,
			wantViolation: proof.ViolationHash,
		},
		{
			desc: "changed stored hash",
			tamper: func(blocks []proof.Block) []proof.Block {
				blocks[4].Hash = mocks.GenericHash(4)
				return blocks
			},
			wantInvalid:   4,
			wantViolation: proof.ViolationHash,
		},
		{
			desc: "several violations",
			tamper: func(blocks []proof.Block) []proof.Block {
				blocks[4].Payload.Notes = "tampered"
				blocks[2].Payload.Notes = "tampered"
				return blocks
			},
			wantInvalid:   2,
			wantViolation: proof.ViolationHash,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.desc, func(t *testing.T) {
			t.Parallel()

			blocks := test.tamper(mocks.GenericChain(5))

			report := ledger.Verify(h, blocks)

			assert.Equal(t, test.wantValid, report.Valid)
			assert.Equal(t, uint64(len(blocks)), report.Length)
			if test.wantValid {
				assert.Nil(t, report.FirstInvalid)
				assert.Empty(t, report.Violation)
				assert.Equal(t, blocks[len(blocks)-1].Hash, report.Head)
				return
			}
			require.NotNil(t, report.FirstInvalid)
			assert.Equal(t, test.wantInvalid, *report.FirstInvalid)
			assert.Equal(t, test.wantViolation, report.Violation)
		})
	}
}
