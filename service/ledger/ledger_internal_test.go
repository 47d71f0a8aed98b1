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
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/proof-ledger/models/proof"
	"github.com/optakt/proof-ledger/service/hasher"
	"github.com/optakt/proof-ledger/testing/mocks"
)

func populated(t *testing.T, appends int) *Ledger {
	t.Helper()

	l, err := New(mocks.NoopLogger, hasher.New(), WithClock(mocks.GenericClock))
	require.NoError(t, err)
	for i := 1; i <= appends; i++ {
		_, err := l.Append(mocks.GenericPayload(i))
		require.NoError(t, err)
	}

	return l
}

func TestLedger_Tamper(t *testing.T) {
	t.Run("payload of stored block", func(t *testing.T) {
		l := populated(t, 2)

		l.blocks[1].Payload.Notes = "tampered"

		report := l.Verify()
		assert.False(t, report.Valid)
		require.NotNil(t, report.FirstInvalid)
		assert.Equal(t, uint64(1), *report.FirstInvalid)
		assert.Equal(t, proof.ViolationHash, report.Violation)
	})

	t.Run("previous hash of stored block", func(t *testing.T) {
		l := populated(t, 5)

		l.blocks[3].PreviousHash = mocks.GenericHash(3)

		report := l.Verify()
		assert.False(t, report.Valid)
		require.NotNil(t, report.FirstInvalid)
		assert.Equal(t, uint64(3), *report.FirstInvalid)
		assert.Equal(t, proof.ViolationLink, report.Violation)
	})

	t.Run("recomputed hash of stored block", func(t *testing.T) {
		l := populated(t, 5)

		// Re-hashing the tampered block moves the finding to its successor.
		l.blocks[2].Payload.Temperature = "40"
		l.blocks[2].Hash = l.hash.Block(l.blocks[2])

		report := l.Verify()
		assert.False(t, report.Valid)
		require.NotNil(t, report.FirstInvalid)
		assert.Equal(t, uint64(3), *report.FirstInvalid)
		assert.Equal(t, proof.ViolationLink, report.Violation)
	})

	t.Run("genesis block", func(t *testing.T) {
		l := populated(t, 1)

		l.blocks[0].Payload.EvidenceLocator = "https://x/0.jpg"

		report := l.Verify()
		assert.False(t, report.Valid)
		require.NotNil(t, report.FirstInvalid)
		assert.Equal(t, uint64(0), *report.FirstInvalid)
		assert.Equal(t, proof.ViolationGenesis, report.Violation)
	})

	t.Run("snapshot taken before tampering", func(t *testing.T) {
		l := populated(t, 2)
		chain := l.Chain()

		l.blocks[1].Payload.Notes = "tampered"

		assert.True(t, Verify(l.hash, chain).Valid)
	})
}

func TestLedger_TamperProperty(t *testing.T) {
	const length = 12
	l := populated(t, length-1)
	original := l.Chain()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("payload tampering is reported at the tampered index", prop.ForAll(
		func(k int, notes string) bool {
			defer func() { copy(l.blocks, original) }()

			if notes == l.blocks[k].Payload.Notes {
				return true
			}
			l.blocks[k].Payload.Notes = notes

			report := l.Verify()
			return !report.Valid && report.FirstInvalid != nil && *report.FirstInvalid == uint64(k)
		},
		gen.IntRange(1, length-1),
		gen.AlphaString(),
	))

	properties.Property("previous hash tampering is reported at the tampered index", prop.ForAll(
		func(k int) bool {
			defer func() { copy(l.blocks, original) }()

			l.blocks[k].PreviousHash = mocks.GenericHash(k)

			report := l.Verify()
			return !report.Valid && *report.FirstInvalid == uint64(k) && report.Violation == proof.ViolationLink
		},
		gen.IntRange(1, length-1),
	))

	properties.TestingRun(t)
}
