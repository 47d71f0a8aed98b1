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

package export_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/proof-ledger/models/proof"
	"github.com/optakt/proof-ledger/service/export"
	"github.com/optakt/proof-ledger/testing/mocks"
)

func TestBlock(t *testing.T) {
	block := mocks.GenericChain(2)[1]

	got, err := export.Block(block)

	require.NoError(t, err)
	want := `{"hash":"` + block.Hash + `","index":1,"payload":{"deliveryId":"DEL-1","entityId":"NGO1","evidenceLocator":"https://x/1.jpg","notes":"ok","temperature":"25"},"previousHash":"` + block.PreviousHash + `","timestamp":` + strconv.FormatInt(block.Timestamp, 10) + `}`
	assert.Equal(t, want, string(got))
}

func TestBlocks(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		chain := mocks.GenericChain(4)

		var buf bytes.Buffer
		err := export.Blocks(&buf, chain)
		require.NoError(t, err)

		var got []proof.Block
		scanner := bufio.NewScanner(&buf)
		for scanner.Scan() {
			var block proof.Block
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &block))
			got = append(got, block)
		}
		require.NoError(t, scanner.Err())
		assert.Equal(t, chain, got)
	})

	t.Run("handles writer failure", func(t *testing.T) {
		err := export.Blocks(failingWriter{}, mocks.GenericChain(2))

		assert.ErrorIs(t, err, mocks.GenericError)
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, mocks.GenericError
}
