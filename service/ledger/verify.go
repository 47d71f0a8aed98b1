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
	"github.com/optakt/proof-ledger/models/proof"
	"github.com/optakt/proof-ledger/service/hasher"
)

// Verify checks the chain invariants for every block, in index order, and
// reports the first block that breaks one of them. It never modifies the
// given blocks.
func Verify(hash *hasher.Hasher, blocks []proof.Block) proof.Report {

	report := proof.Report{
		Valid:  true,
		Length: uint64(len(blocks)),
	}
	if len(blocks) == 0 {
		return invalid(report, 0, proof.ViolationGenesis)
	}
	report.Head = blocks[len(blocks)-1].Hash

	for i, block := range blocks {
		index := uint64(i)

		if block.Index != index {
			return invalid(report, index, proof.ViolationIndex)
		}

		if index == 0 && (block.PreviousHash != proof.GenesisHash || !block.IsGenesis()) {
			return invalid(report, index, proof.ViolationGenesis)
		}

		if index > 0 && block.PreviousHash != blocks[i-1].Hash {
			return invalid(report, index, proof.ViolationLink)
		}

		if hash.Block(block) != block.Hash {
			return invalid(report, index, proof.ViolationHash)
		}
	}

	return report
}

func invalid(report proof.Report, index uint64, violation proof.Violation) proof.Report {
	report.Valid = false
	report.FirstInvalid = &index
	report.Violation = violation
	return report
}
