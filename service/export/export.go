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

package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gowebpki/jcs"

	"github.com/optakt/proof-ledger/models/proof"
)

// Blocks writes the given blocks as JSON lines. Every line is the RFC 8785
// canonical form of one block, so that third parties can diff and hash exports
// independently of the JSON encoder used.
func Blocks(w io.Writer, blocks []proof.Block) error {
	for _, block := range blocks {
		line, err := Block(block)
		if err != nil {
			return fmt.Errorf("could not export block (index: %d): %w", block.Index, err)
		}
		_, err = w.Write(append(line, '\n'))
		if err != nil {
			return fmt.Errorf("could not write block (index: %d): %w", block.Index, err)
		}
	}
	return nil
}

// Block returns the canonical JSON form of a block.
func Block(block proof.Block) ([]byte, error) {

	data, err := json.Marshal(block)
	if err != nil {
		return nil, fmt.Errorf("could not encode block: %w", err)
	}

	canonical, err := jcs.Transform(data)
	if err != nil {
		return nil, fmt.Errorf("could not canonicalize block: %w", err)
	}

	return canonical, nil
}
