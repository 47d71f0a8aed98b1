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

// Journal is the write-ahead log behind a ledger. A block is only published
// by the ledger once Save returned without error. When Blocks cannot read a
// stored block back, it returns the blocks before it together with an
// *UnreadableError.
type Journal interface {
	Save(block Block) error
	Blocks() ([]Block, error)
}
