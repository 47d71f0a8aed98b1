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

// Violation names the chain invariant a block breaks.
type Violation string

// Known violations, in the order in which they are checked for each block.
const (
	ViolationIndex   Violation = "index"
	ViolationGenesis Violation = "genesis"
	ViolationLink    Violation = "link"
	ViolationHash    Violation = "hash"

	// ViolationUnreadable marks a journaled block that could not be read back,
	// so none of the invariants above can be checked for it.
	ViolationUnreadable Violation = "unreadable"
)

// Report is the outcome of a full-chain verification. A chain that fails
// verification is a finding, not an error: FirstInvalid points at the lowest
// block index that breaks an invariant, and Violation says which one.
type Report struct {
	Valid        bool      `json:"isValid"`
	FirstInvalid *uint64   `json:"firstInvalidIndex,omitempty"`
	Violation    Violation `json:"violation,omitempty"`
	Length       uint64    `json:"length"`
	Head         string    `json:"head"`
}
