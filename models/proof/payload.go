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
	"fmt"
	"strings"
)

// Payload describes one delivery-proof event. EntityID, DeliveryID and
// EvidenceLocator are required, Temperature and Notes are optional. An empty
// optional field is the same as an absent one.
type Payload struct {
	EntityID        string `json:"entityId" cbor:"1,keyasint"`
	DeliveryID      string `json:"deliveryId" cbor:"2,keyasint"`
	EvidenceLocator string `json:"evidenceLocator" cbor:"3,keyasint"`
	Temperature     string `json:"temperature,omitempty" cbor:"4,keyasint,omitempty"`
	Notes           string `json:"notes,omitempty" cbor:"5,keyasint,omitempty"`
}

// Validate checks that the payload can be appended to a ledger.
func (p Payload) Validate() error {

	var missing []string
	if strings.TrimSpace(p.EntityID) == "" {
		missing = append(missing, "entityId")
	}
	if strings.TrimSpace(p.DeliveryID) == "" {
		missing = append(missing, "deliveryId")
	}
	if strings.TrimSpace(p.EvidenceLocator) == "" {
		missing = append(missing, "evidenceLocator")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields (%s): %w", strings.Join(missing, ", "), ErrInvalidPayload)
	}

	if p.EvidenceLocator == GenesisLocator {
		return fmt.Errorf("evidence locator %q is reserved: %w", GenesisLocator, ErrInvalidPayload)
	}

	return nil
}
