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

package rest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/optakt/proof-ledger/models/proof"
)

// SubmitProofRequest is the body of a proof submission.
type SubmitProofRequest struct {
	EntityID        string  `json:"entityId" validate:"required"`
	DeliveryID      string  `json:"deliveryId" validate:"required"`
	EvidenceLocator string  `json:"evidenceLocator" validate:"required"`
	Temperature     Reading `json:"temperature,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

// Payload converts the request into a ledger payload.
func (r SubmitProofRequest) Payload() proof.Payload {
	return proof.Payload{
		EntityID:        r.EntityID,
		DeliveryID:      r.DeliveryID,
		EvidenceLocator: r.EvidenceLocator,
		Temperature:     string(r.Temperature),
		Notes:           r.Notes,
	}
}

// Reading is a sensor reading that clients may send either as a JSON string or
// as a JSON number. Numbers keep their textual form, so that `25.50` and
// `"25.50"` result in the same reading.
type Reading string

func (r *Reading) UnmarshalJSON(data []byte) error {

	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}

	var text string
	err := json.Unmarshal(data, &text)
	if err == nil {
		*r = Reading(text)
		return nil
	}

	var number json.Number
	err = json.Unmarshal(data, &number)
	if err != nil {
		return fmt.Errorf("reading must be a string or a number: %w", err)
	}
	*r = Reading(number.String())

	return nil
}
