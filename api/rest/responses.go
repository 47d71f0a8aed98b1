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
	"github.com/optakt/proof-ledger/models/proof"
)

// LedgerResponse is the full chain together with its verification outcome.
type LedgerResponse struct {
	Chain             []proof.Block `json:"chain"`
	IsValid           bool          `json:"isValid"`
	FirstInvalidIndex *uint64       `json:"firstInvalidIndex,omitempty"`
}

// DeliveriesResponse lists all blocks recorded for one delivery, oldest first.
type DeliveriesResponse struct {
	DeliveryID string        `json:"deliveryId"`
	Blocks     []proof.Block `json:"blocks"`
}
