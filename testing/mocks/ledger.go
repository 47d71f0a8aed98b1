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

package mocks

import (
	"testing"

	"github.com/optakt/proof-ledger/models/proof"
)

type Ledger struct {
	AppendFunc     func(payload proof.Payload) (proof.Block, error)
	ChainFunc      func() []proof.Block
	VerifyFunc     func() proof.Report
	BlockFunc      func(index uint64) (proof.Block, error)
	DeliveriesFunc func(deliveryID string) []proof.Block
}

func BaselineLedger(t *testing.T) *Ledger {
	t.Helper()

	chain := GenericChain(3)
	l := Ledger{
		AppendFunc: func(payload proof.Payload) (proof.Block, error) {
			return GenericBlock(3), nil
		},
		ChainFunc: func() []proof.Block {
			return chain
		},
		VerifyFunc: func() proof.Report {
			return proof.Report{Valid: true, Length: uint64(len(chain)), Head: chain[len(chain)-1].Hash}
		},
		BlockFunc: func(index uint64) (proof.Block, error) {
			return chain[1], nil
		},
		DeliveriesFunc: func(deliveryID string) []proof.Block {
			return chain[1:2]
		},
	}

	return &l
}

func (l *Ledger) Append(payload proof.Payload) (proof.Block, error) {
	return l.AppendFunc(payload)
}

func (l *Ledger) Chain() []proof.Block {
	return l.ChainFunc()
}

func (l *Ledger) Verify() proof.Report {
	return l.VerifyFunc()
}

func (l *Ledger) Block(index uint64) (proof.Block, error) {
	return l.BlockFunc(index)
}

func (l *Ledger) Deliveries(deliveryID string) []proof.Block {
	return l.DeliveriesFunc(deliveryID)
}
