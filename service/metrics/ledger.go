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

package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/optakt/proof-ledger/models/proof"
)

const namespace = "proof_ledger"

// Ledger wraps a ledger and records metrics for the blocks it appends and the
// verifications it runs.
type Ledger struct {
	proof.Ledger
	appended  prometheus.Counter
	rejected  prometheus.Counter
	verified  prometheus.Counter
	corrupted prometheus.Counter
	length    prometheus.Gauge

	// Concurrent appends can return out of index order, so the gauge only
	// ever moves to a longer chain.
	mutex   *sync.Mutex
	longest uint64
}

// NewLedger wraps the given ledger and registers its metrics with the given
// registerer.
func NewLedger(ledger proof.Ledger, reg prometheus.Registerer) *Ledger {
	factory := promauto.With(reg)

	appendedOpts := prometheus.CounterOpts{
		Name:      "appended_blocks",
		Namespace: namespace,
		Help:      "number of blocks appended to the ledger",
	}
	appended := factory.NewCounter(appendedOpts)

	rejectedOpts := prometheus.CounterOpts{
		Name:      "rejected_payloads",
		Namespace: namespace,
		Help:      "number of payloads rejected as invalid",
	}
	rejected := factory.NewCounter(rejectedOpts)

	verifiedOpts := prometheus.CounterOpts{
		Name:      "verifications",
		Namespace: namespace,
		Help:      "number of full chain verifications",
	}
	verified := factory.NewCounter(verifiedOpts)

	corruptedOpts := prometheus.CounterOpts{
		Name:      "corrupted_verifications",
		Namespace: namespace,
		Help:      "number of verifications that found a corrupted chain",
	}
	corrupted := factory.NewCounter(corruptedOpts)

	lengthOpts := prometheus.GaugeOpts{
		Name:      "chain_length",
		Namespace: namespace,
		Help:      "number of blocks in the chain, genesis included",
	}
	length := factory.NewGauge(lengthOpts)
	longest := uint64(len(ledger.Chain()))
	length.Set(float64(longest))

	l := Ledger{
		Ledger:    ledger,
		appended:  appended,
		rejected:  rejected,
		verified:  verified,
		corrupted: corrupted,
		length:    length,
		mutex:     &sync.Mutex{},
		longest:   longest,
	}

	return &l
}

func (l *Ledger) Append(payload proof.Payload) (proof.Block, error) {
	block, err := l.Ledger.Append(payload)
	if errors.Is(err, proof.ErrInvalidPayload) {
		l.rejected.Inc()
	}
	if err != nil {
		return proof.Block{}, err
	}
	l.appended.Inc()
	l.observe(block.Index + 1)
	return block, nil
}

func (l *Ledger) Verify() proof.Report {
	report := l.Ledger.Verify()
	l.verified.Inc()
	if !report.Valid {
		l.corrupted.Inc()
	}
	return report
}

func (l *Ledger) observe(length uint64) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if length <= l.longest {
		return
	}
	l.longest = length
	l.length.Set(float64(length))
}
