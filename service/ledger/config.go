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
	"time"

	"github.com/optakt/proof-ledger/models/proof"
)

// DefaultConfig is the default configuration for a ledger: no journal, so the
// chain only lives as long as the process, and the system clock.
var DefaultConfig = Config{
	Journal: nil,
	Clock:   time.Now,
}

// Config contains the optional parameters of a ledger.
type Config struct {
	Journal proof.Journal
	Clock   func() time.Time
}

// Option is a function that modifies a ledger configuration.
type Option func(*Config)

// WithJournal sets the write-ahead journal of the ledger. Its blocks are
// replayed when the ledger is created, and every new block is saved to it
// before it becomes visible.
func WithJournal(journal proof.Journal) Option {
	return func(cfg *Config) {
		cfg.Journal = journal
	}
}

// WithClock overrides the clock used to timestamp blocks.
func WithClock(clock func() time.Time) Option {
	return func(cfg *Config) {
		cfg.Clock = clock
	}
}
