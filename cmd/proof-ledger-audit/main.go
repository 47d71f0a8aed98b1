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

package main

import (
	"errors"
	"os"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/optakt/proof-ledger/codec/zbor"
	"github.com/optakt/proof-ledger/models/proof"
	"github.com/optakt/proof-ledger/service/export"
	"github.com/optakt/proof-ledger/service/hasher"
	"github.com/optakt/proof-ledger/service/journal"
	"github.com/optakt/proof-ledger/service/ledger"
	"github.com/optakt/proof-ledger/service/storage"
)

const (
	success = 0
	failure = 1
)

func main() {
	os.Exit(run())
}

func run() int {

	// Command line parameter initialization.
	var (
		flagBlock    uint64
		flagData     string
		flagDelivery string
		flagExport   string
		flagLevel    string
	)

	pflag.Uint64VarP(&flagBlock, "block", "b", 0, "index of a single journaled block to print")
	pflag.StringVarP(&flagData, "data", "d", "data", "database directory of the ledger journal")
	pflag.StringVarP(&flagDelivery, "delivery", "r", "", "delivery to print the proof history of")
	pflag.StringVarP(&flagExport, "export", "e", "", "file to export the chain to as canonical JSON lines (overwrites existing)")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")

	pflag.Parse()

	// Logger initialization.
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLevel)
	if err != nil {
		log.Error().Str("level", flagLevel).Err(err).Msg("could not parse log level")
		return failure
	}
	log = log.Level(level)

	if flagData == "" {
		log.Error().Msg("data directory is required for an audit")
		return failure
	}

	db, err := badger.Open(proof.DefaultOptions(flagData))
	if err != nil {
		log.Error().Str("data", flagData).Err(err).Msg("could not open journal database")
		return failure
	}
	defer db.Close()

	codec, err := zbor.NewCodec()
	if err != nil {
		log.Error().Err(err).Msg("could not initialize storage codec")
		return failure
	}
	journal := journal.New(db, storage.New(codec))

	// An empty journal is reported here, since replaying it into a ledger
	// would initialize it with a genesis block.
	_, err = journal.Last()
	if errors.Is(err, proof.ErrNotFound) {
		log.Error().Str("data", flagData).Msg("journal is empty")
		return failure
	}
	if err != nil {
		log.Error().Err(err).Msg("could not check journal")
		return failure
	}

	chain, err := ledger.New(log, hasher.New(), ledger.WithJournal(journal))
	if err != nil {
		log.Error().Err(err).Msg("could not replay journal")
		return failure
	}
	blocks := chain.Chain()
	report := chain.Verify()

	if pflag.CommandLine.Changed("block") {
		block, err := journal.Block(flagBlock)
		if err != nil {
			log.Error().Uint64("block", flagBlock).Err(err).Msg("could not read block")
			return failure
		}
		err = export.Blocks(os.Stdout, []proof.Block{block})
		if err != nil {
			log.Error().Err(err).Msg("could not print block")
			return failure
		}
	}

	if flagExport != "" {
		file, err := os.OpenFile(flagExport, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			log.Error().Str("export", flagExport).Err(err).Msg("could not open export file")
			return failure
		}
		defer file.Close()

		err = export.Blocks(file, blocks)
		if err != nil {
			log.Error().Str("export", flagExport).Err(err).Msg("could not export chain")
			return failure
		}
		log.Info().Str("export", flagExport).Int("blocks", len(blocks)).Msg("chain exported")
	}

	if flagDelivery != "" {
		history, err := journal.Deliveries(flagDelivery)
		if err != nil {
			log.Error().Str("delivery", flagDelivery).Err(err).Msg("could not look up delivery")
			return failure
		}
		err = export.Blocks(os.Stdout, history)
		if err != nil {
			log.Error().Err(err).Msg("could not print delivery history")
			return failure
		}
		log.Info().Str("delivery", flagDelivery).Int("blocks", len(history)).Msg("delivery history printed")
	}

	if !report.Valid {
		log.Error().
			Uint64("length", report.Length).
			Uint64("first_invalid", *report.FirstInvalid).
			Str("violation", string(report.Violation)).
			Msg("ledger is corrupted")
		return failure
	}

	log.Info().
		Uint64("length", report.Length).
		Str("head", report.Head).
		Msg("ledger is valid")

	return success
}
