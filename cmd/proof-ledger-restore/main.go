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
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/optakt/proof-ledger/codec/zbor"
	"github.com/optakt/proof-ledger/models/proof"
	"github.com/optakt/proof-ledger/service/backup"
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
		flagBucket string
		flagData   string
		flagInput  string
		flagLevel  string
		flagObject string
	)

	pflag.StringVarP(&flagBucket, "bucket", "b", "", "GCS bucket to download the snapshot from (local file if empty)")
	pflag.StringVarP(&flagData, "data", "d", "data", "database directory to restore the ledger journal into")
	pflag.StringVarP(&flagInput, "input", "f", "snapshot.zst", "snapshot file to restore from, or download to")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.StringVarP(&flagObject, "object", "o", "", "name of the snapshot object (latest snapshot if empty)")

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

	if flagBucket != "" {
		ctx := context.Background()
		client, err := gcs.NewClient(ctx)
		if err != nil {
			log.Error().Err(err).Msg("could not create GCS client")
			return failure
		}
		defer client.Close()

		download := backup.NewDownloader(client.Bucket(flagBucket))
		object := flagObject
		if object == "" {
			// Snapshot names are timestamps, so the latest one sorts last.
			objects, err := download.List(ctx, "snapshots/")
			if err != nil {
				log.Error().Str("bucket", flagBucket).Err(err).Msg("could not list snapshots")
				return failure
			}
			if len(objects) == 0 {
				log.Error().Str("bucket", flagBucket).Msg("no snapshots available")
				return failure
			}
			object = objects[len(objects)-1]
		}

		err = download.Download(ctx, filepath.Clean(flagInput), object)
		if err != nil {
			log.Error().Str("bucket", flagBucket).Str("object", object).Err(err).Msg("could not download snapshot")
			return failure
		}
		log.Info().Str("bucket", flagBucket).Str("object", object).Msg("snapshot downloaded")
	}

	db, err := badger.Open(proof.DefaultOptions(flagData))
	if err != nil {
		log.Error().Str("data", flagData).Err(err).Msg("could not open journal database")
		return failure
	}
	defer db.Close()

	// Check if the database is empty.
	codec, err := zbor.NewCodec()
	if err != nil {
		log.Error().Err(err).Msg("could not initialize storage codec")
		return failure
	}
	journal := journal.New(db, storage.New(codec))
	_, err = journal.Last()
	if err == nil {
		log.Error().Str("data", flagData).Msg("database directory already contains a ledger journal")
		return failure
	}
	if !errors.Is(err, proof.ErrNotFound) {
		log.Error().Str("data", flagData).Err(err).Msg("could not check journal database")
		return failure
	}

	file, err := os.Open(flagInput)
	if err != nil {
		log.Error().Str("input", flagInput).Err(err).Msg("could not open snapshot file")
		return failure
	}
	defer file.Close()

	err = backup.Restore(db, file)
	if err != nil {
		log.Error().Err(err).Msg("snapshot restoration failed")
		return failure
	}

	// A restored journal is only trusted once its chain verifies.
	_, err = journal.Last()
	if err != nil {
		log.Error().Err(err).Msg("snapshot did not contain a ledger journal")
		return failure
	}
	restored, err := ledger.New(log, hasher.New(), ledger.WithJournal(journal))
	if err != nil {
		log.Error().Err(err).Msg("could not replay restored journal")
		return failure
	}
	report := restored.Verify()
	if !report.Valid {
		log.Error().
			Uint64("length", report.Length).
			Uint64("first_invalid", *report.FirstInvalid).
			Str("violation", string(report.Violation)).
			Msg("restored ledger is corrupted")
		return failure
	}

	log.Info().
		Uint64("length", report.Length).
		Str("head", report.Head).
		Msg("snapshot restoration complete")

	return success
}
