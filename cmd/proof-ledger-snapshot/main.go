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
	"os"
	"time"

	"cloud.google.com/go/storage"
	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/optakt/proof-ledger/models/proof"
	"github.com/optakt/proof-ledger/service/backup"
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
		flagLevel  string
		flagObject string
		flagOutput string
	)

	pflag.StringVarP(&flagBucket, "bucket", "b", "", "GCS bucket to upload the snapshot to (disabled if empty)")
	pflag.StringVarP(&flagData, "data", "d", "data", "database directory of the ledger journal")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.StringVarP(&flagObject, "object", "o", "", "name of the uploaded object (defaults to a timestamped name)")
	pflag.StringVarP(&flagOutput, "output", "f", "snapshot.zst", "target file for the snapshot (overwrites existing)")

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

	db, err := badger.Open(proof.DefaultOptions(flagData))
	if err != nil {
		log.Error().Str("data", flagData).Err(err).Msg("could not open journal database")
		return failure
	}
	defer db.Close()

	// open output file - create/truncate existing
	out, err := os.OpenFile(flagOutput, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		log.Error().Str("output", flagOutput).Err(err).Msg("could not open output file")
		return failure
	}
	defer out.Close()

	err = backup.Snapshot(db, out)
	if err != nil {
		log.Error().Err(err).Msg("could not write snapshot")
		return failure
	}
	err = out.Sync()
	if err != nil {
		log.Error().Str("output", flagOutput).Err(err).Msg("could not sync snapshot file")
		return failure
	}

	log.Info().Str("output", flagOutput).Msg("snapshot written")

	if flagBucket == "" {
		return success
	}

	object := flagObject
	if object == "" {
		object = time.Now().UTC().Format("snapshots/20060102T150405Z.zst")
	}

	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not create GCS client")
		return failure
	}
	defer client.Close()

	upload := backup.NewUploader(client.Bucket(flagBucket))
	err = upload.Upload(ctx, object, flagOutput)
	if err != nil {
		log.Error().Str("bucket", flagBucket).Str("object", object).Err(err).Msg("could not upload snapshot")
		return failure
	}

	log.Info().Str("bucket", flagBucket).Str("object", object).Msg("snapshot uploaded")

	return success
}
