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
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/ziflex/lecho/v2"
	"golang.org/x/sync/errgroup"

	"github.com/optakt/proof-ledger/api/rest"
	"github.com/optakt/proof-ledger/codec/zbor"
	"github.com/optakt/proof-ledger/models/proof"
	"github.com/optakt/proof-ledger/service/hasher"
	"github.com/optakt/proof-ledger/service/journal"
	"github.com/optakt/proof-ledger/service/ledger"
	"github.com/optakt/proof-ledger/service/metrics"
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

	// Signal catching for clean shutdown.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	// Command line parameter initialization.
	var (
		flagData    string
		flagLevel   string
		flagMetrics string
		flagPort    uint16
		flagTimeout time.Duration
	)

	pflag.StringVarP(&flagData, "data", "d", "", "database directory for the ledger journal (in-memory if empty)")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.StringVarP(&flagMetrics, "metrics", "m", "", "address to serve prometheus metrics on (disabled if empty)")
	pflag.Uint16VarP(&flagPort, "port", "p", 8080, "port to serve the REST API on")
	pflag.DurationVarP(&flagTimeout, "timeout", "t", 30*time.Second, "maximum duration of the graceful shutdown")

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
	elog := lecho.From(log)

	// Open the journal database and replay the ledger from it.
	db, err := badger.Open(proof.DefaultOptions(flagData))
	if err != nil {
		log.Error().Str("data", flagData).Err(err).Msg("could not open journal database")
		return failure
	}
	defer func() {
		err := db.Close()
		if err != nil {
			log.Error().Err(err).Msg("could not close journal database")
		}
	}()

	codec, err := zbor.NewCodec()
	if err != nil {
		log.Error().Err(err).Msg("could not initialize storage codec")
		return failure
	}
	journal := journal.New(db, storage.New(codec))

	chain, err := ledger.New(log, hasher.New(), ledger.WithJournal(journal))
	if err != nil {
		log.Error().Err(err).Msg("could not initialize ledger")
		return failure
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	err = metrics.RegisterBadgerMetrics(registry)
	if err != nil {
		log.Error().Err(err).Msg("could not register badger metrics")
		return failure
	}
	instrumented := metrics.NewLedger(chain, registry)

	// REST API initialization.
	ctrl := rest.NewController(instrumented, rest.NewValidator())

	server := echo.New()
	server.HideBanner = true
	server.HidePort = true
	server.Logger = elog
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	server.Use(lecho.Middleware(lecho.Config{Logger: elog}))
	ctrl.Register(server)

	var msvr *metrics.Server
	if flagMetrics != "" {
		msvr = metrics.NewServer(log, flagMetrics, registry)
	}

	// This section launches the main executing components in their own
	// goroutine, so they can run concurrently. Afterwards, we wait for an
	// interrupt signal in order to proceed with the next section.
	group, ctx := errgroup.WithContext(context.Background())
	group.Go(func() error {
		log.Info().Uint16("port", flagPort).Msg("Proof Ledger Server starting")
		err := server.Start(fmt.Sprint(":", flagPort))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("REST API encountered error: %w", err)
		}
		log.Info().Msg("Proof Ledger Server stopped")
		return nil
	})
	if msvr != nil {
		group.Go(msvr.Start)
	}

	select {
	case <-sig:
		log.Info().Msg("Proof Ledger Server stopping")
	case <-ctx.Done():
		log.Warn().Msg("Proof Ledger Server aborted")
	}
	go func() {
		<-sig
		log.Warn().Msg("forcing exit")
		os.Exit(1)
	}()

	// The following code starts a shut down with a certain timeout and makes
	// sure that the servers stop accepting requests before the journal
	// database is closed. Failures of several components are all reported.
	shutdown, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()

	var errs *multierror.Error
	err = server.Shutdown(shutdown)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("could not shut down REST API: %w", err))
	}
	if msvr != nil {
		err = msvr.Shutdown(shutdown)
		if err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	err = group.Wait()
	if err != nil {
		errs = multierror.Append(errs, err)
	}

	if errs.ErrorOrNil() != nil {
		log.Error().Err(errs).Msg("Proof Ledger Server shut down with errors")
		return failure
	}

	report := chain.Verify()
	log.Info().
		Uint64("length", report.Length).
		Bool("valid", report.Valid).
		Str("head", report.Head).
		Msg("Proof Ledger Server done")

	return success
}
