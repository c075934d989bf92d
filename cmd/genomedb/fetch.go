// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/genomedb/internal/batch"
	uerrors "github.com/kraklabs/genomedb/internal/errors"
	"github.com/kraklabs/genomedb/internal/ui"
	"github.com/kraklabs/genomedb/pkg/blastdb"
	"github.com/kraklabs/genomedb/pkg/edirect"
)

// runFetch executes the 'fetch' CLI command: resolve assemblies for each
// query, stream-download every sequence file, and compile it with
// makeblastdb. Each successful compile emits a species<TAB>path line on
// stdout; the first non-zero makeblastdb status aborts the batch and
// becomes the process exit code.
func runFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	filterPath := fs.StringP("filter", "f", "", "Skip species listed in FILE (one name per line)")
	logPath := fs.StringP("log", "l", "", "Write a log of compiled genomes to FILE")
	configPath := fs.String("config", "", "Path to yaml configuration file")
	workers := fs.Int("workers", 1, "Concurrent assembly compiles")
	dbtype := fs.String("dbtype", "nucl", "Database type passed to makeblastdb (nucl|prot)")
	parseSeqIDs := fs.Bool("parse-seqids", true, "Pass -parse_seqids to makeblastdb")
	chunkSize := fs.Int("chunk-size", blastdb.DefaultChunkSize, "Pipe write chunk size in bytes")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	debug := fs.Bool("debug", false, "Enable debug logging")
	quiet := fs.BoolP("quiet", "q", false, "Suppress progress output")
	noColor := fs.Bool("no-color", false, "Disable colored output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: genomedb fetch [options] <query>...

Description:
  Resolve the latest genome assemblies for each NCBI query, download every
  sequence file, and compile it into a BLAST database. When a species has a
  RefSeq assembly, GenBank assemblies are skipped. Compiled genomes are
  reported as species<TAB>path lines on standard output.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  genomedb fetch '"Escherichia coli"[Organism]'
  genomedb fetch -f skip.txt -l compiled.tsv 'Salmonella'
  genomedb fetch --workers 4 --metrics-addr :9100 'Mycobacterium'
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	queries := fs.Args()
	if len(queries) == 0 {
		uerrors.FatalError(uerrors.NewInputError(
			"No query given",
			"fetch needs at least one NCBI assembly query",
			"Run: genomedb fetch '\"Escherichia coli\"[Organism]'",
		), false)
	}

	globals := GlobalFlags{Quiet: *quiet, NoColor: *noColor}
	ui.InitColors(*noColor)

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Configuration file first, flags override.
	fileCfg := &batch.FileConfig{}
	if *configPath != "" {
		loaded, err := batch.LoadFileConfig(*configPath)
		if err != nil {
			uerrors.FatalError(uerrors.NewConfigError(
				"Cannot load fetch configuration",
				err.Error(),
				"Check the yaml file for unknown or misspelled keys",
				err,
			), false)
		}
		fileCfg = loaded
	}

	base := blastdb.DefaultConfig()
	base.DBType = blastdb.DBType(*dbtype)
	base.ParseSeqIDs = *parseSeqIDs
	base.ChunkSize = *chunkSize
	if !fs.Changed("dbtype") && fileCfg.DBType != "" {
		base.DBType = blastdb.DBType(fileCfg.DBType)
	}
	if !fs.Changed("parse-seqids") && fileCfg.ParseSeqIDs != nil {
		base.ParseSeqIDs = *fileCfg.ParseSeqIDs
	}
	if !fs.Changed("chunk-size") && fileCfg.ChunkSize > 0 {
		base.ChunkSize = fileCfg.ChunkSize
	}
	if err := base.Validate(); err != nil {
		uerrors.FatalError(uerrors.NewConfigError(
			"Invalid compile configuration",
			err.Error(),
			"Fix the offending flag or configuration key",
			err,
		), false)
	}
	if !fs.Changed("workers") && fileCfg.Workers > 0 {
		*workers = fileCfg.Workers
	}
	if !fs.Changed("filter") && fileCfg.Filter != "" {
		*filterPath = fileCfg.Filter
	}
	if !fs.Changed("log") && fileCfg.Log != "" {
		*logPath = fileCfg.Log
	}

	filter := map[string]bool{}
	if *filterPath != "" {
		loaded, err := batch.LoadFilter(*filterPath)
		if err != nil {
			uerrors.FatalError(uerrors.NewConfigError(
				"Cannot load species filter",
				err.Error(),
				"Check the filter file path",
				err,
			), false)
		}
		filter = loaded
	}

	var logFile *os.File
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			uerrors.FatalError(uerrors.NewConfigError(
				"Cannot open log file",
				err.Error(),
				"Check the log file path and permissions",
				err,
			), false)
		}
		defer f.Close()
		logFile = f
	}

	// Optional Prometheus metrics endpoint.
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux}
			logger.Info("metrics.http.start", "addr", *metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	driver := &batch.Driver{
		Config:  base,
		Filter:  filter,
		Workers: *workers,
		Out:     os.Stdout,
		Errs:    os.Stderr,
		Logger:  logger,
		Search:  spinnerSearch(NewProgressConfig(globals)),
	}
	if logFile != nil {
		driver.Log = logFile
	}

	status, err := driver.Run(ctx, queries)
	if err != nil {
		uerrors.FatalError(classifyFetchError(err), false)
	}
	if status != 0 {
		// The external tool's own status becomes ours.
		os.Exit(status)
	}
	if !*quiet {
		ui.Success("All assemblies compiled")
	}
}

// spinnerSearch wraps the E-direct search with a progress spinner, since a
// docsum fetch for a broad query can take a while with no output.
func spinnerSearch(cfg ProgressConfig) func(context.Context, string) (*edirect.Repository, error) {
	return func(ctx context.Context, query string) (*edirect.Repository, error) {
		sp := NewSpinner(cfg, "Resolving "+query)
		if sp != nil {
			done := make(chan struct{})
			defer close(done)
			go func() {
				ticker := time.NewTicker(100 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-done:
						_ = sp.Finish()
						return
					case <-ticker.C:
						_ = sp.Add(1)
					}
				}
			}()
		}
		return edirect.Search(ctx, query)
	}
}

// classifyFetchError maps a driver failure onto a structured user error.
func classifyFetchError(err error) error {
	var cfgErr *blastdb.ConfigError
	if errors.As(err, &cfgErr) {
		return uerrors.NewConfigError(
			"Invalid compile configuration",
			cfgErr.Error(),
			"Fix the offending option and retry",
			err,
		)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, syscall.ECONNRESET) {
		return uerrors.NewNetworkError(
			"Download failed",
			err.Error(),
			"Check your network connection and retry; transient resets are retried three times",
			err,
		)
	}
	return uerrors.NewInternalError(
		"Batch fetch failed",
		err.Error(),
		"Check that makeblastdb and the E-direct tools are installed and on PATH",
		err,
	)
}
