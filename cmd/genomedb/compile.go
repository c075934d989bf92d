// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	uerrors "github.com/kraklabs/genomedb/internal/errors"
	"github.com/kraklabs/genomedb/pkg/blastdb"
)

// runCompile executes the 'compile' CLI command: one streaming makeblastdb
// run fed from a file, a URL, or standard input. The process exits with
// makeblastdb's own exit status.
func runCompile(args []string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	in := fs.String("in", "-", "Input: file path, http(s) URL, or '-' for stdin")
	out := fs.String("out", "", "Database name passed to makeblastdb")
	title := fs.String("title", "", "Database title passed to makeblastdb")
	dbtype := fs.String("dbtype", "", "Database type (nucl|prot); empty omits -dbtype")
	parseSeqIDs := fs.Bool("parse-seqids", false, "Pass -parse_seqids to makeblastdb")
	decompress := fs.Bool("decompress", false, "Gunzip the input stream on the fly")
	chunkSize := fs.Int("chunk-size", blastdb.DefaultChunkSize, "Pipe write chunk size in bytes")
	debug := fs.Bool("debug", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: genomedb compile [options]

Description:
  Compile one BLAST database by streaming the input into makeblastdb's
  standard input. With --decompress the stream is gunzipped incrementally;
  the decompressed data never touches the disk.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  genomedb compile --in genome.fna.gz --decompress --dbtype nucl --out ecoli
  genomedb compile --in https://example.org/g.fna.gz --decompress --out g
  zcat genome.fna.gz | genomedb compile --dbtype nucl --out ecoli
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg := blastdb.DefaultConfig()
	cfg.Out = *out
	cfg.Title = *title
	cfg.DBType = blastdb.DBType(*dbtype)
	cfg.ParseSeqIDs = *parseSeqIDs
	cfg.Decompress = *decompress
	cfg.ChunkSize = *chunkSize
	if err := cfg.Validate(); err != nil {
		uerrors.FatalError(uerrors.NewConfigError(
			"Invalid compile configuration",
			err.Error(),
			"Fix the offending flag and retry",
			err,
		), false)
	}

	var (
		status int
		err    error
	)
	switch {
	case strings.Contains(*in, "://"):
		status, err = blastdb.CompileFromURL(context.Background(), logger, *in, cfg)
	case *in == "-" || *in == "":
		status, err = blastdb.Compile(os.Stdin, cfg)
	default:
		var f *os.File
		f, err = os.Open(*in)
		if err != nil {
			uerrors.FatalError(uerrors.NewInputError(
				"Cannot open input file",
				err.Error(),
				"Check the --in path",
			), false)
		}
		status, err = compileFile(f, cfg)
	}
	if err != nil {
		var cfgErr *blastdb.ConfigError
		var decErr *blastdb.DecompressError
		switch {
		case errors.As(err, &cfgErr):
			uerrors.FatalError(uerrors.NewConfigError(
				"Invalid compile configuration", cfgErr.Error(),
				"Fix the offending option and retry", err), false)
		case errors.As(err, &decErr):
			uerrors.FatalError(uerrors.NewInputError(
				"Input is not valid gzip data", decErr.Error(),
				"Check the input file, or drop --decompress for plain FASTA"), false)
		default:
			uerrors.FatalError(uerrors.NewInternalError(
				"Compile failed", err.Error(),
				"Check that makeblastdb is installed and on PATH", err), false)
		}
	}
	os.Exit(status)
}

func compileFile(f io.ReadCloser, cfg blastdb.Config) (int, error) {
	defer f.Close()
	return blastdb.Compile(f, cfg)
}
