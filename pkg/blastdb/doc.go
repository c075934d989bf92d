// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package blastdb compiles BLAST databases from stream input.
//
// It invokes makeblastdb as a subprocess and feeds sequence data into its
// standard input in bounded chunks, optionally decompressing a gzip stream
// on the fly. Multi-gigabyte compressed downloads are compiled without an
// intermediate on-disk copy of the decompressed data.
//
// # Quick Start
//
// Compile a database from a gzip-compressed stream:
//
//	cfg := blastdb.DefaultConfig()
//	cfg.Out = "ecoli"
//	cfg.Title = "ecoli"
//	cfg.DBType = blastdb.Nucleotide
//	cfg.ParseSeqIDs = true
//	cfg.Decompress = true
//
//	status, err := blastdb.Compile(stream, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if status != 0 {
//	    log.Fatalf("makeblastdb exited with status %d", status)
//	}
//
// Or stream straight from a URL:
//
//	status, err := blastdb.CompileFromURL(ctx, logger, url, cfg)
//
// # Options
//
// Option maps use makeblastdb's own vocabulary and reject unknown keys
// before any process is spawned:
//
//	cfg := blastdb.DefaultConfig()
//	err := cfg.Merge(blastdb.Options{
//	    "out":          "ecoli",
//	    "dbtype":       "nucl",
//	    "parse_seqids": true,
//	    "decompress":   true,
//	})
//
// # Exit Status vs Error
//
// A non-zero makeblastdb exit status is returned as a value, not an error.
// Errors are reserved for structural failures: invalid configuration,
// malformed compressed input, or a process that could not be spawned. In
// every case the child's input pipe is closed and the child is waited on,
// so no zombie process is left behind.
package blastdb
