// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package main implements the genomedb CLI for batch-downloading genome
// assemblies from NCBI and compiling them into BLAST databases.
//
// Usage:
//
//	genomedb fetch <query>...          Download and compile assemblies
//	genomedb compile [options]         Compile one database from a stream
//	genomedb resolve [--json] <query>  Resolve assembly URLs only
package main

import (
	"flag"
	"fmt"
	"os"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// GlobalFlags holds flags shared across subcommands.
type GlobalFlags struct {
	// JSON switches machine-readable output on.
	JSON bool

	// Quiet suppresses progress reporting.
	Quiet bool

	// NoColor disables colored terminal output.
	NoColor bool
}

// main is the entry point for the genomedb CLI.
//
// It parses global flags and dispatches to command handlers.
func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `genomedb - BLAST databases from NCBI genome assemblies

genomedb resolves genome assemblies for an NCBI E-direct query, streams
each compressed sequence file through gunzip directly into makeblastdb's
standard input, and reports the compiled databases. No decompressed copy
ever touches the disk.

Usage:
  genomedb <command> [options]

Commands:
  fetch         Download assemblies for queries and compile databases
  compile       Compile one database from a file, URL, or standard input
  resolve       Resolve assembly download URLs without compiling

Global Options:
  --version     Show version and exit

Examples:
  genomedb fetch '"Escherichia coli"[Organism]'
  genomedb fetch --filter skip.txt --log compiled.tsv 'Salmonella'
  genomedb compile --in genome.fna.gz --decompress --dbtype nucl --out ecoli
  genomedb resolve --json 'Mycobacterium tuberculosis'

External tools:
  makeblastdb               NCBI BLAST+ (required by fetch and compile)
  esearch, efetch, xtract   NCBI Entrez Direct (required by fetch and resolve)

For detailed command help: genomedb <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("genomedb version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "fetch":
		runFetch(cmdArgs)
	case "compile":
		runCompile(cmdArgs)
	case "resolve":
		runResolve(cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
