// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	uerrors "github.com/kraklabs/genomedb/internal/errors"
	"github.com/kraklabs/genomedb/internal/output"
	"github.com/kraklabs/genomedb/internal/ui"
	"github.com/kraklabs/genomedb/pkg/edirect"
)

// resolveResult is the machine-readable form of one query's resolution.
type resolveResult struct {
	Query        string             `json:"query"`
	Assemblies   []edirect.Assembly `json:"assemblies"`
	Unreferenced []string           `json:"unreferenced,omitempty"`
}

// runResolve executes the 'resolve' CLI command: resolve assembly download
// URLs for each query and print them without downloading anything.
func runResolve(args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	noColor := fs.Bool("no-color", false, "Disable colored output")
	all := fs.Bool("all", false, "List GenBank assemblies even when RefSeq ones exist")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: genomedb resolve [options] <query>...

Description:
  Run the E-direct pipeline for each query and print the resolved genome
  assembly download URLs. By default GenBank assemblies are hidden when a
  RefSeq assembly exists for the species, matching what fetch would do.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  genomedb resolve 'Mycobacterium tuberculosis'
  genomedb resolve --json --all 'Salmonella'
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	queries := fs.Args()
	if len(queries) == 0 {
		uerrors.FatalError(uerrors.NewInputError(
			"No query given",
			"resolve needs at least one NCBI assembly query",
			"Run: genomedb resolve 'Mycobacterium tuberculosis'",
		), *jsonOut)
	}
	ui.InitColors(*noColor)

	ctx := context.Background()
	var results []resolveResult
	for _, query := range queries {
		rep, err := edirect.Search(ctx, query)
		if err != nil {
			uerrors.FatalError(uerrors.NewInternalError(
				"Cannot resolve assemblies for query",
				err.Error(),
				"Check that esearch, efetch and xtract are installed and on PATH",
				err,
			), *jsonOut)
		}
		results = append(results, collect(query, rep, *all))
	}

	if *jsonOut {
		if err := output.JSON(results); err != nil {
			uerrors.FatalError(err, true)
		}
		return
	}

	for _, res := range results {
		ui.Header(res.Query)
		var species string
		for _, a := range res.Assemblies {
			if a.Species != species {
				species = a.Species
				ui.SubHeader(species + ":")
			}
			fmt.Printf("  %s %s %s\n", a.Name, a.Source, ui.DimText(a.Path))
		}
		for _, s := range res.Unreferenced {
			ui.Warningf("no download path for %q", s)
		}
		fmt.Printf("%s %s\n\n", ui.Label("Assemblies:"), ui.CountText(len(res.Assemblies)))
	}
}

func collect(query string, rep *edirect.Repository, all bool) resolveResult {
	res := resolveResult{Query: query, Unreferenced: rep.Unreferenced()}
	for _, species := range rep.Species() {
		assemblies := rep.Assemblies(species)
		if !all {
			assemblies = edirect.PreferRefSeq(assemblies)
		}
		res.Assemblies = append(res.Assemblies, assemblies...)
	}
	return res
}
