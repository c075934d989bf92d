// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package edirect resolves genome assembly download URLs through NCBI's
// E-direct command-line tools.
//
// A query runs through esearch | efetch | xtract as a connected subprocess
// pipeline producing tab-separated species/URL records, which are parsed
// into a Repository of Assembly references. The package's only job is
// turning that tabular text into records; the E-direct tools themselves are
// external collaborators.
//
//	rep, err := edirect.Search(ctx, `"Escherichia coli"[Organism]`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, species := range rep.Species() {
//	    for _, a := range edirect.PreferRefSeq(rep.Assemblies(species)) {
//	        fmt.Println(a.Path)
//	    }
//	}
package edirect
