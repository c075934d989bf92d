// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package edirect

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// GenomicSuffix is appended to an assembly name to form the downloadable
// sequence file name.
const GenomicSuffix = "_genomic.fna.gz"

// Source identifies the repository an assembly was published in.
type Source string

// Assembly sources, distinguished by the accession prefix: GCA_ accessions
// come from GenBank, everything else (GCF_) from RefSeq.
const (
	SourceRefSeq  Source = "RefSeq"
	SourceGenBank Source = "GenBank"
)

// Assembly identifies one downloadable genome assembly build.
type Assembly struct {
	// Species is the organism name as reported by the document summary.
	Species string `json:"species"`

	// Name is the trailing segment of the FTP directory, e.g.
	// "GCF_000005845.2_ASM584v2".
	Name string `json:"name"`

	// Version is the text after the first underscore of Name.
	Version string `json:"version"`

	// Source is RefSeq or GenBank.
	Source Source `json:"source"`

	// Path is the full URL of the _genomic.fna.gz sequence file.
	Path string `json:"path"`
}

// NewAssembly derives an Assembly from a species name and the assembly's
// FTP directory path.
func NewAssembly(species, dir string) Assembly {
	dir = strings.TrimRight(dir, "/")
	name := dir
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		name = dir[i+1:]
	}
	var version string
	if _, v, ok := strings.Cut(name, "_"); ok {
		version = v
	}
	source := SourceRefSeq
	if strings.HasPrefix(name, "GCA") {
		source = SourceGenBank
	}
	return Assembly{
		Species: species,
		Name:    name,
		Version: version,
		Source:  source,
		Path:    dir + "/" + name + GenomicSuffix,
	}
}

// DBName is the database name derived from the assembly: the accession up
// to the first dot.
func (a Assembly) DBName() string {
	name, _, _ := strings.Cut(a.Name, ".")
	return name
}

func (a Assembly) String() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.Species)
}

// Repository collects the assemblies resolved for a set of species.
type Repository struct {
	assemblies map[string][]Assembly
	seen       map[string]bool
}

// ParseRepository reads tab-separated records of the form
//
//	species<TAB>ftp_path_1[<TAB>ftp_path_2...]
//
// one per line, deduplicating assemblies by download path. A species that
// appears without any usable path is remembered and reported by
// Unreferenced, never treated as an error.
func ParseRepository(r io.Reader) (*Repository, error) {
	rep := &Repository{
		assemblies: make(map[string][]Assembly),
		seen:       make(map[string]bool),
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Split(strings.TrimSpace(scanner.Text()), "\t")
		species := strings.TrimSpace(fields[0])
		if species == "" {
			continue
		}
		rep.seen[species] = true
		for _, dir := range fields[1:] {
			if dir = strings.TrimSpace(dir); dir == "" {
				continue
			}
			rep.add(NewAssembly(species, dir))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read assembly records: %w", err)
	}
	return rep, nil
}

func (r *Repository) add(a Assembly) {
	for _, existing := range r.assemblies[a.Species] {
		if existing.Path == a.Path {
			return
		}
	}
	r.assemblies[a.Species] = append(r.assemblies[a.Species], a)
}

// Species returns the species with at least one resolved assembly, sorted.
func (r *Repository) Species() []string {
	names := make([]string, 0, len(r.assemblies))
	for s := range r.assemblies {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}

// Assemblies returns the assemblies resolved for a species.
func (r *Repository) Assemblies(species string) []Assembly {
	return r.assemblies[species]
}

// Unreferenced returns the species that appeared in the search results but
// have no resolvable download path, sorted.
func (r *Repository) Unreferenced() []string {
	var names []string
	for s := range r.seen {
		if len(r.assemblies[s]) == 0 {
			names = append(names, s)
		}
	}
	sort.Strings(names)
	return names
}

// Len returns the number of species with resolved assemblies.
func (r *Repository) Len() int { return len(r.assemblies) }

// PreferRefSeq drops GenBank assemblies when at least one RefSeq assembly
// is present. GenBank builds are only downloaded when no RefSeq build
// exists for the species.
func PreferRefSeq(assemblies []Assembly) []Assembly {
	hasRefSeq := false
	for _, a := range assemblies {
		if a.Source == SourceRefSeq {
			hasRefSeq = true
			break
		}
	}
	if !hasRefSeq {
		return assemblies
	}
	kept := make([]Assembly, 0, len(assemblies))
	for _, a := range assemblies {
		if a.Source == SourceRefSeq {
			kept = append(kept, a)
		}
	}
	return kept
}
