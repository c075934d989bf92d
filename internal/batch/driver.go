// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/genomedb/pkg/blastdb"
	"github.com/kraklabs/genomedb/pkg/edirect"
)

// Driver runs one batch job: resolve assemblies for a set of queries,
// download each sequence file, and compile it into a BLAST database.
type Driver struct {
	// Config is the base compile configuration applied to every assembly.
	// Out and Title are overridden per assembly; Decompress is forced on
	// because the downloaded sequence files are gzip-compressed.
	Config blastdb.Config

	// Filter holds species names to skip.
	Filter map[string]bool

	// Workers bounds how many assemblies compile concurrently. Zero or one
	// keeps the original sequential order of emitted lines.
	Workers int

	// Out receives one species<TAB>path line per compiled assembly. Log,
	// when non-nil, receives a copy of the same lines.
	Out io.Writer
	Log io.Writer

	// Errs receives warnings about species with no resolvable download
	// path. Such species are skipped, never fatal.
	Errs io.Writer

	Logger *slog.Logger

	// Search and CompileURL are seams for tests; nil selects the real
	// E-direct pipeline and streaming compiler.
	Search     func(ctx context.Context, query string) (*edirect.Repository, error)
	CompileURL func(ctx context.Context, url string, cfg blastdb.Config) (int, error)
}

// exitError carries a non-zero makeblastdb exit status through the
// errgroup so the first failure cancels the remaining work.
type exitError struct {
	status int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("makeblastdb exited with status %d", e.status)
}

// Run processes the queries in order. It returns the first non-zero
// makeblastdb exit status, which is fatal to the whole batch, or an error
// for structural failures. Both zero means every assembly compiled.
func (d *Driver) Run(ctx context.Context, queries []string) (int, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	search := d.Search
	if search == nil {
		search = edirect.Search
	}
	compile := d.CompileURL
	if compile == nil {
		compile = func(ctx context.Context, url string, cfg blastdb.Config) (int, error) {
			return blastdb.CompileFromURL(ctx, logger, url, cfg)
		}
	}
	workers := d.Workers
	if workers < 1 {
		workers = 1
	}

	for _, query := range queries {
		rep, err := search(ctx, query)
		if err != nil {
			return 0, fmt.Errorf("resolve %q: %w", query, err)
		}
		d.warnUnreferenced(rep)

		var jobs []edirect.Assembly
		for _, species := range rep.Species() {
			if d.Filter[species] {
				logger.Debug("fetch.skip", "species", species)
				continue
			}
			jobs = append(jobs, edirect.PreferRefSeq(rep.Assemblies(species))...)
		}
		logger.Info("fetch.plan", "query", query, "assemblies", len(jobs))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		var mu sync.Mutex

		for _, job := range jobs {
			g.Go(func() error {
				// A failed sibling cancels the group; queued work must not
				// start a compile after that.
				if err := gctx.Err(); err != nil {
					return err
				}
				cfg := d.Config
				cfg.In = "-"
				cfg.Decompress = true
				cfg.Out = job.DBName()
				cfg.Title = job.DBName()

				status, err := withRetry(gctx, logger, func() (int, error) {
					return compile(gctx, job.Path, cfg)
				})
				if err != nil {
					return fmt.Errorf("%s: %w", job.Name, err)
				}
				if status != 0 {
					return &exitError{status: status}
				}

				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintf(d.Out, "%s\t%s\n", job.Species, job.Path)
				if d.Log != nil {
					fmt.Fprintf(d.Log, "%s\t%s\n", job.Species, job.Path)
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			var ee *exitError
			if errors.As(err, &ee) {
				fmt.Fprintln(d.Errs, "makeblastdb exited with an error")
				return ee.status, nil
			}
			return 0, err
		}
	}
	return 0, nil
}

func (d *Driver) warnUnreferenced(rep *edirect.Repository) {
	missing := rep.Unreferenced()
	if len(missing) == 0 {
		return
	}
	fmt.Fprintln(d.Errs, "Assembly referenced but URL missing for the following species:")
	for _, species := range missing {
		fmt.Fprintf(d.Errs, "  - %q\n", species)
	}
}
