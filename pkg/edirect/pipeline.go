// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package edirect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// SearchArgs returns the argument vectors of the three-stage E-direct
// pipeline for query: esearch | efetch | xtract.
func SearchArgs(query string) [][]string {
	return [][]string{
		{"esearch", "-db", "assembly", "-query", query},
		{"efetch", "-format", "docsum"},
		{"xtract", "-pattern", "DocumentSummary",
			"-element", "SpeciesName", "FtpPath_RefSeq", "FtpPath_GenBank"},
	}
}

// Search resolves the latest genome assemblies for an NCBI query by running
// the E-direct pipeline and parsing its tab-separated output. The E-direct
// tools must be installed and on PATH; their stderr stays connected to the
// parent so their diagnostics remain visible.
func Search(ctx context.Context, query string) (*Repository, error) {
	argvs := SearchArgs(query)
	cmds := make([]*exec.Cmd, len(argvs))
	for i, argv := range argvs {
		cmds[i] = exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmds[i].Stderr = os.Stderr
	}

	// Chain stdout -> stdin across the stages.
	for i := 1; i < len(cmds); i++ {
		out, err := cmds[i-1].StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("edirect pipeline: %w", err)
		}
		cmds[i].Stdin = out
	}
	last := cmds[len(cmds)-1]
	out, err := last.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("edirect pipeline: %w", err)
	}

	started := 0
	for _, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			// Reap whatever already started before giving up.
			for _, running := range cmds[:started] {
				_ = running.Process.Kill()
				_ = running.Wait()
			}
			return nil, fmt.Errorf("edirect %s: %w", cmd.Path, err)
		}
		started++
	}

	rep, parseErr := ParseRepository(out)

	// Wait downstream-first so no stage's output is torn down while its
	// consumer is still reading.
	var waitErr error
	for i := len(cmds) - 1; i >= 0; i-- {
		if err := cmds[i].Wait(); err != nil {
			waitErr = errors.Join(waitErr, fmt.Errorf("%s: %w", argvs[i][0], err))
		}
	}
	if parseErr != nil {
		return nil, parseErr
	}
	if waitErr != nil {
		return nil, fmt.Errorf("edirect pipeline: %w", waitErr)
	}
	return rep, nil
}
