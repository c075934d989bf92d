// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package blastdb

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// DefaultExecutable returns the makeblastdb binary name for this platform.
func DefaultExecutable() string {
	if runtime.GOOS == "windows" {
		return "makeblastdb.exe"
	}
	return "makeblastdb"
}

// Args builds the makeblastdb argument vector for cfg. Unset options are
// omitted entirely; no empty-value flags are emitted. The order is fixed:
// executable, -in, -out, -title, -dbtype, -parse_seqids.
func Args(cfg Config) []string {
	exe := cfg.Executable
	if exe == "" {
		exe = DefaultExecutable()
	}
	in := cfg.In
	if in == "" {
		in = "-"
	}
	args := []string{exe, "-in", in}
	if cfg.Out != "" {
		args = append(args, "-out", cfg.Out)
	}
	if cfg.Title != "" {
		args = append(args, "-title", cfg.Title)
	}
	if cfg.DBType != "" {
		args = append(args, "-dbtype", string(cfg.DBType))
	}
	if cfg.ParseSeqIDs {
		args = append(args, "-parse_seqids")
	}
	return args
}

// Command is one spawned makeblastdb process with its input pipe captured.
// Lifecycle: StartCommand, write chunks to Stdin, close it, Wait. Stdout
// and stderr stay connected to the parent so the tool's diagnostics remain
// visible to the operator.
type Command struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// StartCommand spawns makeblastdb as configured by cfg.
func StartCommand(cfg Config) (*Command, error) {
	argv := Args(cfg)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return nil, err
	}
	return &Command{cmd: cmd, stdin: stdin}, nil
}

// Stdin returns the child's writable input pipe.
func (c *Command) Stdin() io.WriteCloser { return c.stdin }

// Wait blocks until the child terminates and returns its numeric exit
// status. A non-zero status means the external tool reported failure; the
// controller does not interpret specific codes. Wait is one-shot.
func (c *Command) Wait() (int, error) {
	err := c.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
