// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package blastdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"syscall"
	"time"
)

// Compile performs one complete database compile: spawn makeblastdb, pump
// src into its input pipe (through a gunzip stage when cfg.Decompress is
// set), close the pipe, and wait for the tool to finish.
//
// The returned int is the tool's exit status. A non-zero status is a
// business outcome, not an error; err is non-nil only for structural
// failures (bad configuration, malformed compressed input, spawn failure).
// Even when the pump fails mid-stream the child is closed and waited on,
// so no process is leaked. The caller retains ownership of src.
func Compile(src io.Reader, cfg Config) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	cmd, err := StartCommand(cfg)
	if err != nil {
		return 0, fmt.Errorf("spawn %s: %w", Args(cfg)[0], err)
	}
	start := time.Now()

	counted := &countingReader{src: src}
	var reader chunkReader
	if cfg.Decompress {
		reader = NewGunzipReader(counted, cfg.ChunkSize)
	} else {
		reader = newRawReader(counted, cfg.ChunkSize)
	}

	pumpErr := pump(reader, cmd.Stdin())
	status, waitErr := cmd.Wait()
	recordCompile(status, counted.n, time.Since(start))

	// A broken pipe means the child stopped reading and exited on its own
	// terms; its exit status is authoritative there.
	if pumpErr != nil && !errors.Is(pumpErr, syscall.EPIPE) {
		return status, pumpErr
	}
	if waitErr != nil {
		return status, waitErr
	}
	return status, nil
}

// CompileOptions merges opts on top of the defaults and compiles src.
// An unrecognized option fails before any process is spawned.
func CompileOptions(src io.Reader, opts Options) (int, error) {
	cfg := DefaultConfig()
	if err := cfg.Merge(opts); err != nil {
		return 0, err
	}
	return Compile(src, cfg)
}

// CompileFromURL downloads url and compiles it in a single streaming pass,
// with no intermediate on-disk copy. ftp URLs are rewritten to https before
// the request. Once the response begins, the outbound direction of the
// connection is half-closed to signal the peer that no more request data
// follows, which lets some servers finalize the response promptly. A
// non-zero exit status is logged as a one-line diagnostic and still
// returned to the caller.
func CompileFromURL(ctx context.Context, logger *slog.Logger, url string, cfg Config) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	url = normalizeScheme(url)

	dialer := &trackingDialer{}
	client := &http.Client{Transport: &http.Transport{
		DialContext:       dialer.DialContext,
		DisableKeepAlives: true,
	}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download %s: %s", url, resp.Status)
	}
	dialer.CloseWrite()

	logger.Debug("compile.start", "url", url, "out", cfg.Out)
	status, err := Compile(resp.Body, cfg)
	if err != nil {
		return status, err
	}
	if status != 0 {
		logger.Warn("compile.exit", "status", status, "url", url)
	}
	return status, nil
}

// normalizeScheme rewrites ftp URLs to https. Assembly document summaries
// report ftp:// download paths, but NCBI serves the same paths over HTTPS
// from the same hosts.
func normalizeScheme(url string) string {
	if rest, ok := strings.CutPrefix(url, "ftp://"); ok {
		return "https://" + rest
	}
	return url
}

// trackingDialer remembers the most recent connection so the outbound
// direction can be shut down once the request has been fully written.
// Mirrors shutdown(SHUT_WR) on the raw socket.
type trackingDialer struct {
	mu   sync.Mutex
	conn net.Conn
}

func (d *trackingDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	var nd net.Dialer
	conn, err := nd.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.conn = conn
	d.mu.Unlock()
	return conn, nil
}

// CloseWrite half-closes the tracked connection where the transport
// supports it. Errors are ignored: the half-close is advisory.
func (d *trackingDialer) CloseWrite() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cw, ok := d.conn.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}
}

// countingReader tracks raw bytes consumed from the source.
type countingReader struct {
	src io.Reader
	n   int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.src.Read(p)
	c.n += int64(n)
	return n, err
}
