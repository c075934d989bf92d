// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package blastdb

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// countingStub returns a stub executable that counts the bytes arriving on
// its standard input and records the count in a file the test can read back.
func countingStub(t *testing.T) (exe, countFile string) {
	t.Helper()
	countFile = filepath.Join(t.TempDir(), "count")
	exe = stubChild(t, fmt.Sprintf("wc -c > %s", countFile))
	return exe, countFile
}

func readCount(t *testing.T, countFile string) int {
	t.Helper()
	data, err := os.ReadFile(countFile)
	require.NoError(t, err)
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	return n
}

// TestCompile_DecompressedBytesReachChild is the end-to-end contract: the
// child receives exactly the decompressed payload, byte for byte, with no
// intermediate file involved.
func TestCompile_DecompressedBytesReachChild(t *testing.T) {
	exe, countFile := countingStub(t)

	payload := bytes.Repeat([]byte(">seq1\nACGTACGTACGT\n"), 4096)
	cfg := DefaultConfig()
	cfg.Executable = exe
	cfg.Decompress = true
	cfg.ChunkSize = 512

	status, err := Compile(bytes.NewReader(gzipped(t, payload)), cfg)
	require.NoError(t, err)
	require.Zero(t, status)
	require.Equal(t, len(payload), readCount(t, countFile))
}

func TestCompile_RawPassThrough(t *testing.T) {
	exe, countFile := countingStub(t)

	payload := []byte(">seq1\nACGT\n")
	cfg := DefaultConfig()
	cfg.Executable = exe

	status, err := Compile(bytes.NewReader(payload), cfg)
	require.NoError(t, err)
	require.Zero(t, status)
	require.Equal(t, len(payload), readCount(t, countFile))
}

func TestCompile_EmptyInput(t *testing.T) {
	for _, decompress := range []bool{false, true} {
		t.Run(fmt.Sprintf("decompress=%v", decompress), func(t *testing.T) {
			exe, countFile := countingStub(t)

			cfg := DefaultConfig()
			cfg.Executable = exe
			cfg.Decompress = decompress

			status, err := Compile(bytes.NewReader(nil), cfg)
			require.NoError(t, err)
			require.Zero(t, status)
			require.Zero(t, readCount(t, countFile))
		})
	}
}

// TestCompile_CorruptStream feeds a stream that decays mid-way into garbage.
// The decode failure must surface as a DecompressError, and the child must
// still be reaped: Compile returns its exit status alongside the error.
func TestCompile_CorruptStream(t *testing.T) {
	exe := stubChild(t, "cat > /dev/null")

	good := gzipped(t, bytes.Repeat([]byte("ACGT"), 2048))
	corrupt := append(good[:len(good)/2:len(good)/2], bytes.Repeat([]byte{0xff}, 64)...)

	cfg := DefaultConfig()
	cfg.Executable = exe
	cfg.Decompress = true
	cfg.ChunkSize = 256

	status, err := Compile(bytes.NewReader(corrupt), cfg)
	var derr *DecompressError
	require.ErrorAs(t, err, &derr)
	require.Zero(t, status)
}

func TestCompile_NonZeroStatus(t *testing.T) {
	exe := stubChild(t, "cat > /dev/null; exit 2")

	cfg := DefaultConfig()
	cfg.Executable = exe

	status, err := Compile(bytes.NewReader([]byte("ACGT")), cfg)
	require.NoError(t, err)
	require.Equal(t, 2, status)
}

func TestCompile_InvalidConfig(t *testing.T) {
	// A zero chunk size is a configuration error like any other
	// non-positive value, never silently replaced with the default.
	for _, chunkSize := range []int{0, -1} {
		cfg := DefaultConfig()
		cfg.ChunkSize = chunkSize

		_, err := Compile(bytes.NewReader(nil), cfg)
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		require.Equal(t, "chunk_size", cfgErr.Key)
	}
}

func TestNormalizeScheme(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			in:   "ftp://ftp.ncbi.nlm.nih.gov/genomes/all/GCF_000005845.2_ASM584v2/GCF_000005845.2_ASM584v2_genomic.fna.gz",
			want: "https://ftp.ncbi.nlm.nih.gov/genomes/all/GCF_000005845.2_ASM584v2/GCF_000005845.2_ASM584v2_genomic.fna.gz",
		},
		{
			in:   "https://ftp.ncbi.nlm.nih.gov/genomes/all/GCF_000005845.2_ASM584v2_genomic.fna.gz",
			want: "https://ftp.ncbi.nlm.nih.gov/genomes/all/GCF_000005845.2_ASM584v2_genomic.fna.gz",
		},
		{
			in:   "http://mirror.example.org/g.fna.gz",
			want: "http://mirror.example.org/g.fna.gz",
		},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, normalizeScheme(tt.in))
	}
}

// TestCompileFromURL_StreamsResponse downloads from a local server and
// verifies the child receives the full decompressed payload.
func TestCompileFromURL_StreamsResponse(t *testing.T) {
	exe, countFile := countingStub(t)

	payload := bytes.Repeat([]byte(">seq1\nACGTACGT\n"), 1024)
	body := gzipped(t, payload)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Executable = exe
	cfg.Decompress = true

	status, err := CompileFromURL(context.Background(), nil, srv.URL, cfg)
	require.NoError(t, err)
	require.Zero(t, status)
	require.Equal(t, len(payload), readCount(t, countFile))
}

func TestCompileFromURL_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := CompileFromURL(context.Background(), nil, srv.URL, DefaultConfig())
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

// TestCompileOptions_AppliesOptions resolves the platform-default executable
// name through PATH, so the stub has to carry that exact name.
func TestCompileOptions_AppliesOptions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub children need a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	countFile := filepath.Join(dir, "count")
	exe := filepath.Join(dir, DefaultExecutable())
	script := fmt.Sprintf("#!/bin/sh\nwc -c > %s\n", countFile)
	require.NoError(t, os.WriteFile(exe, []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	payload := []byte(">seq1\nACGTACGT\n")
	status, err := CompileOptions(bytes.NewReader(gzipped(t, payload)), Options{
		"decompress": true,
		"chunk_size": 3,
	})
	require.NoError(t, err)
	require.Zero(t, status)
	require.Equal(t, len(payload), readCount(t, countFile))
}
