// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package blastdb

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// pipeRecorder is a stand-in for the child's input pipe that records what
// was written and whether it was closed.
type pipeRecorder struct {
	buf      bytes.Buffer
	writes   int
	closed   bool
	writeErr error
}

func (p *pipeRecorder) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.writes++
	return p.buf.Write(b)
}

func (p *pipeRecorder) Close() error {
	p.closed = true
	return nil
}

// chunkSeq replays a fixed chunk sequence, then a terminal error.
type chunkSeq struct {
	chunks [][]byte
	err    error
}

func (s *chunkSeq) Next() ([]byte, error) {
	if len(s.chunks) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	return chunk, nil
}

func TestPump_CopiesAllChunksAndCloses(t *testing.T) {
	pipe := &pipeRecorder{}
	src := &chunkSeq{chunks: [][]byte{[]byte(">a\n"), []byte("ACGT"), []byte("\n")}}

	err := pump(src, pipe)
	require.NoError(t, err)
	require.True(t, pipe.closed, "pipe must be closed after the pump stops")
	require.Equal(t, ">a\nACGT\n", pipe.buf.String())
}

// TestPump_EmptySource verifies the eager first read: no input at all means
// the pipe is closed immediately with zero bytes written, and the child is
// left to run to completion on empty input.
func TestPump_EmptySource(t *testing.T) {
	pipe := &pipeRecorder{}

	err := pump(&chunkSeq{}, pipe)
	require.NoError(t, err)
	require.True(t, pipe.closed)
	require.Zero(t, pipe.writes)
	require.Zero(t, pipe.buf.Len())
}

// TestPump_ReaderFailureStillCloses verifies that a mid-stream read
// failure closes the pipe anyway, so the caller can wait on the child
// without deadlock.
func TestPump_ReaderFailureStillCloses(t *testing.T) {
	pipe := &pipeRecorder{}
	wantErr := &DecompressError{Err: errors.New("bad deflate block")}
	src := &chunkSeq{chunks: [][]byte{[]byte("partial")}, err: wantErr}

	err := pump(src, pipe)
	var decErr *DecompressError
	require.ErrorAs(t, err, &decErr)
	require.True(t, pipe.closed)
	require.Equal(t, "partial", pipe.buf.String())
}

// TestPump_WriteFailureStillCloses covers the child vanishing mid-stream.
func TestPump_WriteFailureStillCloses(t *testing.T) {
	pipe := &pipeRecorder{writeErr: errors.New("broken pipe")}
	src := &chunkSeq{chunks: [][]byte{bytes.Repeat([]byte("A"), 1<<20)}}

	err := pump(src, pipe)
	require.Error(t, err)
	require.True(t, pipe.closed)
}
