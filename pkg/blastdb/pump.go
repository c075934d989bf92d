// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package blastdb

import (
	"bufio"
	"io"
)

// pump moves chunks from src into the child's input pipe until src is
// exhausted, then closes the pipe. The pipe is closed on every exit path,
// including a failed read, so the caller can always wait on the child
// without deadlocking it on end-of-input.
//
// Writes go through the OS pipe's bounded buffer: a blocking write is the
// backpressure mechanism, throttling the producer at exactly the rate the
// child consumes. Each write is flushed immediately so the child observes
// data promptly.
func pump(src chunkReader, pipe io.WriteCloser) error {
	defer pipe.Close()

	// Eager first read: an empty source closes the pipe immediately and
	// lets the child run to completion with empty input.
	chunk, err := src.Next()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}

	w := bufio.NewWriter(pipe)
	for {
		if _, werr := w.Write(chunk); werr != nil {
			return werr
		}
		if werr := w.Flush(); werr != nil {
			return werr
		}
		recordChunk(len(chunk))

		chunk, err = src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
