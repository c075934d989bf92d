// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package blastdb

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// DecompressError reports malformed or truncated compressed input. It
// aborts the compile operation; there is no partial-recovery policy.
type DecompressError struct {
	Err error
}

func (e *DecompressError) Error() string {
	return fmt.Sprintf("blastdb decompress: %v", e.Err)
}

func (e *DecompressError) Unwrap() error { return e.Err }

// chunkReader produces successive byte chunks from a finite source.
// Next returns io.EOF exactly when the source is exhausted and on every
// call thereafter. Returned slices are valid only until the next call.
type chunkReader interface {
	Next() ([]byte, error)
}

// GunzipReader incrementally decompresses a gzip byte stream in bounded
// chunks. Streams made of multiple concatenated gzip members decode as the
// concatenation of all members.
//
// A GunzipReader owns its decompression state: it is single-use and must
// not be shared across goroutines. It does not close the source.
type GunzipReader struct {
	src  io.Reader
	zr   *gzip.Reader
	buf  []byte
	done bool
}

// NewGunzipReader wraps src for chunked decompression. chunkSize bounds the
// decompressed bytes returned per call and must be positive.
func NewGunzipReader(src io.Reader, chunkSize int) *GunzipReader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &GunzipReader{src: src, buf: make([]byte, chunkSize)}
}

// Next returns the next non-empty chunk of decompressed bytes, at most
// chunkSize long. A raw read that decompresses to nothing is not the end of
// the stream: Next keeps going until the decompressor produces output or
// the source is truly exhausted, then returns io.EOF. The returned slice is
// reused by the following call.
func (r *GunzipReader) Next() ([]byte, error) {
	if r.done {
		return nil, io.EOF
	}
	if r.zr == nil {
		zr, err := gzip.NewReader(r.src)
		if err != nil {
			r.done = true
			if err == io.EOF {
				// Empty source: no members at all. Not an error; the
				// child's own exit status decides the outcome.
				return nil, io.EOF
			}
			return nil, &DecompressError{Err: err}
		}
		zr.Multistream(true)
		r.zr = zr
	}
	for {
		n, err := r.zr.Read(r.buf)
		if n > 0 {
			return r.buf[:n:n], nil
		}
		switch {
		case err == nil:
			// Raw input consumed without producing output; keep reading.
		case err == io.EOF:
			r.done = true
			return nil, io.EOF
		case errors.Is(err, io.ErrUnexpectedEOF):
			r.done = true
			return nil, &DecompressError{Err: err}
		default:
			r.done = true
			return nil, &DecompressError{Err: err}
		}
	}
}

// Drain decompresses everything remaining in the source and returns it in
// one buffer. Used when the caller wants a single final flush rather than
// chunked iteration.
func (r *GunzipReader) Drain() ([]byte, error) {
	var out []byte
	for {
		chunk, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, chunk...)
	}
}

// rawReader chunks an uncompressed source without transformation.
type rawReader struct {
	src  io.Reader
	buf  []byte
	done bool
}

func newRawReader(src io.Reader, chunkSize int) *rawReader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &rawReader{src: src, buf: make([]byte, chunkSize)}
}

func (r *rawReader) Next() ([]byte, error) {
	if r.done {
		return nil, io.EOF
	}
	for {
		n, err := r.src.Read(r.buf)
		if n > 0 {
			return r.buf[:n:n], nil
		}
		if err == io.EOF {
			r.done = true
			return nil, io.EOF
		}
		if err != nil {
			r.done = true
			return nil, err
		}
	}
}
