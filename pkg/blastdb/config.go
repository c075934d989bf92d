// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package blastdb

import "fmt"

// DBType is the value passed to makeblastdb's -dbtype option.
type DBType string

// Database types accepted by makeblastdb.
const (
	Nucleotide DBType = "nucl"
	Protein    DBType = "prot"
)

// DefaultChunkSize bounds the bytes read from the source and written to the
// child's input pipe per iteration.
const DefaultChunkSize = 16 * 1024

// Config holds the options for one database compile operation.
//
// The zero value is not ready for use; start from DefaultConfig and set
// fields directly or apply an option map with Merge.
type Config struct {
	// In is the -in argument: a file path, or "-" for standard input.
	// Stream compiles always use "-".
	In string

	// Out and Title are passed through to makeblastdb when non-empty.
	Out   string
	Title string

	// DBType selects nucleotide or protein; empty omits -dbtype.
	DBType DBType

	// ParseSeqIDs adds -parse_seqids when true.
	ParseSeqIDs bool

	// Decompress gunzips the input stream before feeding the child.
	Decompress bool

	// ChunkSize bounds per-iteration reads and writes. Must be positive.
	ChunkSize int

	// Executable overrides the makeblastdb binary name. Empty selects the
	// platform default. Tests point this at a stub.
	Executable string
}

// Options is a key/value option set in makeblastdb's own vocabulary:
// "input", "out", "title", "dbtype", "parse_seqids", "decompress",
// "chunk_size". Any other key is a configuration error.
type Options map[string]any

// DefaultConfig returns the makeblastdb defaults: read standard input,
// 16 KiB chunks, no decompression.
func DefaultConfig() Config {
	return Config{In: "-", ChunkSize: DefaultChunkSize}
}

// ConfigError reports an invalid or unrecognized compile option. It is
// raised at configuration-merge time, before any subprocess is spawned.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("blastdb config: option %q: %s", e.Key, e.Reason)
}

// Merge applies opts on top of the current configuration. Unrecognized
// option names fail fast with a ConfigError rather than being silently
// ignored; so do values of the wrong type.
func (c *Config) Merge(opts Options) error {
	for key, val := range opts {
		switch key {
		case "input":
			s, ok := val.(string)
			if !ok {
				return &ConfigError{Key: key, Reason: "want string"}
			}
			c.In = s
		case "out":
			s, ok := val.(string)
			if !ok {
				return &ConfigError{Key: key, Reason: "want string"}
			}
			c.Out = s
		case "title":
			s, ok := val.(string)
			if !ok {
				return &ConfigError{Key: key, Reason: "want string"}
			}
			c.Title = s
		case "dbtype":
			switch v := val.(type) {
			case DBType:
				c.DBType = v
			case string:
				c.DBType = DBType(v)
			default:
				return &ConfigError{Key: key, Reason: "want string"}
			}
		case "parse_seqids":
			b, ok := val.(bool)
			if !ok {
				return &ConfigError{Key: key, Reason: "want bool"}
			}
			c.ParseSeqIDs = b
		case "decompress":
			b, ok := val.(bool)
			if !ok {
				return &ConfigError{Key: key, Reason: "want bool"}
			}
			c.Decompress = b
		case "chunk_size":
			n, ok := val.(int)
			if !ok {
				return &ConfigError{Key: key, Reason: "want int"}
			}
			c.ChunkSize = n
		default:
			return &ConfigError{Key: key, Reason: "unrecognized option"}
		}
	}
	return c.Validate()
}

// Validate checks invariants that hold independently of how the
// configuration was built.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return &ConfigError{Key: "chunk_size", Reason: "must be positive"}
	}
	switch c.DBType {
	case "", Nucleotide, Protein:
	default:
		return &ConfigError{Key: "dbtype", Reason: fmt.Sprintf("unknown database type %q", c.DBType)}
	}
	return nil
}
