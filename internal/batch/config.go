// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional fetch configuration file. Command-line flags
// override anything set here.
type FileConfig struct {
	// DBType and ParseSeqIDs are the base makeblastdb options.
	DBType      string `yaml:"dbtype"`
	ParseSeqIDs *bool  `yaml:"parse_seqids"`

	// ChunkSize bounds per-iteration pipe writes, in bytes.
	ChunkSize int `yaml:"chunk_size"`

	// Workers bounds concurrent assembly compiles.
	Workers int `yaml:"workers"`

	// Filter is a path to a species filter file; Log a path for the
	// compiled-genomes log.
	Filter string `yaml:"filter"`
	Log    string `yaml:"log"`
}

// LoadFileConfig reads and strictly decodes a yaml configuration file.
// Unknown keys are rejected, consistent with the compile option policy.
func LoadFileConfig(path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg FileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadFilter reads a species filter file, one species name per line.
// Blank lines and surrounding whitespace are ignored.
func LoadFilter(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open filter: %w", err)
	}
	defer f.Close()

	filter := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if species := strings.TrimSpace(scanner.Text()); species != "" {
			filter[species] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read filter %s: %w", path, err)
	}
	return filter, nil
}
