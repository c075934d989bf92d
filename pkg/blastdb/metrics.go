// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package blastdb

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsCompile holds Prometheus metrics for the compile subsystem.
type metricsCompile struct {
	once sync.Once

	// Pump throughput
	rawBytes    prometheus.Counter
	pumpedBytes prometheus.Counter
	chunks      prometheus.Counter

	// Outcomes
	compilesOK     prometheus.Counter
	compilesFailed prometheus.Counter

	// Durations
	compileDuration prometheus.Histogram
}

var compMetrics metricsCompile

func (m *metricsCompile) init() {
	m.once.Do(func() {
		m.rawBytes = prometheus.NewCounter(prometheus.CounterOpts{Name: "genomedb_compile_raw_bytes_total", Help: "Raw (possibly compressed) bytes read from the source"})
		m.pumpedBytes = prometheus.NewCounter(prometheus.CounterOpts{Name: "genomedb_compile_pumped_bytes_total", Help: "Bytes written to the makeblastdb input pipe"})
		m.chunks = prometheus.NewCounter(prometheus.CounterOpts{Name: "genomedb_compile_chunks_total", Help: "Chunks written to the makeblastdb input pipe"})

		m.compilesOK = prometheus.NewCounter(prometheus.CounterOpts{Name: "genomedb_compiles_ok_total", Help: "Compiles that exited with status zero"})
		m.compilesFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "genomedb_compiles_failed_total", Help: "Compiles that exited with a non-zero status"})

		m.compileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "genomedb_compile_seconds",
			Help:    "Wall time of one compile operation",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		})

		prometheus.MustRegister(
			m.rawBytes, m.pumpedBytes, m.chunks,
			m.compilesOK, m.compilesFailed,
			m.compileDuration,
		)
	})
}

// record helpers - used by the pump and orchestrator
func recordChunk(n int) {
	compMetrics.init()
	compMetrics.chunks.Inc()
	compMetrics.pumpedBytes.Add(float64(n))
}

func recordCompile(status int, rawBytes int64, d time.Duration) {
	compMetrics.init()
	compMetrics.rawBytes.Add(float64(rawBytes))
	if status == 0 {
		compMetrics.compilesOK.Inc()
	} else {
		compMetrics.compilesFailed.Inc()
	}
	compMetrics.compileDuration.Observe(d.Seconds())
}
