// Package metrics implements Prometheus metrics for capture scans.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every cipherscope collector. It is separate from the
// default registry so exported textfiles carry no Go runtime series.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// RecordsReadTotal counts capture records read per file
	RecordsReadTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cipherscope_records_read_total",
			Help: "Total number of capture records read",
		},
		[]string{"file"},
	)

	// RecordsTruncatedTotal counts trailing records cut short by end of file
	RecordsTruncatedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cipherscope_records_truncated_total",
			Help: "Total number of capture records with a truncated payload",
		},
		[]string{"file"},
	)

	// PayloadBytesTotal counts payload bytes read
	PayloadBytesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cipherscope_payload_bytes_total",
			Help: "Total number of payload bytes read from capture records",
		},
		[]string{"file"},
	)

	// ClassificationsTotal counts verdicts by outcome
	ClassificationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cipherscope_classifications_total",
			Help: "Total number of payload classifications by verdict",
		},
		[]string{"file", "verdict"},
	)

	// PayloadEntropyBits tracks the distribution of measured entropy
	PayloadEntropyBits = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cipherscope_payload_entropy_bits",
			Help:    "Shannon entropy of classified payloads in bits per byte",
			Buckets: prometheus.LinearBuckets(0.5, 0.5, 16), // 0.5 .. 8
		},
	)

	// ExpectedCacheSize tracks how many sample lengths have a cached baseline
	ExpectedCacheSize = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "cipherscope_expected_cache_size",
			Help: "Number of sample lengths with a cached expected entropy",
		},
	)
)

// Verdict label values
const (
	VerdictEncrypted = "encrypted"
	VerdictPlain     = "plain"
	VerdictSkipped   = "skipped"
)
