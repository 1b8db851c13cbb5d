package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FaultsTotal tracks captured faults per domain and classified type
	FaultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faultguard_faults_total",
			Help: "Total number of faults captured",
		},
		[]string{"domain", "type", "severity"},
	)

	// RetriesTotal tracks retry attempts per domain
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faultguard_retries_total",
			Help: "Total number of retry attempts",
		},
		[]string{"domain"},
	)

	// TransitionsTotal tracks controller state transitions
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faultguard_transitions_total",
			Help: "Total number of boundary state transitions",
		},
		[]string{"controller", "to"},
	)

	// CascadeCount tracks the current cascade episode fault count
	CascadeCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "faultguard_cascade_count",
			Help: "Fault count in the current cascade episode",
		},
	)

	// EscalationsTotal counts cascade ceiling breaches
	EscalationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "faultguard_escalations_total",
			Help: "Total number of critical cascade escalations",
		},
	)

	// SnapshotsCollected counts diagnostic snapshots per fault type
	SnapshotsCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faultguard_snapshots_collected_total",
			Help: "Total number of diagnostic snapshots collected",
		},
		[]string{"type"},
	)

	// ClassificationConfidence observes classifier confidence scores
	ClassificationConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "faultguard_classification_confidence",
			Help:    "Distribution of classification confidence scores",
			Buckets: prometheus.LinearBuckets(0.5, 0.05, 11),
		},
	)
)
