package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector exports the insight engine's operational metrics.
type Collector struct {
	AnalysesTotal      *prometheus.CounterVec
	AnalysisDuration   *prometheus.HistogramVec
	DiagnosesTotal     *prometheus.CounterVec
	FusedEventsTotal   prometheus.Counter
	TrajectoriesTotal  *prometheus.CounterVec
	GateDecisionsTotal *prometheus.CounterVec
	IngestedTotal      *prometheus.CounterVec
	SnapshotCacheOps   *prometheus.CounterVec
}

// NewCollector registers the collectors with the given registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_analyses_total",
				Help: "Total analysis pipeline runs",
			},
			[]string{"status"},
		),
		AnalysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "insight_analysis_duration_seconds",
				Help:    "Analysis pipeline duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		DiagnosesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_diagnoses_total",
				Help: "Diagnoses produced, by winning scenario",
			},
			[]string{"scenario"},
		),
		FusedEventsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "insight_fused_events_total",
				Help: "Unified events emitted by the fusion engine",
			},
		),
		TrajectoriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_trajectories_total",
				Help: "Trajectories detected, by stage",
			},
			[]string{"stage"},
		),
		GateDecisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_gate_decisions_total",
				Help: "Automation gate command decisions",
			},
			[]string{"command", "allowed"},
		),
		IngestedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_ingested_total",
				Help: "Ingested records, by kind and source",
			},
			[]string{"kind", "source"},
		),
		SnapshotCacheOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_snapshot_cache_ops_total",
				Help: "Snapshot cache operations, by op and outcome",
			},
			[]string{"op", "outcome"},
		),
	}
}
