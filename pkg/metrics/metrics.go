// Package metrics exposes Prometheus counters for the analysis engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors. A nil *Metrics is valid
// and turns every recording method into a no-op, which keeps tests quiet.
type Metrics struct {
	analysisRuns      prometheus.Counter
	findings          *prometheus.CounterVec
	conflictsDetected *prometheus.CounterVec
	alertsRaised      *prometheus.CounterVec
	contractsIngested prometheus.Counter
}

// New registers the engine collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		analysisRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "basewatch_analysis_runs_total",
			Help: "Number of pattern analysis runs.",
		}),
		findings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "basewatch_findings_total",
			Help: "Findings emitted by the pattern detector.",
		}, []string{"kind", "severity"}),
		conflictsDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "basewatch_conflicts_detected_total",
			Help: "New conflicts of interest persisted.",
		}, []string{"severity"}),
		alertsRaised: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "basewatch_alerts_raised_total",
			Help: "Watch list alerts raised.",
		}, []string{"kind"}),
		contractsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "basewatch_contracts_ingested_total",
			Help: "Contracts accepted by the ingest endpoint.",
		}),
	}
}

func (m *Metrics) RecordAnalysisRun() {
	if m == nil {
		return
	}
	m.analysisRuns.Inc()
}

func (m *Metrics) RecordFinding(kind, severity string) {
	if m == nil {
		return
	}
	m.findings.WithLabelValues(kind, severity).Inc()
}

func (m *Metrics) RecordConflict(severity string) {
	if m == nil {
		return
	}
	m.conflictsDetected.WithLabelValues(severity).Inc()
}

func (m *Metrics) RecordAlert(kind string) {
	if m == nil {
		return
	}
	m.alertsRaised.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordContractsIngested(n int) {
	if m == nil {
		return
	}
	m.contractsIngested.Add(float64(n))
}
