package observability

import "github.com/prometheus/client_golang/prometheus"

// IngestMetrics counts ingest outcomes. It implements service.IngestMetrics.
type IngestMetrics struct {
	accepted  prometheus.Counter
	rejected  prometheus.Counter
	duplicate prometheus.Counter
	alerts    prometheus.Counter
}

func NewIngestMetrics() *IngestMetrics {
	m := &IngestMetrics{
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "herdtrack_reports_accepted_total",
			Help: "Location reports accepted and applied to track state.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "herdtrack_reports_rejected_total",
			Help: "Location reports rejected by validation or collaborators.",
		}),
		duplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "herdtrack_reports_duplicate_total",
			Help: "Location reports acknowledged as retransmissions.",
		}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "herdtrack_alerts_emitted_total",
			Help: "Alerts produced by movement analysis and geofence evaluation.",
		}),
	}
	prometheus.MustRegister(m.accepted, m.rejected, m.duplicate, m.alerts)
	return m
}

func (m *IngestMetrics) ReportAccepted()  { m.accepted.Inc() }
func (m *IngestMetrics) ReportRejected()  { m.rejected.Inc() }
func (m *IngestMetrics) ReportDuplicate() { m.duplicate.Inc() }

func (m *IngestMetrics) AlertsEmitted(n int) {
	if n > 0 {
		m.alerts.Add(float64(n))
	}
}
