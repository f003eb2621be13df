package logging

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "pkglog"

// metrics counts routing activity. A nil *metrics is valid and records nothing.
type metrics struct {
	records    *prometheus.CounterVec
	rotations  *prometheus.CounterVec
	contention prometheus.Counter
	sinkErrors *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "records_total",
			Help:      "Records accepted by a stream threshold.",
		}, []string{"stream"}),
		rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rotations_total",
			Help:      "Log file rotations performed by this process.",
		}, []string{"file"}),
		contention: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rotation_contention_total",
			Help:      "Rotation attempts that found the shared lock held by a sibling.",
		}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sink_errors_total",
			Help:      "Records dropped because a sink failed.",
		}, []string{"sink"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.records, m.rotations, m.contention, m.sinkErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) record(stream string) {
	if m != nil {
		m.records.WithLabelValues(stream).Inc()
	}
}

func (m *metrics) rotated(file string) {
	if m != nil {
		m.rotations.WithLabelValues(file).Inc()
	}
}

func (m *metrics) contended() {
	if m != nil {
		m.contention.Inc()
	}
}

func (m *metrics) sinkError(sink string) {
	if m != nil {
		m.sinkErrors.WithLabelValues(sink).Inc()
	}
}
