package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts exchanges and observes their latency per transport kind.
type Metrics struct {
	exchanges *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tonledger",
			Subsystem: "transport",
			Name:      "exchanges_total",
			Help:      "APDU exchanges by transport kind and result.",
		}, []string{"kind", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tonledger",
			Subsystem: "transport",
			Name:      "exchange_duration_seconds",
			Help:      "APDU exchange round trip time.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"kind"}),
	}

	if reg != nil {
		reg.MustRegister(m.exchanges, m.latency)
	}

	return m
}

type instrumented struct {
	Transport
	kind    Kind
	metrics *Metrics
}

func (t *instrumented) Exchange(frame []byte) ([]byte, error) {
	start := time.Now()
	resp, err := t.Transport.Exchange(frame)
	t.metrics.latency.WithLabelValues(string(t.kind)).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	t.metrics.exchanges.WithLabelValues(string(t.kind), result).Inc()

	return resp, err
}

type instrumentedDebug struct {
	*instrumented
	Debugger
}

// Instrument returns a link whose exchanges are recorded in m. The debug
// capability of l is kept.
func Instrument(l *Link, m *Metrics) *Link {
	it := &instrumented{Transport: l.t, kind: l.kind, metrics: m}

	if l.debugger == nil {
		return &Link{kind: l.kind, t: it}
	}

	return &Link{kind: l.kind, t: &instrumentedDebug{instrumented: it, Debugger: l.debugger}, debugger: l.debugger}
}
