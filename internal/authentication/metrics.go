package authentication

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mehmetcc/credential-session-service/internal/apperr"
)

const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// Metrics counts session transitions. A nil *Metrics records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_operations_total",
			Help: "Session authority operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(m.operations)
	return m
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	outcome := outcomeSuccess
	switch {
	case err == nil:
	case apperr.IsDomain(err):
		outcome = outcomeRejected
	default:
		outcome = outcomeError
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}
