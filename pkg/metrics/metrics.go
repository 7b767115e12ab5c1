package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores Prometheus del motor. Todos los métodos son
// nil-safe: un *Metrics nil no registra nada, así los tests no necesitan uno.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	lockWaits  *prometheus.CounterVec
}

// New registra los contadores y retorna el agregado.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trace",
			Name:      "operations_total",
			Help:      "Operaciones del coordinador por acción y resultado.",
		}, []string{"action", "outcome"}),
		lockWaits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trace",
			Name:      "lock_timeouts_total",
			Help:      "Timeouts de adquisición de lock por dominio.",
		}, []string{"domain"}),
	}
	reg.MustRegister(m.operations, m.lockWaits)
	return m
}

// Operation cuenta una operación del coordinador (outcome: "ok" o "error").
func (m *Metrics) Operation(action, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(action, outcome).Inc()
}

// LockTimeout cuenta un timeout de lock en el dominio dado.
func (m *Metrics) LockTimeout(domain string) {
	if m == nil {
		return
	}
	m.lockWaits.WithLabelValues(domain).Inc()
}

// Handler expone el endpoint /metrics (net/http; en Fiber se monta con el adaptor).
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
