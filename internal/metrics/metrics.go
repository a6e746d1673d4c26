package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jverho/kontor/internal/domain"
)

// Metrics aggregates the counters for the resolution path and the module
// registry. All methods are nil-safe so components can run without metrics
// in tests.
type Metrics struct {
	Resolutions          *prometheus.CounterVec
	ClientBuilds         prometheus.Counter
	ClientBuildFailures  prometheus.Counter
	RegistrySyncDegraded *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kontor_tenant_resolutions_total",
			Help: "Tenant resolution attempts by winning signal source and outcome",
		}, []string{"source", "outcome"}),
		ClientBuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "kontor_tenant_client_builds_total",
			Help: "Per-tenant database clients constructed",
		}),
		ClientBuildFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "kontor_tenant_client_build_failures_total",
			Help: "Failed per-tenant database client constructions",
		}),
		RegistrySyncDegraded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kontor_module_sync_degraded_total",
			Help: "Module lifecycle syncs that left mirror/menu/directory state degraded",
		}, []string{"module"}),
	}
}

func (m *Metrics) ObserveResolution(source domain.SignalSource, outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(string(source), outcome).Inc()
}

func (m *Metrics) ObserveClientBuild(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ClientBuildFailures.Inc()
		return
	}
	m.ClientBuilds.Inc()
}

func (m *Metrics) ObserveSyncDegraded(module string) {
	if m == nil {
		return
	}
	m.RegistrySyncDegraded.WithLabelValues(module).Inc()
}
