package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry      *prometheus.Registry
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	uploads       *prometheus.CounterVec
	attendance    prometheus.Counter
	materialViews prometheus.Counter
}

// newMetrics registers the workflow counters on a registry of their own, so that every Server gets fresh ones.
func newMetrics(namespace string) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Accounts registered, by role.",
		}, []string{"role"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts, by result.",
		}, []string{"result"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Files stored, by bucket.",
		}, []string{"bucket"}),
		attendance: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attendance_records_total",
			Help:      "Attendance records written.",
		}),
		materialViews: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "material_views_total",
			Help:      "Study materials opened by students.",
		}),
	}
	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		m.registrations,
		m.logins,
		m.uploads,
		m.attendance,
		m.materialViews,
	)
	return m
}

func (m *metrics) handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
