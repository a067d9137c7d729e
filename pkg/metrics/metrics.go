package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Notification hub metrics
	HubConnections     prometheus.Gauge
	HubEventsBroadcast *prometheus.CounterVec
	HubDroppedClients  prometheus.Counter
	HubHeartbeats      prometheus.Counter

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		HubConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hub_open_connections",
			Help:      "Current number of open event stream subscriptions",
		}),
		HubEventsBroadcast: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hub_events_broadcast_total",
			Help:      "Total number of events fanned out to subscribers",
		}, []string{"event_type"}),
		HubDroppedClients: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hub_dropped_clients_total",
			Help:      "Total number of subscribers removed after a failed write",
		}),
		HubHeartbeats: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hub_heartbeats_total",
			Help:      "Total number of heartbeat messages written to subscribers",
		}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}
