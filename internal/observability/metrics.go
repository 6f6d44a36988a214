package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "swyft",
		Name:      "rides_created_total",
		Help:      "Total number of rides booked",
	})
	RideTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "swyft",
			Name:      "ride_transitions_total",
			Help:      "Ride status transitions applied",
		},
		[]string{"status"},
	)
	AcceptConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "swyft",
		Name:      "accept_conflicts_total",
		Help:      "Accept attempts that lost the assignment race",
	})
	LocationUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "swyft",
		Name:      "location_updates_total",
		Help:      "Driver location updates stored",
	})
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "swyft",
		Name:      "connected_clients",
		Help:      "Number of live WebSocket connections",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "swyft", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "swyft",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
