// Package metrics exposes the service's Prometheus collectors. All
// collectors are registered on the default registry via promauto and
// served from /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReservationsCreated counts successful room reservations.
	ReservationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reservations_created_total",
			Help: "Total number of hotel reservations created",
		},
	)

	// ReservationsCancelled counts reservation cancellations by origin:
	// "guest", "owner" or "reconciler".
	ReservationsCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservations_cancelled_total",
			Help: "Total number of hotel reservations cancelled",
		},
		[]string{"origin"},
	)

	// BookingsCreated counts composite bookings by their legs:
	// "hotel", "flight" or "both".
	BookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of bookings created",
		},
		[]string{"legs"},
	)

	// OversoldDaysReconciled counts ledger days the capacity
	// reconciler had to clamp back to zero.
	OversoldDaysReconciled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oversold_days_reconciled_total",
			Help: "Total number of oversold availability days resolved by forced cancellation",
		},
	)

	// FlightAPIFailures counts failed calls against the external
	// flight system, labelled by operation.
	FlightAPIFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flight_api_failures_total",
			Help: "Total number of failed external flight system calls",
		},
		[]string{"operation"},
	)

	// FlightCircuitState mirrors the AFS circuit breaker state
	// (0=closed, 1=open, 2=half-open).
	FlightCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flight_circuit_breaker_state",
			Help: "External flight system circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
	)
)
