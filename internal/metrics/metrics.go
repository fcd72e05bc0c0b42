// Package metrics defines and registers the Prometheus collectors of the
// booking service. Collectors are registered with the default registry on
// package initialisation and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "meeting"

// HTTPRequestsTotal counts handled requests by method, route template and
// status code.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// BookingAdmissionsTotal counts admission decisions.
// Label outcome: admitted, updated, or the rejection reason.
var BookingAdmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_admissions_total",
		Help:      "Booking admission attempts by outcome.",
	},
	[]string{"outcome"},
)

// BookingAttendees observes primary + members + guests of admitted bookings.
var BookingAttendees = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "booking_attendees",
		Help:      "Attendee count of admitted bookings.",
		Buckets:   []float64{1, 2, 4, 6, 8, 12, 16, 24, 32, 50},
	},
)

// EventsPublishedTotal counts booking events sent to the broker.
// Label result: ok or error.
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Booking events published, by type and result.",
	},
	[]string{"type", "result"},
)

var EventsConsumedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_consumed_total",
		Help:      "Booking events consumed, by result (ack/nack).",
	},
	[]string{"result"},
)

var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the token bucket, by route.",
	},
	[]string{"route"},
)

// CacheLookupsTotal counts response cache lookups. Label result: hit or miss.
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Response cache lookups by result.",
	},
	[]string{"result"},
)
