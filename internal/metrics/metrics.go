// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outline_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outline_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	BeaconsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outline_beacons_ingested_total",
			Help: "Tracking beacons persisted, by event type",
		},
		[]string{"event_type"},
	)

	BeaconPayloadsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outline_beacon_payloads_dropped_total",
			Help: "Beacon data payloads discarded for being invalid or too large",
		},
	)

	GeoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outline_geo_lookups_total",
			Help: "Geo lookups by result (hit, miss, unavailable)",
		},
		[]string{"result"},
	)

	GeoRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outline_geo_refreshes_total",
			Help: "Geo database refresh attempts by result",
		},
		[]string{"result"},
	)

	OTPMailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outline_otp_mails_total",
			Help: "OTP mails handed to the mailer, by purpose and result",
		},
		[]string{"purpose", "result"},
	)
)

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Result labels an outcome as ok or error
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
