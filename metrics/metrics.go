package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)

	// Enrollments counts completed enrollments by path (request or checkout).
	Enrollments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "educonnect_enrollments_total",
			Help: "Students enrolled into courses",
		},
		[]string{"path"},
	)

	PaymentDeclines = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "educonnect_payment_declines_total",
			Help: "Card authorizations declined by reason",
		},
		[]string{"reason"},
	)

	PayoutTransfers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "educonnect_payout_transfers_total",
			Help: "Instructor payout transfer attempts by outcome",
		},
		[]string{"outcome"},
	)

	SessionWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "educonnect_session_writes_total",
			Help: "Materialized session writes by outcome",
		},
		[]string{"outcome"},
	)
)

func Init() {
	prometheus.MustRegister(
		RequestCounter,
		RequestDuration,
		Enrollments,
		PaymentDeclines,
		PayoutTransfers,
		SessionWrites,
	)
}

func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		RequestCounter.WithLabelValues(c.Method(), route, strconv.Itoa(c.Response().StatusCode())).Inc()
		RequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
