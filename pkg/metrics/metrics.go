// Package metrics собирает Prometheus-метрики сервиса.
// Все методы безопасны для nil-получателя: при выключенных метриках передается nil.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reservation"

// Metrics набор коллекторов сервиса
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbOpen          prometheus.Gauge
	dbInUse         prometheus.Gauge
	dbIdle          prometheus.Gauge
	dbWaitCount     prometheus.Gauge

	bookingsCreated  *prometheus.CounterVec
	bookingsRejected *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	wsConnections    *prometheus.GaugeVec
	notifications    *prometheus.CounterVec
}

// New создает и регистрирует коллекторы в собственном реестре
func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"method", "route"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			ConstLabels: labels,
		}, []string{"operation"}),
		dbOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "db_open_connections", Help: "Open DB connections", ConstLabels: labels,
		}),
		dbInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "db_in_use_connections", Help: "DB connections in use", ConstLabels: labels,
		}),
		dbIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "db_idle_connections", Help: "Idle DB connections", ConstLabels: labels,
		}),
		dbWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "db_wait_count", Help: "Total number of connections waited for", ConstLabels: labels,
		}),
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "bookings_created_total",
			Help:        "Bookings successfully created",
			ConstLabels: labels,
		}, []string{"status"}),
		bookingsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "bookings_rejected_total",
			Help:        "Booking requests rejected by validation",
			ConstLabels: labels,
		}, []string{"reason"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "booking_transitions_total",
			Help:        "Applied booking lifecycle transitions",
			ConstLabels: labels,
		}, []string{"action"}),
		wsConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "ws_connections",
			Help:        "Live WebSocket connections",
			ConstLabels: labels,
		}, []string{"kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "ws_notifications_total",
			Help:        "WebSocket notifications by delivery result",
			ConstLabels: labels,
		}, []string{"event", "result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.dbQueryDuration,
		m.dbOpen,
		m.dbInUse,
		m.dbIdle,
		m.dbWaitCount,
		m.bookingsCreated,
		m.bookingsRejected,
		m.transitions,
		m.wsConnections,
		m.notifications,
	)

	return m
}

// Handler HTTP-обработчик для эндпоинта /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry используется в тестах для проверки значений
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ObserveDBQuery(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) SetDBPoolStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.dbOpen.Set(float64(stats.OpenConnections))
	m.dbInUse.Set(float64(stats.InUse))
	m.dbIdle.Set(float64(stats.Idle))
	m.dbWaitCount.Set(float64(stats.WaitCount))
}

func (m *Metrics) IncBookingCreated(status string) {
	if m == nil {
		return
	}
	m.bookingsCreated.WithLabelValues(status).Inc()
}

func (m *Metrics) IncBookingRejected(reason string) {
	if m == nil {
		return
	}
	m.bookingsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncTransition(action string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action).Inc()
}

func (m *Metrics) AddWSConnections(kind string, delta int) {
	if m == nil {
		return
	}
	m.wsConnections.WithLabelValues(kind).Add(float64(delta))
}

func (m *Metrics) IncNotification(event, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(event, result).Inc()
}
