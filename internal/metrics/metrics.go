// Package metrics holds the Prometheus collectors the API exports at
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "backoffice",
		Name:      "orders_created_total",
		Help:      "Orders created.",
	})

	PurchaseOrderReceipts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backoffice",
		Name:      "purchase_order_receipts_total",
		Help:      "Purchase order receipts booked, by resulting status.",
	}, []string{"status"})

	EmailsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backoffice",
		Name:      "emails_total",
		Help:      "Confirmation emails attempted, by result.",
	}, []string{"result"})

	SmsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backoffice",
		Name:      "sms_messages_total",
		Help:      "SMS messages attempted, by result.",
	}, []string{"result"})

	DashboardPollDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "backoffice",
		Name:      "dashboard_poll_duration_seconds",
		Help:      "Time taken to recompute dashboard metrics.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Result labels.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// NewRegistry returns a registry with the API collectors plus the Go and
// process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		OrdersCreated,
		PurchaseOrderReceipts,
		EmailsSent,
		SmsSent,
		DashboardPollDuration,
	)
	return reg
}
