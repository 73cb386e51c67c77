package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrdersConfirmed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "orders_confirmed_total",
		Help: "Orders moved from PENDING to CONFIRMED.",
	})

	// OrderConfirmFailures is labelled state, insufficient_stock or error.
	OrderConfirmFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "order_confirm_failures_total",
		Help: "Order confirmations rejected, by reason.",
	}, []string{"reason"})

	StockReserved = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "stock_reserved_units_total",
		Help: "Units moved into reserved by order confirmations.",
	})

	PaymentsConfirmed = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "payments_confirmed_total",
		Help: "Payments moved from PENDING to CONFIRMED, by method.",
	}, []string{"method"})

	LowStockAlerts = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "low_stock_alerts_total",
		Help: "Low stock notifications delivered.",
	})

	// LowStockProducts is set by every full scan.
	LowStockProducts = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "low_stock_products",
		Help: "Active products under the threshold at the last scan.",
	})

	reportDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "report_duration_seconds",
		Help:    "Report run time by report and source (orm or sql).",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"report", "source"})
)

// ObserveReport records how long a report took.
func ObserveReport(report, source string, start time.Time) {
	reportDuration.WithLabelValues(report, source).Observe(time.Since(start).Seconds())
}
