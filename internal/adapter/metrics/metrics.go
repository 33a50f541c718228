// Package metrics exposes Prometheus collectors for HTTP traffic and ledger
// activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"custodial-wallet/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "custodial_wallet"

// Metrics implements ports.LedgerObserver and records HTTP request stats.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	rateLimited  *prometheus.CounterVec
	ledgerOps    *prometheus.CounterVec
	ledgerVolume *prometheus.CounterVec
	ledgerFees   *prometheus.CounterVec
	priceQuotes  *prometheus.CounterVec
}

// New registers every collector on a fresh registry, alongside the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		}, []string{"method", "route"}),
		rateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_exceeded_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"group"}),
		ledgerOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_operations_total",
			Help:      "Committed ledger mutations",
		}, []string{"currency", "direction"}),
		ledgerVolume: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_volume_total",
			Help:      "Committed ledger amount, excluding fees",
		}, []string{"currency", "direction"}),
		ledgerFees: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_fees_total",
			Help:      "Fees charged on sends",
		}, []string{"currency"}),
		priceQuotes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_quotes_total",
			Help:      "Price tables served, by source",
		}, []string{"source"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRateLimited(group string) {
	m.rateLimited.WithLabelValues(group).Inc()
}

func (m *Metrics) ObserveCredit(currency domain.Currency, amount decimal.Decimal) {
	m.ledgerOps.WithLabelValues(string(currency), string(domain.DirectionReceive)).Inc()
	m.ledgerVolume.WithLabelValues(string(currency), string(domain.DirectionReceive)).Add(amount.InexactFloat64())
}

func (m *Metrics) ObserveDebit(currency domain.Currency, amount, fee decimal.Decimal) {
	m.ledgerOps.WithLabelValues(string(currency), string(domain.DirectionSend)).Inc()
	m.ledgerVolume.WithLabelValues(string(currency), string(domain.DirectionSend)).Add(amount.InexactFloat64())
	m.ledgerFees.WithLabelValues(string(currency)).Add(fee.InexactFloat64())
}

func (m *Metrics) ObservePriceQuote(source domain.PriceSource) {
	m.priceQuotes.WithLabelValues(string(source)).Inc()
}
