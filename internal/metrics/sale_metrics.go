package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SaleMetrics содержит метрики жизненного цикла продажи.
type SaleMetrics struct {
	// Счётчики переходов оформления
	checkoutsRequested prometheus.Counter
	checkoutsCanceled  prometheus.Counter
	salesSubmitted     prometheus.Counter
	salesCompleted     prometheus.Counter
	salesFailed        prometheus.Counter

	// Поиск по каталогу с разбивкой по результату (found/not_found/error)
	lookups *prometheus.CounterVec

	// Сохранения курса обмена
	rateUpdates prometheus.Counter

	// Гистограмма времени от подтверждения до ответа реестра
	submitDuration prometheus.Histogram
}

// NewSaleMetrics создаёт и регистрирует метрики в default registerer.
func NewSaleMetrics() *SaleMetrics {
	return newSaleMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newSaleMetricsWithRegisterer(registerer prometheus.Registerer) *SaleMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &SaleMetrics{
		checkoutsRequested: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_checkouts_requested_total",
			Help: "Total number of checkout reviews assembled",
		}),
		checkoutsCanceled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_checkouts_canceled_total",
			Help: "Total number of checkout reviews canceled by the clerk",
		}),
		salesSubmitted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_sales_submitted_total",
			Help: "Total number of sale submissions sent to the ledger",
		}),
		salesCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_sales_completed_total",
			Help: "Total number of sales accepted by the ledger",
		}),
		salesFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_sales_failed_total",
			Help: "Total number of sale submissions rejected or failed in transit",
		}),
		lookups: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_catalog_lookups_total",
			Help: "Total number of catalog lookups grouped by result",
		}, []string{"result"}),
		rateUpdates: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_exchange_rate_updates_total",
			Help: "Total number of persisted exchange rate updates",
		}),
		submitDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "pos_sale_submit_duration_seconds",
			Help:    "Duration of sale submission round trips in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCheckoutRequested увеличивает счётчик собранных ревью.
func (m *SaleMetrics) RecordCheckoutRequested() {
	m.checkoutsRequested.Inc()
}

// RecordCheckoutCanceled увеличивает счётчик отменённых ревью.
func (m *SaleMetrics) RecordCheckoutCanceled() {
	m.checkoutsCanceled.Inc()
}

// RecordSaleSubmitted увеличивает счётчик отправленных снимков.
func (m *SaleMetrics) RecordSaleSubmitted() {
	m.salesSubmitted.Inc()
}

// RecordSaleCompleted увеличивает счётчик принятых продаж.
func (m *SaleMetrics) RecordSaleCompleted() {
	m.salesCompleted.Inc()
}

// RecordSaleFailed увеличивает счётчик неудачных подтверждений.
func (m *SaleMetrics) RecordSaleFailed() {
	m.salesFailed.Inc()
}

// RecordLookup фиксирует результат поиска по каталогу.
func (m *SaleMetrics) RecordLookup(result string) {
	m.lookups.WithLabelValues(result).Inc()
}

// RecordRateUpdate увеличивает счётчик сохранений курса.
func (m *SaleMetrics) RecordRateUpdate() {
	m.rateUpdates.Inc()
}

// RecordSubmitDuration записывает длительность похода в реестр.
func (m *SaleMetrics) RecordSubmitDuration(duration time.Duration) {
	m.submitDuration.Observe(duration.Seconds())
}
