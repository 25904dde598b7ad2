package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

var (
	oracleOnce sync.Once
	oracleReg  *OracleMetrics

	marketOnce sync.Once
	marketReg  *MarketMetrics

	overseerOnce sync.Once
	overseerReg  *OverseerMetrics
)

// OracleMetrics counts price-source activity.
type OracleMetrics struct {
	feeds         prometheus.Counter
	feedBatchSize prometheus.Histogram
}

// Oracle returns the lazily-initialised oracle metrics registry.
func Oracle() *OracleMetrics {
	oracleOnce.Do(func() {
		oracleReg = &OracleMetrics{
			feeds: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "capa",
				Subsystem: "oracle",
				Name:      "fed_prices_total",
				Help:      "Total prices accepted through feed batches.",
			}),
			feedBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "capa",
				Subsystem: "oracle",
				Name:      "feed_batch_size",
				Help:      "Number of prices per accepted feed batch.",
				Buckets:   []float64{1, 2, 5, 10, 20, 50},
			}),
		}
		prometheus.MustRegister(oracleReg.feeds, oracleReg.feedBatchSize)
	})
	return oracleReg
}

func (m *OracleMetrics) RecordFeedBatch(size int) {
	if m == nil {
		return
	}
	m.feeds.Add(float64(size))
	m.feedBatchSize.Observe(float64(size))
}

// MarketMetrics tracks stable issuance volumes.
type MarketMetrics struct {
	operations       *prometheus.CounterVec
	totalLiabilities prometheus.Gauge
}

// Market returns the lazily-initialised market metrics registry.
func Market() *MarketMetrics {
	marketOnce.Do(func() {
		marketReg = &MarketMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "capa",
				Subsystem: "market",
				Name:      "operations_total",
				Help:      "Total market operations segmented by kind.",
			}, []string{"kind"}),
			totalLiabilities: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "capa",
				Subsystem: "market",
				Name:      "total_liabilities",
				Help:      "Outstanding principal across all borrowers.",
			}),
		}
		prometheus.MustRegister(marketReg.operations, marketReg.totalLiabilities)
	})
	return marketReg
}

func (m *MarketMetrics) RecordOperation(kind string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(kind).Inc()
}

func (m *MarketMetrics) SetTotalLiabilities(total decimal.Decimal) {
	if m == nil {
		return
	}
	m.totalLiabilities.Set(total.InexactFloat64())
}

// OverseerMetrics tracks collateral movements and liquidations.
type OverseerMetrics struct {
	collateralOps *prometheus.CounterVec
	liquidations  prometheus.Counter
}

// Overseer returns the lazily-initialised overseer metrics registry.
func Overseer() *OverseerMetrics {
	overseerOnce.Do(func() {
		overseerReg = &OverseerMetrics{
			collateralOps: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "capa",
				Subsystem: "overseer",
				Name:      "collateral_operations_total",
				Help:      "Total collateral lock and unlock operations.",
			}, []string{"kind"}),
			liquidations: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "capa",
				Subsystem: "overseer",
				Name:      "liquidations_total",
				Help:      "Total executed collateral liquidations.",
			}),
		}
		prometheus.MustRegister(overseerReg.collateralOps, overseerReg.liquidations)
	})
	return overseerReg
}

func (m *OverseerMetrics) RecordCollateralOp(kind string) {
	if m == nil {
		return
	}
	m.collateralOps.WithLabelValues(kind).Inc()
}

func (m *OverseerMetrics) RecordLiquidation() {
	if m == nil {
		return
	}
	m.liquidations.Inc()
}
