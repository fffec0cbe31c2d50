package keeper

import (
	"math/big"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricValue converts an arbitrary-precision amount for metric recording.
// Amounts above 2^63 lose precision but never panic.
func metricValue(amount sdkmath.Int) float64 {
	f, _ := new(big.Float).SetInt(amount.BigInt()).Float64()
	return f
}

// Metrics holds all Prometheus metrics for the amm engine
type Metrics struct {
	// Swap metrics
	SwapsTotal  *prometheus.CounterVec
	SwapVolume  *prometheus.CounterVec
	SwapLatency prometheus.Histogram

	// Liquidity metrics
	LiquidityAdded   *prometheus.CounterVec
	LiquidityRemoved *prometheus.CounterVec
	PoolReserves     *prometheus.GaugeVec
	ShareSupply      *prometheus.GaugeVec

	// Pool metrics
	PoolsTotal    prometheus.Gauge
	PoolCreations prometheus.Counter

	// TWAP metrics
	TWAPUpdates prometheus.Counter

	// Fee metrics
	ProtocolFeeShares prometheus.Counter
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// NewMetrics creates and registers engine metrics (singleton pattern)
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			// Swap metrics
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "swapforge",
					Subsystem: "amm",
					Name:      "swaps_total",
					Help:      "Total number of swaps executed",
				},
				[]string{"pool_id", "status"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "swapforge",
					Subsystem: "amm",
					Name:      "swap_volume_total",
					Help:      "Total swap volume in base units",
				},
				[]string{"pool_id", "asset"},
			),
			SwapLatency: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "swapforge",
					Subsystem: "amm",
					Name:      "swap_latency_seconds",
					Help:      "Swap execution latency in seconds",
					Buckets:   prometheus.DefBuckets,
				},
			),

			// Liquidity metrics
			LiquidityAdded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "swapforge",
					Subsystem: "amm",
					Name:      "liquidity_added_total",
					Help:      "Total liquidity added to pools",
				},
				[]string{"pool_id", "asset"},
			),
			LiquidityRemoved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "swapforge",
					Subsystem: "amm",
					Name:      "liquidity_removed_total",
					Help:      "Total liquidity removed from pools",
				},
				[]string{"pool_id", "asset"},
			),
			PoolReserves: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "swapforge",
					Subsystem: "amm",
					Name:      "pool_reserves",
					Help:      "Current pool reserves",
				},
				[]string{"pool_id", "asset"},
			),
			ShareSupply: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "swapforge",
					Subsystem: "amm",
					Name:      "share_supply",
					Help:      "Pool share supply per pool",
				},
				[]string{"pool_id"},
			),

			// Pool metrics
			PoolsTotal: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "swapforge",
					Subsystem: "amm",
					Name:      "pools_total",
					Help:      "Total number of liquidity pools",
				},
			),
			PoolCreations: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "swapforge",
					Subsystem: "amm",
					Name:      "pool_creations_total",
					Help:      "Total number of pools created",
				},
			),

			// TWAP metrics
			TWAPUpdates: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "swapforge",
					Subsystem: "amm",
					Name:      "twap_updates_total",
					Help:      "Total cumulative price update operations",
				},
			),

			// Fee metrics
			ProtocolFeeShares: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "swapforge",
					Subsystem: "amm",
					Name:      "protocol_fee_share_mints_total",
					Help:      "Protocol fee share mint operations",
				},
			),
		}
	})
	return metrics
}
