package retrieval

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cbit-ai/answercore/types"
)

// Metrics 检索引擎的 Prometheus 指标集。
// 指针为 nil 时所有记录方法都是空操作。
type Metrics struct {
	retrievals        *prometheus.CounterVec
	retrievalDuration *prometheus.HistogramVec
	sourceDuration    *prometheus.HistogramVec
	sourceResults     *prometheus.HistogramVec
	sourceErrors      *prometheus.CounterVec
}

// NewMetrics 创建并注册指标集。reg 为 nil 时使用默认注册表。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		retrievals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "answercore",
			Name:      "retrievals_total",
			Help:      "Total retrievals by fusion strategy and confidence tier.",
		}, []string{"strategy", "tier"}),
		retrievalDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "answercore",
			Name:      "retrieval_duration_seconds",
			Help:      "End-to-end retrieval latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
		sourceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "answercore",
			Name:      "source_duration_seconds",
			Help:      "Per-source retrieval latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		sourceResults: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "answercore",
			Name:      "source_results",
			Help:      "Candidates returned per source per retrieval.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		}, []string{"source"}),
		sourceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "answercore",
			Name:      "source_errors_total",
			Help:      "Per-source failures by error code.",
		}, []string{"source", "code"}),
	}
}

// ObserveRetrieval 记录一次完整检索。
func (m *Metrics) ObserveRetrieval(strategy string, tier types.Tier, d time.Duration) {
	if m == nil {
		return
	}
	m.retrievals.WithLabelValues(strategy, string(tier)).Inc()
	m.retrievalDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

// ObserveSource 记录单个来源的一次检索。
func (m *Metrics) ObserveSource(src types.Source, d time.Duration, results int, errCode types.ErrorCode) {
	if m == nil {
		return
	}
	m.sourceDuration.WithLabelValues(string(src)).Observe(d.Seconds())
	m.sourceResults.WithLabelValues(string(src)).Observe(float64(results))
	if errCode != "" {
		m.sourceErrors.WithLabelValues(string(src), string(errCode)).Inc()
	}
}
