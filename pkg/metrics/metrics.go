// Package metrics 定义推荐引擎的 Prometheus 指标。
//
//   - canteen_recommend_duration_seconds（histogram，label path）
//   - canteen_recommend_total（counter，label path：personalized / cold_start）
//   - canteen_candidates（histogram，进入 MMR 前的候选数）
//   - canteen_feature_index_rebuilds_total（counter）
//   - canteen_circuit_breaker_state（gauge，label name；0 closed，1 half-open，2 open）
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 推荐路径
const (
	PathPersonalized = "personalized"
	PathColdStart    = "cold_start"
	PathEmpty        = "empty_catalog"
)

// Metrics 汇总全部指标；nil *Metrics 的方法均为空操作。
type Metrics struct {
	RecommendDuration *prometheus.HistogramVec
	RecommendTotal    *prometheus.CounterVec
	Candidates        prometheus.Histogram
	IndexRebuilds     prometheus.Counter
	BreakerState      *prometheus.GaugeVec
}

// New 创建并注册指标；reg 为 nil 时只创建不注册。
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecommendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canteen_recommend_duration_seconds",
			Help:    "Recommendation latency by path.",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"path"}),
		RecommendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canteen_recommend_total",
			Help: "Recommendations served by path.",
		}, []string{"path"}),
		Candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "canteen_candidates",
			Help:    "Candidates entering diversification.",
			Buckets: []float64{0, 1, 5, 10, 20, 30, 40, 50},
		}),
		IndexRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canteen_feature_index_rebuilds_total",
			Help: "Feature index rebuilds caused by catalog changes.",
		}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "canteen_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"name"}),
	}
	if reg != nil {
		reg.MustRegister(m.RecommendDuration, m.RecommendTotal, m.Candidates, m.IndexRebuilds, m.BreakerState)
	}
	return m
}

// ObserveRecommend 记录一次推荐。
func (m *Metrics) ObserveRecommend(path string, took time.Duration) {
	if m == nil {
		return
	}
	m.RecommendTotal.WithLabelValues(path).Inc()
	m.RecommendDuration.WithLabelValues(path).Observe(took.Seconds())
}

// ObserveCandidates 记录候选规模。
func (m *Metrics) ObserveCandidates(n int) {
	if m == nil {
		return
	}
	m.Candidates.Observe(float64(n))
}

// IncIndexRebuild 记录一次特征索引重建。
func (m *Metrics) IncIndexRebuild() {
	if m == nil {
		return
	}
	m.IndexRebuilds.Inc()
}

// SetBreakerState 记录熔断器状态。
func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(state)
}
