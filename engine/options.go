package engine

import (
	"math/rand/v2"
	"time"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/feature"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/filter"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pipeline"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/metrics"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/recall"
)

// Option 配置 Engine。
type Option func(*Engine)

// WithClock 替换时间源（默认 time.Now），Recommend 用它决定“当前时间”。
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.clock = now }
}

// WithLocation 设置时段调权使用的时区（默认 Asia/Shanghai，加载失败回退 UTC）。
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithSeed 以固定种子初始化冷启动随机源。
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.coldStart = recall.NewColdStart(seed) }
}

// WithRand 注入冷启动随机源。
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.coldStart = recall.NewColdStartWithRand(rng) }
}

// WithLexicon 替换特征提取词表。
func WithLexicon(lex feature.Lexicon) Option {
	return func(e *Engine) { e.lexicon = lex }
}

// WithMetrics 上报 Prometheus 指标。
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithPipeline 替换个性化主链路（默认 builders 内置配置）。
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(e *Engine) { e.pipeline = p }
}

// WithFilters 追加过滤器（黑名单、规则），同时作用于个性化与冷启动路径。
func WithFilters(filters ...filter.Filter) Option {
	return func(e *Engine) { e.filters = append(e.filters, filters...) }
}

// WithDefaults 设置请求未指定时的 K 与 alpha。
func WithDefaults(k int, alpha float64) Option {
	return func(e *Engine) {
		if k > 0 {
			e.defaultK = k
		}
		if alpha >= 0 && alpha <= 1 {
			e.defaultAlpha = alpha
		}
	}
}

// WithDecay 设置画像与内容打分的衰减尺度（天），<= 0 保持默认。
func WithDecay(profileDays, contentDays float64) Option {
	return func(e *Engine) {
		if profileDays > 0 {
			e.builder.DecayDays = profileDays
		}
		if contentDays > 0 {
			e.content.DecayDays = contentDays
		}
	}
}

// WithCooldown 设置冷却窗口。
func WithCooldown(window time.Duration) Option {
	return func(e *Engine) { e.cooldown = window }
}

// WithScorerTimeout 设置 StrategyScores 中每个策略的超时。
func WithScorerTimeout(d time.Duration) Option {
	return func(e *Engine) { e.fanout.Timeout = d }
}
