package recall

import (
	"context"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// Source 表示一个候选来源（目录全量 / 冷启动随机）。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// Scorer 是独立的打分策略（协同过滤 / 内容 / 热度），输出 dish id -> [0,1] 分数。
// 各策略互不组合，调用方自行决定如何使用。
type Scorer interface {
	Name() string
	Score(ctx context.Context, rctx *core.RecommendContext) (map[string]float64, error)
}
