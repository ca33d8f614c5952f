package rerank

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pipeline"
)

// TopNNode 保留相关性最高的 N 个候选，给 MMR 的 O(K·N) 选择设上界。
// 输入须已按相关性降序；N <= 0 时不截断。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string        { return "rerank.topn" }
func (n *TopNNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopNNode) Process(ctx context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	log.Ctx(ctx).Debug().Int("candidates", len(items)).Int("cap", n.N).Msg("rerank: candidates truncated")
	return items[:n.N:n.N], nil
}
