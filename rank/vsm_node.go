package rank

import (
	"cmp"
	"context"
	"slices"
	"strconv"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pipeline"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/utils"
)

// VSMNode 是向量空间模型排序 Node。
// - item.Score = cosine(画像向量, 菜品向量)
// - 写入 labels：rank_model、relevance
// - 按分数降序稳定排序；分数相同保持上游顺序（目录按 dish id 升序）
type VSMNode struct{}

func (n *VSMNode) Name() string        { return "rank.vsm" }
func (n *VSMNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *VSMNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	var query core.Vector
	if rctx != nil && rctx.User != nil {
		query = rctx.User.Vector
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		it.Score = core.Cosine(query, it.Vector)
		it.PutLabel(core.LabelRankModel, utils.Label{Value: "vsm", Source: "rank"})
		it.PutLabel(core.LabelRelevance, utils.Label{Value: strconv.FormatFloat(it.Score, 'f', 4, 64), Source: "rank"})
		out = append(out, it)
	}

	slices.SortStableFunc(out, func(a, b *core.Item) int { return cmp.Compare(b.Score, a.Score) })
	return out, nil
}
