package rerank

import (
	"context"
	"strconv"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pipeline"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/utils"
)

// DiversityPenalty 是按类目重复度给出的分段惩罚：
// 已选中同类目 0 / 1 / 2 / ≥3 道时分别为 0 / 0.3 / 0.6 / 0.8。
func DiversityPenalty(selected []*core.Dish, candidate *core.Dish) float64 {
	if len(selected) == 0 || candidate == nil {
		return 0
	}
	same := 0
	for _, d := range selected {
		if d != nil && d.Category == candidate.Category {
			same++
		}
	}
	switch same {
	case 0:
		return 0
	case 1:
		return 0.3
	case 2:
		return 0.6
	default:
		return 0.8
	}
}

// Diversity 是基于 DiversityPenalty 的类目打散 ReRank：
// 每轮选择 score - penalty 最大的候选（相同时取靠前者），不改变 item.Score。
// 它是 MMR 之外的另一种多样性信号，默认不在主链路中。
type Diversity struct {
	N int // 输出条数，<= 0 表示全部重排
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	remaining := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it != nil && it.Dish != nil {
			remaining = append(remaining, it)
		}
	}
	limit := len(remaining)
	if n.N > 0 && n.N < limit {
		limit = n.N
	}

	out := make([]*core.Item, 0, limit)
	chosen := make([]*core.Dish, 0, limit)
	for len(out) < limit {
		best, bestScore, bestPenalty := -1, 0.0, 0.0
		for i, it := range remaining {
			p := DiversityPenalty(chosen, it.Dish)
			if s := it.Score - p; best < 0 || s > bestScore {
				best, bestScore, bestPenalty = i, s, p
			}
		}
		it := remaining[best]
		it.PutLabel(core.LabelDiversityPenalty, utils.Label{
			Value:  strconv.FormatFloat(bestPenalty, 'f', 1, 64),
			Source: "rerank",
		})
		out = append(out, it)
		chosen = append(chosen, it.Dish)
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return out, nil
}
