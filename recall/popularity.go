package recall

import (
	"context"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// ScorePopularity 统计全量下单次数，取前 topN 道菜并以第一名为 1 归一化。
// 次数相同按日志中首次出现的顺序。
func ScorePopularity(orders []core.OrderEvent, topN int) map[string]float64 {
	if topN <= 0 {
		topN = core.PopularityTopN
	}
	counts := newCounter[int]()
	for _, ev := range orders {
		if ev.IsOrder() {
			counts.add(ev.DishID, 1)
		}
	}
	ranked := counts.ranked()
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	out := make(map[string]float64, len(ranked))
	if len(ranked) == 0 {
		return out
	}
	top := float64(ranked[0].val)
	for _, e := range ranked {
		out[e.key] = float64(e.val) / top
	}
	return out
}

// Popularity 是热度打分策略，使用 rctx.PeerOrders。
type Popularity struct {
	TopN int
}

func (p *Popularity) Name() string { return "recall.popularity" }

func (p *Popularity) Score(ctx context.Context, rctx *core.RecommendContext) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ScorePopularity(rctx.PeerOrders, p.TopN), nil
}
