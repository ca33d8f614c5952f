package recall

import (
	"cmp"
	"context"
	"slices"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// Collaborative 是基于同伴的协同过滤：以下单菜品集合的 Jaccard 相似度寻找同伴，
// 用同伴的下单次数加权出目标用户没点过的菜。
type Collaborative struct {
	// ScanLimit 最多扫描的同伴数（按日志中首次出现的顺序，不做排序）
	ScanLimit int

	// TopK 保留的最相似同伴数
	TopK int
}

func (c *Collaborative) Name() string { return "recall.collaborative" }

func (c *Collaborative) Score(ctx context.Context, rctx *core.RecommendContext) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scan, topK := c.ScanLimit, c.TopK
	if scan <= 0 {
		scan = core.PeerScanLimit
	}
	if topK <= 0 {
		topK = core.PeerTopK
	}
	return scorePeers(rctx.UserID, rctx.PeerOrders, scan, topK), nil
}

// ScorePeers 使用默认上限（扫描 100、保留 20）计算协同过滤分数。
// 无可用同伴时返回空 map。
func ScorePeers(targetID string, orders []core.OrderEvent) map[string]float64 {
	return scorePeers(targetID, orders, core.PeerScanLimit, core.PeerTopK)
}

type peer struct {
	userID string
	dishes *counter[int]
	sim    float64
}

func scorePeers(targetID string, orders []core.OrderEvent, scanLimit, topK int) map[string]float64 {
	target := make(map[string]struct{})
	for _, ev := range orders {
		if ev.IsOrder() && ev.UserID == targetID {
			target[ev.DishID] = struct{}{}
		}
	}
	if len(target) == 0 {
		return map[string]float64{}
	}

	// 按首次出现顺序汇总前 scanLimit 个同伴
	var peers []*peer
	byUser := make(map[string]*peer)
	for _, ev := range orders {
		if !ev.IsOrder() || ev.UserID == targetID {
			continue
		}
		p, ok := byUser[ev.UserID]
		if !ok {
			if len(peers) >= scanLimit {
				continue
			}
			p = &peer{userID: ev.UserID, dishes: newCounter[int]()}
			byUser[ev.UserID] = p
			peers = append(peers, p)
		}
		p.dishes.add(ev.DishID, 1)
	}

	similar := make([]*peer, 0, len(peers))
	for _, p := range peers {
		p.sim = jaccard(target, p.dishes)
		if p.sim > 0 {
			similar = append(similar, p)
		}
	}
	slices.SortStableFunc(similar, func(a, b *peer) int { return cmp.Compare(b.sim, a.sim) })
	if len(similar) > topK {
		similar = similar[:topK]
	}

	scores := newCounter[float64]()
	for _, p := range similar {
		for _, dishID := range p.dishes.keys {
			if _, seen := target[dishID]; seen {
				continue
			}
			scores.add(dishID, p.sim*float64(p.dishes.get(dishID)))
		}
	}
	return normalizeByMax(scores)
}

func jaccard(target map[string]struct{}, other *counter[int]) float64 {
	inter := 0
	for _, k := range other.keys {
		if _, ok := target[k]; ok {
			inter++
		}
	}
	union := len(target) + other.len() - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// normalizeByMax 除以最大值；最大值为 0 时返回空 map。
func normalizeByMax(c *counter[float64]) map[string]float64 {
	out := make(map[string]float64, c.len())
	var maxScore float64
	for _, k := range c.keys {
		maxScore = max(maxScore, c.vals[k])
	}
	if maxScore <= 0 {
		return out
	}
	for _, k := range c.keys {
		out[k] = c.vals[k] / maxScore
	}
	return out
}
