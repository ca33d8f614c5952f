package rerank

import (
	"cmp"
	"context"
	"math"
	"slices"
	"strconv"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pipeline"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/conv"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/utils"
)

// Candidate 是 MMR 的输入：菜品、向量与相关度。只在一次请求内存在。
type Candidate struct {
	Dish      *core.Dish
	Vector    core.Vector
	Relevance float64
}

// Rank 计算每个未被剔除菜品与查询向量的相关度，按相关度降序稳定排序后保留前 limit 个。
// 相关度相同保持索引顺序（dish id 升序）；limit <= 0 表示不截断。
//
// Rank 与 Recommend 是个性化路径的纯函数参考实现，不经过 Pipeline；
// 默认 Pipeline（rank.vsm → rerank.topn → rerank.mmr）的输出应与之一致。
func Rank(query core.Vector, index core.VectorIndex, excluded map[string]struct{}, limit int) []Candidate {
	if index == nil {
		return nil
	}
	dishes := index.Dishes()
	out := make([]Candidate, 0, len(dishes))
	for _, d := range dishes {
		if _, ok := excluded[d.ID]; ok {
			continue
		}
		vec, _ := index.Vector(d.ID)
		out = append(out, Candidate{Dish: d, Vector: vec, Relevance: core.Cosine(query, vec)})
	}
	slices.SortStableFunc(out, func(a, b Candidate) int { return cmp.Compare(b.Relevance, a.Relevance) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SelectMMR 在已按相关度排序的候选上做贪心 MMR 选择：
//
//	mmr = alpha*relevance - (1-alpha)*max(cosine(candidate, selected))
//
// 每轮取 mmr 最大者；相同时取在 ranked 中位置最靠前的。返回按选择顺序排列的至多 k 个候选。
func SelectMMR(ranked []Candidate, k int, alpha float64) []Candidate {
	if k <= 0 || len(ranked) == 0 {
		return nil
	}
	k = min(k, len(ranked))

	remaining := make([]int, len(ranked))
	for i := range remaining {
		remaining[i] = i
	}
	maxSim := make([]float64, len(ranked))
	selected := make([]Candidate, 0, k)

	for len(selected) < k && len(remaining) > 0 {
		best, bestScore := -1, math.Inf(-1)
		for pos, i := range remaining {
			score := alpha*ranked[i].Relevance - (1-alpha)*maxSim[i]
			if score > bestScore {
				best, bestScore = pos, score
			}
		}
		if best < 0 {
			break
		}
		pick := remaining[best]
		selected = append(selected, ranked[pick])
		remaining = slices.Delete(remaining, best, best+1)

		for _, i := range remaining {
			if sim := core.Cosine(ranked[i].Vector, ranked[pick].Vector); sim > maxSim[i] {
				maxSim[i] = sim
			}
		}
	}
	return selected
}

// Recommend 组合 Rank（截断到 core.CandidateCap）与 SelectMMR，返回菜品。
// 它是参考实现，引擎不调用；用于离线核对 Pipeline 的结果。
func Recommend(query core.Vector, index core.VectorIndex, excluded map[string]struct{}, k int, alpha float64) []*core.Dish {
	picked := SelectMMR(Rank(query, index, excluded, core.CandidateCap), k, alpha)
	out := make([]*core.Dish, 0, len(picked))
	for _, c := range picked {
		out = append(out, c.Dish)
	}
	return out
}

// MMRNode 是 MMR 重排 Node，输入需已按相关度（item.Score）降序排列。
// K 与 Alpha 可被 rctx.Params["k"] / ["alpha"] 覆盖。
type MMRNode struct {
	K     int     // 默认 core.DefaultTopK
	Alpha float64 // 默认 core.DefaultAlpha；显式 0 需通过 Params 传入
}

func (n *MMRNode) Name() string        { return "rerank.mmr" }
func (n *MMRNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *MMRNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	k, alpha := n.params(rctx)

	ranked := make([]Candidate, 0, len(items))
	byDish := make(map[*core.Dish]*core.Item, len(items))
	for _, it := range items {
		if it == nil || it.Dish == nil {
			continue
		}
		ranked = append(ranked, Candidate{Dish: it.Dish, Vector: it.Vector, Relevance: it.Score})
		byDish[it.Dish] = it
	}

	picked := SelectMMR(ranked, k, alpha)
	out := make([]*core.Item, 0, len(picked))
	for i, c := range picked {
		it := byDish[c.Dish]
		it.PutLabel(core.LabelMMRRank, utils.Label{Value: strconv.Itoa(i + 1), Source: "rerank"})
		out = append(out, it)
	}
	return out, nil
}

func (n *MMRNode) params(rctx *core.RecommendContext) (int, float64) {
	k, alpha := n.K, n.Alpha
	if k <= 0 {
		k = core.DefaultTopK
	}
	if alpha <= 0 || alpha > 1 {
		alpha = core.DefaultAlpha
	}
	if rctx != nil {
		if v, ok := conv.Int(rctx.Params[core.ParamK]); ok && v > 0 {
			k = v
		}
		if v, ok := conv.Float(rctx.Params[core.ParamAlpha]); ok && v >= 0 && v <= 1 {
			alpha = v
		}
	}
	return k, alpha
}
