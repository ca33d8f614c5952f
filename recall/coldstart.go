package recall

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/conv"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/utils"
)

// ColdStart 在没有画像时随机挑选菜品，不做个性化。
// 随机源可注入，固定种子时结果可复现。
type ColdStart struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewColdStart 以固定种子创建冷启动策略。
func NewColdStart(seed uint64) *ColdStart {
	return NewColdStartWithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewColdStartWithRand 使用外部随机源；rng 不可为 nil。
func NewColdStartWithRand(rng *rand.Rand) *ColdStart {
	return &ColdStart{rng: rng}
}

var _ Source = (*ColdStart)(nil)

func (c *ColdStart) Name() string { return "recall.cold_start" }

// Pick 从未被剔除的菜品中随机取至多 k 个；菜品不足时全部返回（可能为空）。
func (c *ColdStart) Pick(dishes []*core.Dish, excluded map[string]struct{}, k int) []*core.Dish {
	available := make([]*core.Dish, 0, len(dishes))
	for _, d := range dishes {
		if _, ok := excluded[d.ID]; ok {
			continue
		}
		available = append(available, d)
	}

	c.mu.Lock()
	c.rng.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})
	c.mu.Unlock()

	if k >= 0 && len(available) > k {
		available = available[:k]
	}
	return available
}

// Recall 实现 Source 接口：K 取自 rctx.Params["k"]，缺省为 core.DefaultTopK。
func (c *ColdStart) Recall(_ context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || rctx.Catalog == nil {
		return nil, nil
	}
	k := core.DefaultTopK
	if v, ok := conv.Int(rctx.Params[core.ParamK]); ok && v > 0 {
		k = v
	}
	return c.Items(rctx.Catalog, c.Pick(rctx.Catalog.Dishes(), rctx.Excluded, k)), nil
}

// Items 把挑中的菜品包装为候选并标注来源。
func (c *ColdStart) Items(index core.VectorIndex, picked []*core.Dish) []*core.Item {
	out := make([]*core.Item, 0, len(picked))
	for _, d := range picked {
		vec, _ := index.Vector(d.ID)
		it := core.NewDishItem(d, vec)
		it.PutLabel(core.LabelRecallSource, utils.Label{Value: "cold_start", Source: "recall"})
		out = append(out, it)
	}
	return out
}
