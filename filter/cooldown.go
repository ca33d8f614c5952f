package filter

import (
	"context"
	"time"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// CooldownIDs 返回在冷却窗口内下过单的菜品 ID：now - ts < window。
// 时间比较与时区无关。
func CooldownIDs(history []core.OrderEvent, now time.Time, window time.Duration) map[string]struct{} {
	out := make(map[string]struct{})
	for _, ev := range history {
		if !ev.IsOrder() {
			continue
		}
		if now.Sub(ev.Timestamp) < window {
			out[ev.DishID] = struct{}{}
		}
	}
	return out
}

// CooldownFilter 剔除 rctx.Excluded 中的菜品（由 CooldownIDs 预先计算）。
type CooldownFilter struct{}

func (f *CooldownFilter) Name() string {
	return "filter.cooldown"
}

func (f *CooldownFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return rctx.IsExcluded(item.ID), nil
}
