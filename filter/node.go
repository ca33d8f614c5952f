package filter

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pipeline"
)

// FilterNode 依次应用多个过滤器，任一过滤器命中即剔除。
// 过滤器出错时记录日志并保留该菜品。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string        { return "filter.node" }
func (n *FilterNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *FilterNode) Process(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	filters := n.prepare(ctx, rctx)
	hits := make(map[string]int, len(filters))
	kept := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if by := n.firstHit(ctx, rctx, filters, it); by != "" {
			hits[by]++
			continue
		}
		kept = append(kept, it)
	}

	if len(hits) > 0 {
		ev := log.Ctx(ctx).Debug().Int("kept", len(kept))
		for name, cnt := range hits {
			ev = ev.Int(name, cnt)
		}
		ev.Msg("filter: done")
	}
	return kept, nil
}

// firstHit 返回第一个命中的过滤器名；出错的过滤器视为未命中。
func (n *FilterNode) firstHit(ctx context.Context, rctx *core.RecommendContext, filters []Filter, it *core.Item) string {
	for _, f := range filters {
		hit, err := f.ShouldFilter(ctx, rctx, it)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("filter", f.Name()).Str("dish_id", it.ID).Msg("filter: evaluation failed")
			continue
		}
		if hit {
			return f.Name()
		}
	}
	return ""
}

// prepare 为本次请求准备过滤器。准备失败的过滤器跳过。
func (n *FilterNode) prepare(ctx context.Context, rctx *core.RecommendContext) []Filter {
	out := make([]Filter, 0, len(n.Filters))
	for _, f := range n.Filters {
		p, ok := f.(Preparer)
		if !ok {
			out = append(out, f)
			continue
		}
		prepared, err := p.Prepare(ctx, rctx)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("filter", f.Name()).Msg("filter: prepare failed, skipped")
			continue
		}
		out = append(out, prepared)
	}
	return out
}
