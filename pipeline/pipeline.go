package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// Pipeline 把一次推荐拆成可组合的 Node 链：召回 → 过滤 → 排序 → 重排。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("node", node.Name()).Msg("pipeline: node failed")
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		log.Ctx(ctx).Debug().
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("took", time.Since(start)).
			Msg("pipeline: node done")
		cur = next
	}
	return cur, nil
}

// 阶段先后：召回 → 过滤 → 排序 → 重排。同一阶段可以连续出现多个 Node。
var stageOrder = map[Kind]int{
	KindRecall: 0,
	KindFilter: 1,
	KindRank:   2,
	KindReRank: 3,
}

// CheckStages 要求第一个 Node 是召回，且阶段不回退（例如重排之后不能再过滤）。
func CheckStages(nodes []Node) error {
	if len(nodes) == 0 {
		return fmt.Errorf("pipeline: no nodes")
	}
	if k := nodes[0].Kind(); k != KindRecall {
		return fmt.Errorf("pipeline: first node %s is %s, want %s", nodes[0].Name(), k, KindRecall)
	}
	prev := 0
	for _, n := range nodes {
		stage, ok := stageOrder[n.Kind()]
		if !ok {
			return fmt.Errorf("pipeline: node %s has unknown kind %q", n.Name(), n.Kind())
		}
		if stage < prev {
			return fmt.Errorf("pipeline: node %s (%s) placed after a later stage", n.Name(), n.Kind())
		}
		prev = stage
	}
	return nil
}

// Kinds 返回各 Node 的阶段，按顺序。
func (p *Pipeline) Kinds() []Kind {
	out := make([]Kind, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		out = append(out, n.Kind())
	}
	return out
}
