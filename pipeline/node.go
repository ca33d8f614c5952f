package pipeline

import (
	"context"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// Kind 用于标记 Node 类型，方便按阶段打点与日志。
type Kind string

const (
	KindRecall Kind = "recall" // 召回阶段：从目录生成候选集
	KindFilter Kind = "filter" // 过滤阶段：冷却、黑名单、规则
	KindRank   Kind = "rank"   // 排序阶段：按画像相关性打分排序
	KindReRank Kind = "rerank" // 重排阶段：截断与 MMR 多样性
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，方便 Recall 生成、Filter 截断、ReRank 重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// NodeFunc 把函数适配为 Node，便于在测试与引擎中临时插入节点。
type NodeFunc struct {
	NodeName string
	NodeKind Kind
	Fn       func(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error)
}

func (n NodeFunc) Name() string { return n.NodeName }

func (n NodeFunc) Kind() Kind { return n.NodeKind }

func (n NodeFunc) Process(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	return n.Fn(ctx, rctx, items)
}
