package recall

import (
	"context"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pipeline"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/utils"
)

// CatalogRecall 把目录中的全部菜品作为候选，顺序与索引一致。
// 同时实现 Source 和 Node 接口，可以直接放在 Pipeline 的第一个位置。
type CatalogRecall struct{}

var _ Source = (*CatalogRecall)(nil)

func (r *CatalogRecall) Name() string        { return "recall.catalog" }
func (r *CatalogRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，忽略上游 items
func (r *CatalogRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *CatalogRecall) Recall(_ context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || rctx.Catalog == nil {
		return nil, nil
	}
	dishes := rctx.Catalog.Dishes()
	out := make([]*core.Item, 0, len(dishes))
	for _, d := range dishes {
		vec, _ := rctx.Catalog.Vector(d.ID)
		it := core.NewDishItem(d, vec)
		it.PutLabel(core.LabelRecallSource, utils.Label{Value: "catalog", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
