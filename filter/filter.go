package filter

import (
	"context"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// Filter 判断候选菜品是否剔除：true 剔除，false 保留。
type Filter interface {
	Name() string
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Preparer 由需要按请求加载外部数据的过滤器实现。FilterNode 在逐条判断前调用一次，
// 用返回的 Filter 判断本次请求的全部候选；原过滤器不被修改，可在请求间共享。
type Preparer interface {
	Prepare(ctx context.Context, rctx *core.RecommendContext) (Filter, error)
}
