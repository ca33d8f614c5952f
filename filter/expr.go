package filter

import (
	"context"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/dsl"
)

// ExprFilter 按 CEL 规则剔除菜品：任一规则为 true 即过滤。
type ExprFilter struct {
	Rules []*dsl.Program
}

// NewExprFilter 编译规则；任一规则编译失败即返回错误。
func NewExprFilter(exprs ...string) (*ExprFilter, error) {
	rules, err := dsl.CompileAll(exprs...)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{Rules: rules}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	for _, r := range f.Rules {
		hit, err := r.Eval(item, rctx)
		if err != nil {
			return false, err
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}
