package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("dish", cel.DynType),
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
		cel.CrossTypeNumericComparisons(true),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译后的规则表达式，可在并发请求间复用。
//
// 可用变量：
//   - dish：id, name, category, price, calories, tags, popularity（无先验热度时为 -1）
//   - item：id, score, features（九维口味向量，按维度名取值）, labels
//   - label：label.<key> 直接取 Label.Value
//   - rctx：user_id, hour, params
//
// 示例：
//   - `dish.price > 30.0`
//   - `"重辣" in dish.tags && rctx.hour < 10`
//   - `dish.category == "饮品" && item.score < 0.2`
//   - `item.features.oily > 0.7 && rctx.hour < 10`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；表达式必须返回 bool。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// CompileAll 编译多条规则，跳过空串；任一失败即返回错误。
func CompileAll(exprs ...string) ([]*Program, error) {
	out := make([]*Program, 0, len(exprs))
	for _, e := range exprs {
		if e == "" {
			continue
		}
		p, err := Compile(e)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (p *Program) String() string { return p.expr }

// Eval 对单个候选求值。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		// 访问不存在的 key 会报错，规则里应先用 has() 判断
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must return boolean, got %T", p.expr, out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	dish := map[string]any{}
	itemMap := map[string]any{}
	labels := map[string]any{}
	labelAccessor := map[string]any{}
	if item != nil {
		for k, v := range item.Labels {
			labels[k] = map[string]any{"value": v.Value, "source": v.Source}
			labelAccessor[k] = v.Value
		}
		itemMap = map[string]any{
			"id":       item.ID,
			"score":    item.Score,
			"features": item.Vector.Map(),
			"labels":   labels,
		}
		if d := item.Dish; d != nil {
			popularity := -1.0
			if d.Popularity != nil {
				popularity = *d.Popularity
			}
			tags := d.Tags
			if tags == nil {
				tags = []string{}
			}
			dish = map[string]any{
				"id":         d.ID,
				"name":       d.Name,
				"category":   d.Category,
				"price":      d.Price,
				"calories":   d.Calories,
				"tags":       tags,
				"popularity": popularity,
			}
		}
	}

	rctxMap := map[string]any{}
	if rctx != nil {
		params := rctx.Params
		if params == nil {
			params = map[string]any{}
		}
		rctxMap = map[string]any{
			"user_id": rctx.UserID,
			"hour":    rctx.LocalHour(),
			"params":  params,
		}
	}

	return map[string]any{
		"dish":  dish,
		"item":  itemMap,
		"label": labelAccessor,
		"rctx":  rctxMap,
	}
}
