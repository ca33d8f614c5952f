package filter

import (
	"context"
	"fmt"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// BlacklistFilter 剔除售罄、下架的菜品。名单来自配置（DishIDs）与可选的存储（Store + Key），
// 存储中的名单每次请求读取一次。
type BlacklistFilter struct {
	DishIDs map[string]struct{}
	Store   BlacklistStore
	Key     string
}

// BlacklistStore 读取存储中的黑名单；key 不存在时返回空名单。
type BlacklistStore interface {
	GetBlacklist(ctx context.Context, key string) ([]string, error)
}

// NewBlacklistFilter 创建黑名单过滤器；store 可为 nil。
func NewBlacklistFilter(dishIDs []string, store BlacklistStore, key string) *BlacklistFilter {
	set := make(map[string]struct{}, len(dishIDs))
	for _, id := range dishIDs {
		set[id] = struct{}{}
	}
	return &BlacklistFilter{DishIDs: set, Store: store, Key: key}
}

func (f *BlacklistFilter) Name() string { return "filter.blacklist" }

// Prepare 合并配置名单与存储名单，返回只读内存名单的过滤器。
func (f *BlacklistFilter) Prepare(ctx context.Context, _ *core.RecommendContext) (Filter, error) {
	if f.Store == nil || f.Key == "" {
		return f, nil
	}
	stored, err := f.Store.GetBlacklist(ctx, f.Key)
	if err != nil {
		return nil, fmt.Errorf("load blacklist %s: %w", f.Key, err)
	}
	merged := make(map[string]struct{}, len(f.DishIDs)+len(stored))
	for id := range f.DishIDs {
		merged[id] = struct{}{}
	}
	for _, id := range stored {
		merged[id] = struct{}{}
	}
	return &BlacklistFilter{DishIDs: merged}, nil
}

// ShouldFilter 只看内存名单；存储名单需先经 Prepare 合并。
func (f *BlacklistFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, ok := f.DishIDs[item.ID]
	return ok, nil
}
