// Package store 提供 core.Store 的实现（memory / redis）以及三种菜品与下单日志仓库：
//   - KVRepository：基于 core.KeyValueStore
//   - MongoRepository：MongoDB（dishes / logs_behavior）
//   - SQLiteRepository：本地 SQLite 文件
//
// 三者都实现 Repository，由 Open 按配置选择。
package store

import (
	"context"
	"sort"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// Repository 是推荐引擎读取、CLI 写入的存储面。
type Repository interface {
	core.CatalogProvider
	core.HistoryProvider

	// AddDish 新增或覆盖菜品
	AddDish(ctx context.Context, dish core.Dish) error

	// AppendOrder 追加一条行为日志
	AppendOrder(ctx context.Context, event core.OrderEvent) error

	// ResetHistory 清空某个用户的全部行为日志
	ResetHistory(ctx context.Context, userID string) error

	Close() error
}

// sortNewestFirst 按时间新→旧稳定排序。
func sortNewestFirst(events []core.OrderEvent) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp.After(events[j].Timestamp) })
}

// sortOldestFirst 按时间旧→新稳定排序。
func sortOldestFirst(events []core.OrderEvent) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })
}

func limitEvents(events []core.OrderEvent, limit int) []core.OrderEvent {
	if limit > 0 && len(events) > limit {
		return events[:limit]
	}
	return events
}
