package core

import "context"

// CatalogProvider 提供完整的在售菜品目录，返回顺序无意义。
type CatalogProvider interface {
	ListDishes(ctx context.Context) ([]Dish, error)
}

// HistoryProvider 提供下单日志。
//
// 实现：
//   - store.KVRepository（基于 core.Store：memory / redis）
//   - store.MongoRepository
//   - store.SQLiteRepository
type HistoryProvider interface {
	// RecentOrders 返回用户最近的下单记录，按时间新→旧；limit <= 0 表示不限
	RecentOrders(ctx context.Context, userID string, limit int) ([]OrderEvent, error)

	// AllPeerOrders 返回全量下单记录，顺序由数据源决定但需稳定
	AllPeerOrders(ctx context.Context) ([]OrderEvent, error)
}

// VectorIndex 是只读的菜品特征索引，由 feature.Index 实现。
type VectorIndex interface {
	// Version 标识目录快照；目录变化时必然变化
	Version() uint64

	// Dishes 按稳定顺序返回全部菜品
	Dishes() []*Dish

	// Dish 按 ID 查找菜品
	Dish(id string) (*Dish, bool)

	// Vector 按 ID 查找菜品特征向量
	Vector(id string) (Vector, bool)

	Len() int
}
