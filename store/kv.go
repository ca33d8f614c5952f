package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// KV 布局
const (
	KeyDishes     = "canteen:dishes"    // Hash：dish id -> Dish JSON
	KeyOrders     = "canteen:orders"    // ZSet：全量日志，score 为 UnixNano
	KeyUserOrders = "canteen:orders:"   // ZSet 前缀：单用户日志
	KeyDailySales = "rank:daily:sales"  // ZSet：菜品下单计数
	KeyBlacklist  = "canteen:blacklist" // 菜品黑名单（JSON 数组）
)

// KVRepository 把目录与下单日志存放在 core.KeyValueStore 上（memory / redis）。
//
// 日志成员为事件 JSON，完全相同的两条事件（同用户、同菜、同一纳秒）只保留一条。
type KVRepository struct {
	kv core.KeyValueStore
}

func NewKVRepository(kv core.KeyValueStore) *KVRepository {
	return &KVRepository{kv: kv}
}

var _ Repository = (*KVRepository)(nil)

// Store 返回底层 KV，供黑名单等旁路数据复用连接。
func (r *KVRepository) Store() core.KeyValueStore { return r.kv }

func (r *KVRepository) ListDishes(ctx context.Context) ([]core.Dish, error) {
	raw, err := r.kv.HGetAll(ctx, KeyDishes)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", KeyDishes, err)
	}
	dishes := make([]core.Dish, 0, len(raw))
	for id, b := range raw {
		var d core.Dish
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("decode dish %s: %w", id, err)
		}
		if d.ID == "" {
			d.ID = id
		}
		dishes = append(dishes, d)
	}
	return dishes, nil
}

func (r *KVRepository) AddDish(ctx context.Context, dish core.Dish) error {
	if dish.ID == "" {
		return core.NewInputError(core.ModuleStore, "dish id is empty")
	}
	b, err := json.Marshal(dish)
	if err != nil {
		return fmt.Errorf("encode dish %s: %w", dish.ID, err)
	}
	return r.kv.HSet(ctx, KeyDishes, dish.ID, b)
}

func (r *KVRepository) AppendOrder(ctx context.Context, event core.OrderEvent) error {
	if event.UserID == "" {
		return core.ErrEmptyUserID
	}
	if event.Action == "" {
		event.Action = core.ActionOrder
	}
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	member := core.ScoredMember{Member: string(b), Score: float64(event.Timestamp.UnixNano())}
	if err := r.kv.ZAdd(ctx, KeyUserOrders+event.UserID, member); err != nil {
		return fmt.Errorf("zadd user orders: %w", err)
	}
	if err := r.kv.ZAdd(ctx, KeyOrders, member); err != nil {
		return fmt.Errorf("zadd orders: %w", err)
	}
	if event.IsOrder() {
		if _, err := r.kv.ZIncrBy(ctx, KeyDailySales, 1, event.DishID); err != nil {
			return fmt.Errorf("zincrby %s: %w", KeyDailySales, err)
		}
	}
	return nil
}

// RecentOrders 只返回下单行为，新→旧。
func (r *KVRepository) RecentOrders(ctx context.Context, userID string, limit int) ([]core.OrderEvent, error) {
	members, err := r.kv.ZRevRange(ctx, KeyUserOrders+userID, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("zrevrange user orders: %w", err)
	}
	events, err := decodeEvents(members)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(events)
	return limitEvents(events, limit), nil
}

// AllPeerOrders 返回全部下单行为，旧→新（即写入顺序）。
func (r *KVRepository) AllPeerOrders(ctx context.Context) ([]core.OrderEvent, error) {
	members, err := r.kv.ZRevRange(ctx, KeyOrders, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("zrevrange orders: %w", err)
	}
	events, err := decodeEvents(members)
	if err != nil {
		return nil, err
	}
	sortOldestFirst(events)
	return events, nil
}

func (r *KVRepository) ResetHistory(ctx context.Context, userID string) error {
	key := KeyUserOrders + userID
	members, err := r.kv.ZRevRange(ctx, key, 0, -1)
	if err != nil {
		return fmt.Errorf("zrevrange user orders: %w", err)
	}
	if len(members) == 0 {
		return nil
	}
	events, err := decodeEvents(members)
	if err != nil {
		return err
	}
	for _, e := range events {
		if _, err := r.kv.ZIncrBy(ctx, KeyDailySales, -1, e.DishID); err != nil {
			return fmt.Errorf("zincrby %s: %w", KeyDailySales, err)
		}
	}
	raw := make([]string, len(members))
	for i, m := range members {
		raw[i] = m.Member
	}
	if err := r.kv.ZRem(ctx, KeyOrders, raw...); err != nil {
		return fmt.Errorf("zrem orders: %w", err)
	}
	return r.kv.Delete(ctx, key)
}

// DailySales 返回下单计数最高的 n 个菜品及计数（n <= 0 表示全部）。
func (r *KVRepository) DailySales(ctx context.Context, n int) ([]DishCount, error) {
	stop := int64(n) - 1
	if n <= 0 {
		stop = -1
	}
	ranked, err := r.kv.ZRevRange(ctx, KeyDailySales, 0, stop)
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", KeyDailySales, err)
	}
	out := make([]DishCount, 0, len(ranked))
	for _, m := range ranked {
		// 重置历史后计数可能回到 0，降序排列中其后都不再为正
		if m.Score <= 0 {
			break
		}
		out = append(out, DishCount{DishID: m.Member, Count: int(m.Score)})
	}
	return out, nil
}

// DishCount 是某个菜品的下单次数。
type DishCount struct {
	DishID string `json:"dish_id"`
	Count  int    `json:"count"`
}

func (r *KVRepository) Close() error {
	return r.kv.Close()
}

// decodeEvents 解码日志成员并丢弃非下单行为。
func decodeEvents(members []core.ScoredMember) ([]core.OrderEvent, error) {
	events := make([]core.OrderEvent, 0, len(members))
	for _, m := range members {
		var e core.OrderEvent
		if err := json.Unmarshal([]byte(m.Member), &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		if e.IsOrder() {
			events = append(events, e)
		}
	}
	return events, nil
}
