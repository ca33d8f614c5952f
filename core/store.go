package core

import (
	"context"
	"errors"
	"time"
)

// Store 是最小的键值存储，用于黑名单这类整块读写的旁路数据。
type Store interface {
	Name() string

	// Get 读取 key；不存在时返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入 key；ttl <= 0 表示不过期
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete 删除若干 key，不区分值类型；不存在的 key 忽略
	Delete(ctx context.Context, keys ...string) error

	Close() error
}

// ScoredMember 是有序集合中的一个成员。
type ScoredMember struct {
	Member string
	Score  float64
}

// KeyValueStore 在 Store 之上提供菜品目录与下单日志所需的结构：
//
//	Hash       菜品目录（dish id -> JSON）
//	SortedSet  下单时间线（score 为时间戳）、销量计数
type KeyValueStore interface {
	Store

	// ZAdd 添加或更新成员
	ZAdd(ctx context.Context, key string, members ...ScoredMember) error

	// ZIncrBy 累加成员分数并返回新值
	ZIncrBy(ctx context.Context, key string, increment float64, member string) (float64, error)

	// ZRevRange 按分数降序返回 [start, stop] 名次的成员，stop = -1 表示到末尾。
	// 同分成员按字典序降序，与 Redis ZREVRANGE 一致。
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error)

	ZRem(ctx context.Context, key string, members ...string) error

	HSet(ctx context.Context, key, field string, value []byte) error

	// HGetAll 读取整个 Hash；key 不存在时返回空 map
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)
}

var (
	ErrStoreNotFound     = NewDomainError(ModuleStore, CodeNotFound, "store: key not found")
	ErrStoreNotSupported = NewDomainError(ModuleStore, CodeNotSupported, "store: operation not supported")
	ErrStoreUnavailable  = NewDomainError(ModuleStore, CodeUnavailable, "store: backend unavailable")
)

func IsStoreNotFound(err error) bool     { return errors.Is(err, ErrStoreNotFound) }
func IsStoreNotSupported(err error) bool { return errors.Is(err, ErrStoreNotSupported) }
