package store

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// MemoryStore 是进程内的 KeyValueStore，用于测试与单次 CLI 运行，退出即丢失。
// 过期的值在读取时才清理。
type MemoryStore struct {
	mu     sync.RWMutex
	now    func() time.Time
	values map[string]value
	hashes map[string]map[string][]byte
	zsets  map[string]map[string]float64
}

type value struct {
	data     []byte
	expireAt time.Time // 零值表示不过期
}

func (v value) expired(now time.Time) bool {
	return !v.expireAt.IsZero() && !now.Before(v.expireAt)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:    time.Now,
		values: make(map[string]value),
		hashes: make(map[string]map[string][]byte),
		zsets:  make(map[string]map[string]float64),
	}
}

var _ core.KeyValueStore = (*MemoryStore)(nil)

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	if v.expired(m.now()) {
		delete(m.values, key)
		return nil, core.ErrStoreNotFound
	}
	return slices.Clone(v.data), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := value{data: slices.Clone(data)}
	if ttl > 0 {
		v.expireAt = m.now().Add(ttl)
	}
	m.values[key] = v
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.values, k)
		delete(m.hashes, k)
		delete(m.zsets, k)
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) ZAdd(_ context.Context, key string, members ...core.ScoredMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	z := m.zset(key)
	for _, mb := range members {
		z[mb.Member] = mb.Score
	}
	return nil
}

func (m *MemoryStore) ZIncrBy(_ context.Context, key string, increment float64, member string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	z := m.zset(key)
	z[member] += increment
	return z[member], nil
}

func (m *MemoryStore) zset(key string) map[string]float64 {
	z, ok := m.zsets[key]
	if !ok {
		z = make(map[string]float64)
		m.zsets[key] = z
	}
	return z
}

func (m *MemoryStore) ZRevRange(_ context.Context, key string, start, stop int64) ([]core.ScoredMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	z := m.zsets[key]
	all := make([]core.ScoredMember, 0, len(z))
	for mb, s := range z {
		all = append(all, core.ScoredMember{Member: mb, Score: s})
	}
	slices.SortFunc(all, func(a, b core.ScoredMember) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(b.Member, a.Member)
	})

	n := int64(len(all))
	if start < 0 {
		start = 0
	}
	if stop < 0 || stop >= n {
		stop = n - 1
	}
	if start > stop {
		return nil, nil
	}
	return all[start : stop+1], nil
}

func (m *MemoryStore) ZRem(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	z := m.zsets[key]
	for _, mb := range members {
		delete(z, mb)
	}
	if len(z) == 0 {
		delete(m.zsets, key)
	}
	return nil
}

func (m *MemoryStore) HSet(_ context.Context, key, field string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string][]byte)
		m.hashes[key] = h
	}
	h[field] = slices.Clone(data)
	return nil
}

func (m *MemoryStore) HGetAll(_ context.Context, key string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := maps.Clone(m.hashes[key])
	if out == nil {
		out = make(map[string][]byte)
	}
	return out, nil
}
