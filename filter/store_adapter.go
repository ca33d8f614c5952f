package filter

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// StoreAdapter 把 core.Store 中的一个 key 当作黑名单（JSON 字符串数组）。
type StoreAdapter struct {
	store core.Store
}

func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

var _ BlacklistStore = (*StoreAdapter)(nil)

// GetBlacklist 读取黑名单；key 不存在或已过期视为空名单。
func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if core.IsStoreNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode blacklist %s: %w", key, err)
	}
	return ids, nil
}

// SetBlacklist 覆盖写入黑名单。ttl > 0 时名单到期自动失效（例如当天售罄）；空名单直接删除 key。
func (a *StoreAdapter) SetBlacklist(ctx context.Context, key string, ids []string, ttl time.Duration) error {
	if len(ids) == 0 {
		return a.store.Delete(ctx, key)
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, key, data, ttl)
}
