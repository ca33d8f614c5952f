package store

import (
	"context"
	"testing"
	"time"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	if _, err := m.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get missing: err = %v, want not found", err)
	}
	buf := []byte("v")
	if err := m.Set(ctx, "k", buf, 0); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'x' // 写入后修改调用方切片不影响存储
	got, err := m.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	_ = m.Set(ctx, "k2", []byte("w"), 0)
	_ = m.Delete(ctx, "k", "k2", "missing")
	for _, k := range []string{"k", "k2"} {
		if _, err := m.Get(ctx, k); !core.IsStoreNotFound(err) {
			t.Errorf("deleted key %s still readable: %v", k, err)
		}
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	clock := time.Date(2024, 5, 20, 11, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	_ = m.Set(ctx, "soldout", []byte("[]"), time.Hour)
	_ = m.Set(ctx, "forever", []byte("[]"), 0)

	clock = clock.Add(59 * time.Minute)
	if _, err := m.Get(ctx, "soldout"); err != nil {
		t.Errorf("value expired early: %v", err)
	}
	clock = clock.Add(time.Minute)
	if _, err := m.Get(ctx, "soldout"); !core.IsStoreNotFound(err) {
		t.Errorf("value should have expired, err = %v", err)
	}
	if _, err := m.Get(ctx, "forever"); err != nil {
		t.Errorf("value without ttl expired: %v", err)
	}
}

func TestMemoryStore_ZSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	_ = m.ZAdd(ctx, "z",
		core.ScoredMember{Member: "a", Score: 1},
		core.ScoredMember{Member: "c", Score: 3},
		core.ScoredMember{Member: "b", Score: 2},
		core.ScoredMember{Member: "d", Score: 2},
	)
	if v, _ := m.ZIncrBy(ctx, "z", 5, "a"); v != 6 {
		t.Errorf("ZIncrBy = %v, want 6", v)
	}

	tests := []struct {
		start, stop int64
		want        []string
	}{
		{0, -1, []string{"a", "c", "d", "b"}}, // 同分按成员降序
		{0, 1, []string{"a", "c"}},
		{2, 10, []string{"d", "b"}},
		{5, 6, nil},
	}
	for _, tt := range tests {
		got, err := m.ZRevRange(ctx, "z", tt.start, tt.stop)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("ZRevRange(%d,%d) = %v, want %v", tt.start, tt.stop, got, tt.want)
			continue
		}
		for i := range got {
			if got[i].Member != tt.want[i] {
				t.Errorf("ZRevRange(%d,%d) = %v, want %v", tt.start, tt.stop, got, tt.want)
				break
			}
		}
	}

	_ = m.ZRem(ctx, "z", "a", "missing")
	top, _ := m.ZRevRange(ctx, "z", 0, 0)
	if len(top) != 1 || top[0].Member != "c" || top[0].Score != 3 {
		t.Errorf("top after ZRem = %v", top)
	}
}

func TestMemoryStore_Hash(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	_ = m.HSet(ctx, "h", "f1", []byte("x"))
	_ = m.HSet(ctx, "h", "f2", []byte("y"))
	_ = m.HSet(ctx, "other", "f1", []byte("z"))

	all, err := m.HGetAll(ctx, "h")
	if err != nil || len(all) != 2 || string(all["f2"]) != "y" {
		t.Errorf("HGetAll = %v, %v", all, err)
	}
	_ = m.Delete(ctx, "h")
	if all, err := m.HGetAll(ctx, "h"); err != nil || all == nil || len(all) != 0 {
		t.Errorf("deleted hash = %v, %v; want empty map", all, err)
	}
}
