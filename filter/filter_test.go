package filter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/store"
)

var now = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.NewDishItem(&core.Dish{ID: id, Price: float64(len(id)) * 10}, core.Vector{}))
	}
	return out
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCooldownIDs(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	history := []core.OrderEvent{
		{DishID: "fresh", Timestamp: now.Add(-2 * time.Hour)},
		{DishID: "edge", Timestamp: now.Add(-72*time.Hour + time.Second).In(shanghai)},
		{DishID: "expired", Timestamp: now.Add(-72 * time.Hour)},
		{DishID: "old", Timestamp: now.Add(-20 * 24 * time.Hour)},
		{DishID: "viewed", Timestamp: now, Action: "view"},
	}
	got := CooldownIDs(history, now, core.CooldownWindow)
	for _, id := range []string{"fresh", "edge"} {
		if _, ok := got[id]; !ok {
			t.Errorf("%s should be cooling down", id)
		}
	}
	for _, id := range []string{"expired", "old", "viewed"} {
		if _, ok := got[id]; ok {
			t.Errorf("%s should not be cooling down", id)
		}
	}
}

func TestFilterNode(t *testing.T) {
	rctx := &core.RecommendContext{Excluded: map[string]struct{}{"b": {}}}
	expr, err := NewExprFilter(`dish.price > 25.0`)
	if err != nil {
		t.Fatalf("NewExprFilter: %v", err)
	}
	node := &FilterNode{Filters: []Filter{
		&CooldownFilter{},
		NewBlacklistFilter([]string{"c"}, nil, ""),
		expr,
	}}
	out, err := node.Process(context.Background(), rctx, items("a", "b", "c", "dd", "eee"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if want := []string{"a", "dd"}; !equal(ids(out), want) {
		t.Errorf("kept %v, want %v", ids(out), want)
	}
}

type failingFilter struct{}

func (failingFilter) Name() string { return "failing" }

func (failingFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return true, errors.New("boom")
}

func TestFilterNode_ErrorKeepsItem(t *testing.T) {
	node := &FilterNode{Filters: []Filter{failingFilter{}}}
	out, err := node.Process(context.Background(), &core.RecommendContext{}, items("a"))
	if err != nil || len(out) != 1 {
		t.Fatalf("out=%v err=%v; a failing filter should not drop items", ids(out), err)
	}
}

type countingStore struct {
	BlacklistStore
	calls int
}

func (c *countingStore) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	c.calls++
	return c.BlacklistStore.GetBlacklist(ctx, key)
}

func TestBlacklistFilter_Store(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	defer mem.Close()
	adapter := NewStoreAdapter(mem)
	counting := &countingStore{BlacklistStore: adapter}
	node := &FilterNode{Filters: []Filter{NewBlacklistFilter([]string{"c"}, counting, "canteen:blacklist")}}

	out, err := node.Process(ctx, &core.RecommendContext{}, items("a", "b", "c"))
	if err != nil || !equal(ids(out), []string{"a", "b"}) {
		t.Fatalf("missing key should mean only the configured list, got %v %v", ids(out), err)
	}

	if err := adapter.SetBlacklist(ctx, "canteen:blacklist", []string{"a"}, 0); err != nil {
		t.Fatalf("SetBlacklist: %v", err)
	}
	counting.calls = 0
	out, _ = node.Process(ctx, &core.RecommendContext{}, items("a", "b", "c"))
	if !equal(ids(out), []string{"b"}) {
		t.Errorf("kept %v, want [b]", ids(out))
	}
	if counting.calls != 1 {
		t.Errorf("store read %d times, want once per request", counting.calls)
	}

	// 清空名单即删除 key
	if err := adapter.SetBlacklist(ctx, "canteen:blacklist", nil, 0); err != nil {
		t.Fatal(err)
	}
	if got, err := adapter.GetBlacklist(ctx, "canteen:blacklist"); err != nil || got != nil {
		t.Errorf("cleared blacklist = %v, %v", got, err)
	}
}

type brokenStore struct{}

func (brokenStore) GetBlacklist(context.Context, string) ([]string, error) {
	return nil, errors.New("redis down")
}

func TestFilterNode_PrepareFailureSkipsFilter(t *testing.T) {
	node := &FilterNode{Filters: []Filter{
		NewBlacklistFilter([]string{"a"}, brokenStore{}, "k"),
		NewBlacklistFilter([]string{"b"}, nil, ""),
	}}
	out, err := node.Process(context.Background(), &core.RecommendContext{}, items("a", "b", "c"))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "c"}; !equal(ids(out), want) {
		t.Errorf("kept %v, want %v", ids(out), want)
	}
}

func TestNewExprFilter_InvalidRule(t *testing.T) {
	if _, err := NewExprFilter(`dish.price >`); err == nil {
		t.Error("invalid rule should fail")
	}
}
