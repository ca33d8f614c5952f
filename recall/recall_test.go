package recall

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/feature"
)

var now = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func order(user, dish string, daysAgo int) core.OrderEvent {
	return core.OrderEvent{
		UserID:    user,
		DishID:    dish,
		Timestamp: now.Add(-time.Duration(daysAgo) * 24 * time.Hour),
		Action:    core.ActionOrder,
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScorePeers(t *testing.T) {
	orders := []core.OrderEvent{
		order("me", "a", 1), order("me", "b", 2),
		// p1: {a, c×2}  jaccard = 1/3
		order("p1", "a", 1), order("p1", "c", 1), order("p1", "c", 2),
		// p2: {a, b, d} jaccard = 2/3
		order("p2", "a", 1), order("p2", "b", 1), order("p2", "d", 1),
		// p3: {e} no overlap
		order("p3", "e", 1),
	}
	got := ScorePeers("me", orders)
	// c = 1/3*2 = 2/3, d = 2/3*1 = 2/3
	if len(got) != 2 {
		t.Fatalf("scores = %v, want c and d only", got)
	}
	if !near(got["c"], 1) || !near(got["d"], 1) {
		t.Errorf("scores = %v, want c=1 d=1", got)
	}
	if _, ok := got["e"]; ok {
		t.Error("dishes from non-overlapping peers must not be scored")
	}
	if _, ok := got["a"]; ok {
		t.Error("dishes the target already ordered must not be scored")
	}
}

func TestScorePeers_NormalizedRange(t *testing.T) {
	orders := []core.OrderEvent{
		order("me", "a", 0),
		order("p1", "a", 0), order("p1", "x", 0), order("p1", "x", 0), order("p1", "x", 0),
		order("p2", "a", 0), order("p2", "y", 0),
	}
	got := ScorePeers("me", orders)
	maxScore := 0.0
	for id, s := range got {
		if s < 0 || s > 1 {
			t.Errorf("%s = %v out of [0,1]", id, s)
		}
		maxScore = math.Max(maxScore, s)
	}
	if maxScore != 1 {
		t.Errorf("max = %v, want 1", maxScore)
	}
}

func TestScorePeers_Empty(t *testing.T) {
	tests := []struct {
		name   string
		orders []core.OrderEvent
	}{
		{"no log", nil},
		{"target has no orders", []core.OrderEvent{order("p1", "a", 0)}},
		{"no overlap", []core.OrderEvent{order("me", "a", 0), order("p1", "b", 0)}},
		{"peers only repeat target dishes", []core.OrderEvent{order("me", "a", 0), order("p1", "a", 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScorePeers("me", tt.orders); len(got) != 0 {
				t.Errorf("got %v, want empty", got)
			}
		})
	}
}

func TestScorePeers_ScanLimitIsFirstEncountered(t *testing.T) {
	orders := []core.OrderEvent{order("me", "a", 0)}
	// 前两个同伴无重叠，第三个同伴重叠但超过扫描上限
	orders = append(orders, order("p1", "x", 0), order("p2", "y", 0), order("p3", "a", 0), order("p3", "z", 0))
	if got := scorePeers("me", orders, 2, 20); len(got) != 0 {
		t.Errorf("peer beyond scan limit was used: %v", got)
	}
	if got := scorePeers("me", orders, 3, 20); !near(got["z"], 1) {
		t.Errorf("got %v, want z=1", got)
	}
}

func catalog() *feature.Index {
	return feature.NewIndex([]core.Dish{
		{ID: "a", Category: "荤菜", Tags: []string{"辣", "咸"}},
		{ID: "b", Category: "荤菜", Tags: []string{"辣"}},
		{ID: "c", Category: "素菜", Tags: []string{"甜"}},
		{ID: "d", Category: "", Tags: nil},
	})
}

func TestScoreContent(t *testing.T) {
	idx := catalog()
	history := []core.OrderEvent{order("me", "a", 0), order("me", "missing", 0)}
	prefs := BuildPreferences(history, idx, now, 0)
	if !near(prefs.CategoryWeight("荤菜"), 1) || !near(prefs.TagWeight("辣"), 1) {
		t.Fatalf("unexpected prefs: cat=%v tag=%v", prefs.CategoryWeight("荤菜"), prefs.TagWeight("辣"))
	}

	got := ScoreContent(prefs, idx.Dishes())
	// a: 0.4*1 + 0.6*(2/2) = 1.0; b: 0.4 + 0.6*0.5 = 0.7
	want := map[string]float64{"a": 1, "b": 0.7, "c": 0, "d": 0}
	for id, w := range want {
		if !near(got[id], w) {
			t.Errorf("%s = %v, want %v", id, got[id], w)
		}
	}
}

func TestScoreContent_DecayAndNoHistory(t *testing.T) {
	idx := catalog()
	prefs := BuildPreferences([]core.OrderEvent{order("me", "a", 14), order("me", "c", 0)}, idx, now, 0)
	if !near(prefs.CategoryWeight("荤菜"), math.Exp(-1)) {
		t.Errorf("14-day-old order weight = %v, want exp(-1)", prefs.CategoryWeight("荤菜"))
	}

	empty := BuildPreferences(nil, idx, now, 0)
	if !empty.Empty() {
		t.Error("no history should give empty preferences")
	}
	for id, s := range ScoreContent(empty, idx.Dishes()) {
		if s != 0 {
			t.Errorf("%s = %v, want 0 without history", id, s)
		}
	}
}

func TestScorePopularity(t *testing.T) {
	orders := []core.OrderEvent{
		order("u1", "b", 0), order("u1", "a", 0), order("u2", "a", 0),
		order("u3", "a", 0), order("u2", "b", 0), order("u3", "c", 0),
		{UserID: "u4", DishID: "c", Action: "view"},
	}
	got := ScorePopularity(orders, 0)
	want := map[string]float64{"a": 1, "b": 2.0 / 3, "c": 1.0 / 3}
	for id, w := range want {
		if !near(got[id], w) {
			t.Errorf("%s = %v, want %v", id, got[id], w)
		}
	}

	top1 := ScorePopularity(orders, 1)
	if len(top1) != 1 || top1["a"] != 1 {
		t.Errorf("top1 = %v", top1)
	}
	if len(ScorePopularity(nil, 0)) != 0 {
		t.Error("no orders should give no scores")
	}
}

func TestFavoriteDishes(t *testing.T) {
	idx := catalog()
	orders := []core.OrderEvent{
		order("me", "c", 0), order("me", "a", 0), order("me", "a", 1),
		order("me", "b", 2), order("me", "gone", 0), order("me", "gone", 0), order("me", "gone", 0),
		order("other", "b", 0), order("other", "b", 0),
	}
	got := FavoriteDishes("me", orders, idx, 2)
	if len(got) != 2 {
		t.Fatalf("got %d favorites, want 2", len(got))
	}
	if got[0].Dish.ID != "a" || got[0].Count != 2 {
		t.Errorf("first = %s×%d, want a×2", got[0].Dish.ID, got[0].Count)
	}
	if got[1].Dish.ID != "c" || got[1].Count != 1 {
		t.Errorf("second = %s×%d, want c×1 (first encountered tie)", got[1].Dish.ID, got[1].Count)
	}
}

func TestColdStart_ReproducibleAndExcludes(t *testing.T) {
	idx := catalog()
	excluded := map[string]struct{}{"b": {}}

	first := NewColdStart(42).Pick(idx.Dishes(), excluded, 2)
	second := NewColdStart(42).Pick(idx.Dishes(), excluded, 2)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("got %d and %d dishes, want 2", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("same seed produced different picks: %s vs %s", first[i].ID, second[i].ID)
		}
		if first[i].ID == "b" {
			t.Error("excluded dish was picked")
		}
	}

	all := NewColdStart(1).Pick(idx.Dishes(), nil, 10)
	if len(all) != 4 {
		t.Errorf("k larger than catalog should return all, got %d", len(all))
	}
	if got := NewColdStart(1).Pick(nil, nil, 8); len(got) != 0 {
		t.Errorf("empty catalog should give nothing, got %d", len(got))
	}
}

func TestCatalogRecall(t *testing.T) {
	rctx := &core.RecommendContext{Catalog: catalog()}
	items, err := (&CatalogRecall{}).Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(items) != 4 || items[0].ID != "a" || items[0].Dish == nil {
		t.Fatalf("unexpected items: %d", len(items))
	}
	if lbl, ok := items[0].Labels["recall_source"]; !ok || lbl.Value != "catalog" {
		t.Error("recall_source label missing")
	}
}

type errScorer struct{}

func (errScorer) Name() string { return "broken" }

func (errScorer) Score(context.Context, *core.RecommendContext) (map[string]float64, error) {
	return nil, errors.New("boom")
}

func TestFanout(t *testing.T) {
	rctx := &core.RecommendContext{
		UserID:  "me",
		Now:     now,
		Catalog: catalog(),
		History: []core.OrderEvent{order("me", "a", 0)},
		PeerOrders: []core.OrderEvent{
			order("me", "a", 0), order("p1", "a", 0), order("p1", "c", 0),
		},
	}
	f := &Fanout{
		Scorers:       []Scorer{&Collaborative{}, &Content{}, &Popularity{}, errScorer{}},
		Timeout:       time.Second,
		MaxConcurrent: 2,
	}
	got, err := f.Run(context.Background(), rctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d strategies, want 3 (failed scorer skipped)", len(got))
	}
	if got["recall.collaborative"]["c"] != 1 {
		t.Errorf("collaborative = %v", got["recall.collaborative"])
	}
	if got["recall.content"]["a"] != 1 {
		t.Errorf("content = %v", got["recall.content"])
	}
	if got["recall.popularity"]["a"] != 1 {
		t.Errorf("popularity = %v", got["recall.popularity"])
	}
}
