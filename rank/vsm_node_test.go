package rank

import (
	"context"
	"testing"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

func TestVSMNode(t *testing.T) {
	mk := func(id string, v core.Vector) *core.Item {
		return core.NewDishItem(&core.Dish{ID: id}, v)
	}
	items := []*core.Item{
		mk("a", core.Vector{0, 1}),
		mk("b", core.Vector{1, 0}),
		mk("c", core.Vector{0, 2}),
		mk("d", core.Vector{1, 1}),
		nil,
	}
	rctx := &core.RecommendContext{User: &core.UserProfile{Vector: core.Vector{1, 0}}}
	out, err := (&VSMNode{}).Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := []string{"b", "d", "a", "c"}
	if len(out) != len(want) {
		t.Fatalf("got %d items, want %d", len(out), len(want))
	}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("out[%d] = %s, want %s", i, out[i].ID, id)
		}
	}
	if out[0].Score != 1 || out[3].Score != 0 {
		t.Errorf("scores = %v, %v", out[0].Score, out[3].Score)
	}
}

func TestVSMNode_NoProfileScoresZero(t *testing.T) {
	items := []*core.Item{core.NewDishItem(&core.Dish{ID: "a"}, core.Vector{1})}
	out, err := (&VSMNode{}).Process(context.Background(), &core.RecommendContext{}, items)
	if err != nil || len(out) != 1 || out[0].Score != 0 {
		t.Fatalf("out=%v err=%v", out, err)
	}
}
