package dsl

import (
	"testing"
	"time"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/utils"
)

func TestProgram_Eval(t *testing.T) {
	item := core.NewDishItem(&core.Dish{
		ID: "d1", Name: "水煮鱼", Category: "荤菜", Price: 32, Calories: 780, Tags: []string{"重辣", "海鲜"},
	}, core.Vector{core.DimSpicy: 0.8, core.DimOily: 0.8})
	item.Score = 0.6
	item.PutLabel("recall_source", utils.Label{Value: "catalog", Source: "recall"})
	rctx := &core.RecommendContext{
		UserID: "u1",
		Now:    time.Date(2024, 5, 20, 8, 30, 0, 0, time.UTC),
		Params: map[string]any{"budget": 20.0},
	}

	tests := []struct {
		expr string
		want bool
	}{
		{`dish.price > 30.0`, true},
		{`dish.price > 30`, true},
		{`dish.calories >= 800`, false},
		{`"重辣" in dish.tags && rctx.hour < 10`, true},
		{`dish.category == "素菜"`, false},
		{`item.score > 0.5 && label.recall_source == "catalog"`, true},
		{`dish.price > rctx.params.budget`, true},
		{`dish.popularity < 0.0`, true},
		{`item.features.spicy >= 0.8 && item.features.sweet == 0.0`, true},
		{`has(label.relevance)`, false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			got, err := p.Eval(item, rctx)
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	if _, err := Compile(`dish.price >`); err == nil {
		t.Error("syntax error should fail to compile")
	}
	p, err := Compile(`dish.price + 1.0`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Eval(core.NewDishItem(&core.Dish{ID: "x", Price: 1}, core.Vector{}), nil); err == nil {
		t.Error("non-boolean result should fail")
	}
}

func TestCompileAll(t *testing.T) {
	progs, err := CompileAll(`dish.price > 30.0`, "", `rctx.hour < 10`)
	if err != nil || len(progs) != 2 {
		t.Fatalf("CompileAll = %d programs, %v", len(progs), err)
	}
	if progs[1].String() != `rctx.hour < 10` {
		t.Errorf("order not kept: %s", progs[1])
	}
	if _, err := CompileAll(`dish.price > 30.0`, `dish.price >`); err == nil {
		t.Error("one bad rule should fail the set")
	}
}
