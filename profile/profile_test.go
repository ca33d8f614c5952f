package profile

import (
	"math"
	"testing"
	"time"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/feature"
)

var now = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func daysAgo(d float64) time.Time {
	return now.Add(-time.Duration(d * float64(24*time.Hour)))
}

func TestWeight(t *testing.T) {
	tests := []struct {
		days int
		want float64
	}{
		{0, 1.0},
		{7, 0.36787944117144233},
		{14, 0.1353352832366127},
	}
	for _, tt := range tests {
		if got := Weight(tt.days, core.ProfileDecayDays); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Weight(%d) = %v, want %v", tt.days, got, tt.want)
		}
	}
}

func TestDaysSince(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want int
	}{
		{"same instant", now, 0},
		{"23 hours", now.Add(-23 * time.Hour), 0},
		{"36 hours floors", now.Add(-36 * time.Hour), 1},
		{"future clamps", now.Add(48 * time.Hour), 0},
		{"other zone", daysAgo(7).In(time.FixedZone("CST", 8*3600)), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysSince(now, tt.ts); got != tt.want {
				t.Errorf("DaysSince = %d, want %d", got, tt.want)
			}
		})
	}
}

func testIndex() *feature.Index {
	dishes := []core.Dish{{ID: "x"}, {ID: "y"}}
	return feature.NewIndexFromVectors(dishes, map[string]core.Vector{
		"x": {1, 0, 0, 0, 0, 0, 0, 0, 0},
		"y": {0, 1, 0, 0, 0, 0, 0, 0, 0},
	})
}

func TestBuild_NoProfile(t *testing.T) {
	idx := testIndex()
	if _, ok := Build("u", nil, idx, now); ok {
		t.Error("empty history should yield no profile")
	}
	unknown := []core.OrderEvent{{UserID: "u", DishID: "gone", Timestamp: now}}
	if _, ok := Build("u", unknown, idx, now); ok {
		t.Error("history of unknown dishes should yield no profile")
	}
}

func TestBuild_SingleOldEvent(t *testing.T) {
	idx := testIndex()
	events := []core.OrderEvent{{UserID: "u", DishID: "x", Timestamp: daysAgo(20), Action: core.ActionOrder}}
	p, ok := Build("u", events, idx, now)
	if !ok {
		t.Fatal("expected a profile")
	}
	want, _ := idx.Vector("x")
	for i := range want {
		if math.Abs(p.Vector[i]-want[i]) > 1e-12 {
			t.Errorf("dim %d = %v, want %v", i, p.Vector[i], want[i])
		}
	}
	if p.Events != 1 {
		t.Errorf("Events = %d, want 1", p.Events)
	}
}

func TestBuild_DecayWeighting(t *testing.T) {
	idx := testIndex()
	events := []core.OrderEvent{
		{DishID: "x", Timestamp: daysAgo(0)},
		{DishID: "unknown", Timestamp: daysAgo(1)},
		{DishID: "y", Timestamp: daysAgo(7)},
	}
	p, ok := Build("u", events, idx, now)
	if !ok {
		t.Fatal("expected a profile")
	}
	w := math.Exp(-1)
	if math.Abs(p.Vector[0]-1/(1+w)) > 1e-12 || math.Abs(p.Vector[1]-w/(1+w)) > 1e-12 {
		t.Errorf("profile = %v", p.Vector)
	}
	if p.Events != 2 {
		t.Errorf("Events = %d, want 2", p.Events)
	}
}

func TestBuilder_Limit(t *testing.T) {
	idx := testIndex()
	events := []core.OrderEvent{
		{DishID: "x", Timestamp: daysAgo(0)},
		{DishID: "y", Timestamp: daysAgo(0)},
	}
	p, ok := Builder{Limit: 1}.Build("u", events, idx, now)
	if !ok {
		t.Fatal("expected a profile")
	}
	if p.Vector[1] != 0 {
		t.Errorf("events beyond the limit must be ignored, got %v", p.Vector)
	}
}

func TestAdjust(t *testing.T) {
	base := &core.UserProfile{Vector: core.Vector{1, 1, 1, 1, 1, 1, 1, 1, 1}}
	tests := []struct {
		hour int
		want core.Vector
	}{
		{6, core.Vector{0.5, 1.2, 1, 1, 0.3, 1, 1, 1, 1}},
		{9, core.Vector{0.5, 1.2, 1, 1, 0.3, 1, 1, 1, 1}},
		{10, core.Vector{1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{17, core.Vector{1, 1, 1, 1, 1, 1, 1, 0.8, 1}},
		{20, core.Vector{1, 1, 1, 1, 1, 1, 1, 0.8, 1}},
		{21, core.Vector{1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{3, core.Vector{1, 1, 1, 1, 1, 1, 1, 1, 1}},
	}
	for _, tt := range tests {
		got := Adjust(base, tt.hour)
		if got.Vector != tt.want {
			t.Errorf("hour %d: got %v, want %v", tt.hour, got.Vector, tt.want)
		}
	}
	if base.Vector != (core.Vector{1, 1, 1, 1, 1, 1, 1, 1, 1}) {
		t.Error("Adjust must not modify the source profile")
	}
	if Adjust(nil, 8) != nil {
		t.Error("Adjust(nil) should be nil")
	}
}
