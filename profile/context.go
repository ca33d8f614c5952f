package profile

import "github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"

// 时段调权系数
const (
	breakfastSpicy = 0.5
	breakfastOily  = 0.3
	breakfastSweet = 1.2
	dinnerCalorie  = 0.8
)

// Window 表示 [Start, End) 的小时区间。
type Window struct {
	Start, End int
}

func (w Window) contains(hour int) bool {
	return hour >= w.Start && hour < w.End
}

var (
	Breakfast = Window{Start: 6, End: 10}
	Dinner    = Window{Start: 17, End: 21}
)

// Adjust 返回按当地小时调权后的画像副本，原画像不变。
//
//   - [6,10)：spicy×0.5，oily×0.3，sweet×1.2
//   - [17,21)：calorie_level×0.8
func Adjust(p *core.UserProfile, hour int) *core.UserProfile {
	if p == nil {
		return nil
	}
	cp := p.Clone()
	cp.Vector = AdjustVector(p.Vector, hour)
	return cp
}

// AdjustVector 是 Adjust 的向量版本。
func AdjustVector(v core.Vector, hour int) core.Vector {
	switch {
	case Breakfast.contains(hour):
		v[core.DimSpicy] *= breakfastSpicy
		v[core.DimOily] *= breakfastOily
		v[core.DimSweet] *= breakfastSweet
	case Dinner.contains(hour):
		v[core.DimCalorieLevel] *= dinnerCalorie
	}
	return v
}
