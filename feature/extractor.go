package feature

import (
	"math"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// 各维度取值
const (
	spicyHot      = 0.8
	spicyMild     = 0.3
	sweetMarked   = 0.7
	saltyCooked   = 0.5
	saltyMarked   = 0.8
	sourMarked    = 0.8
	oilyHeavy     = 0.8
	oilyLight     = 0.1
	oilyDefault   = 0.4
	freshMarked   = 0.7
	popularityDef = 0.5
)

// CatalogStats 是目录级的价格/热量边界，用于归一化。
type CatalogStats struct {
	MinPrice    float64
	MaxPrice    float64
	MinCalories int
	MaxCalories int
}

// StatsOf 计算目录边界；空目录返回零值。
func StatsOf(dishes []core.Dish) CatalogStats {
	if len(dishes) == 0 {
		return CatalogStats{}
	}
	s := CatalogStats{
		MinPrice:    dishes[0].Price,
		MaxPrice:    dishes[0].Price,
		MinCalories: dishes[0].Calories,
		MaxCalories: dishes[0].Calories,
	}
	for _, d := range dishes[1:] {
		s.MinPrice = math.Min(s.MinPrice, d.Price)
		s.MaxPrice = math.Max(s.MaxPrice, d.Price)
		s.MinCalories = min(s.MinCalories, d.Calories)
		s.MaxCalories = max(s.MaxCalories, d.Calories)
	}
	return s
}

// PriceLevel 将价格映射到 [0,1]；max == min 时为 0。
func (s CatalogStats) PriceLevel(price float64) float64 {
	if s.MaxPrice <= s.MinPrice {
		return 0
	}
	return clamp01((price - s.MinPrice) / (s.MaxPrice - s.MinPrice))
}

// CalorieLevel 将热量映射到 [0,1]；max == min 时为 0。
func (s CatalogStats) CalorieLevel(calories int) float64 {
	if s.MaxCalories <= s.MinCalories {
		return 0
	}
	return clamp01(float64(calories-s.MinCalories) / float64(s.MaxCalories-s.MinCalories))
}

// Extractor 把菜品转换为 9 维特征向量，纯函数，无状态。
type Extractor struct {
	lex Lexicon
}

// NewExtractor 创建特征抽取器；空词表回退为 DefaultLexicon。
func NewExtractor(lex Lexicon) *Extractor {
	if lex.IsZero() {
		lex = DefaultLexicon()
	}
	return &Extractor{lex: lex}
}

// Lexicon 返回当前词表。
func (e *Extractor) Lexicon() Lexicon {
	return e.lex
}

// Extract 计算单个菜品的特征向量，各维度均在 [0,1]。
func (e *Extractor) Extract(d *core.Dish, stats CatalogStats) core.Vector {
	var v core.Vector
	if d == nil {
		return v
	}
	lex := e.lex
	tags := make(map[string]struct{}, len(d.Tags))
	for _, t := range d.Tags {
		tags[t] = struct{}{}
	}

	switch {
	case anyTag(tags, lex.HotSpicyTags):
		v[core.DimSpicy] = spicyHot
	case anyTag(tags, lex.MildSpicyTags):
		v[core.DimSpicy] = spicyMild
	}

	if anyTag(tags, lex.SweetTags) || anySubstring(d.Name, lex.SugarMarkers) {
		v[core.DimSweet] = sweetMarked
	}

	if anyEqual(d.Category, lex.CookedCategories) {
		v[core.DimSalty] = saltyCooked
	}
	if anyTag(tags, lex.SaltyTags) {
		v[core.DimSalty] = saltyMarked
	}

	if anyTag(tags, lex.SourTags) || anySubstring(d.Name, lex.VinegarMarkers) {
		v[core.DimSour] = sourMarked
	}

	switch {
	case anyTag(tags, lex.FriedTags) || anyEqual(d.Category, lex.MeatCategories):
		v[core.DimOily] = oilyHeavy
	case anyEqual(d.Category, lex.LightCategories):
		v[core.DimOily] = oilyLight
	default:
		v[core.DimOily] = oilyDefault
	}

	if anyTag(tags, lex.SeafoodTags) || anySubstring(d.Category, lex.SoupMarkers) {
		v[core.DimFresh] = freshMarked
	}

	v[core.DimPriceLevel] = stats.PriceLevel(d.Price)
	v[core.DimCalorieLevel] = stats.CalorieLevel(d.Calories)

	v[core.DimPopularity] = popularityDef
	if d.Popularity != nil {
		v[core.DimPopularity] = clamp01(*d.Popularity)
	}
	return v
}

var defaultExtractor = NewExtractor(DefaultLexicon())

// Extract 使用默认词表计算特征向量。
func Extract(d *core.Dish, stats CatalogStats) core.Vector {
	return defaultExtractor.Extract(d, stats)
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
