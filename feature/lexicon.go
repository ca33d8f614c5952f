package feature

import "strings"

// Lexicon 定义口味维度的标记词表。
//
// 标签（Tags）按整词匹配；名称/类目中的标记按子串匹配。
// 默认词表见 DefaultLexicon，可通过配置整体替换。
type Lexicon struct {
	HotSpicyTags     []string `koanf:"hot_spicy_tags" yaml:"hot_spicy_tags"`
	MildSpicyTags    []string `koanf:"mild_spicy_tags" yaml:"mild_spicy_tags"`
	SweetTags        []string `koanf:"sweet_tags" yaml:"sweet_tags"`
	SugarMarkers     []string `koanf:"sugar_markers" yaml:"sugar_markers"` // 名称子串
	SaltyTags        []string `koanf:"salty_tags" yaml:"salty_tags"`
	CookedCategories []string `koanf:"cooked_categories" yaml:"cooked_categories"`
	SourTags         []string `koanf:"sour_tags" yaml:"sour_tags"`
	VinegarMarkers   []string `koanf:"vinegar_markers" yaml:"vinegar_markers"` // 名称子串
	FriedTags        []string `koanf:"fried_tags" yaml:"fried_tags"`
	MeatCategories   []string `koanf:"meat_categories" yaml:"meat_categories"`
	LightCategories  []string `koanf:"light_categories" yaml:"light_categories"`
	SeafoodTags      []string `koanf:"seafood_tags" yaml:"seafood_tags"`
	SoupMarkers      []string `koanf:"soup_markers" yaml:"soup_markers"` // 类目子串
}

// DefaultLexicon 返回食堂菜品使用的默认词表。
func DefaultLexicon() Lexicon {
	return Lexicon{
		HotSpicyTags:     []string{"重辣", "辣"},
		MildSpicyTags:    []string{"微辣"},
		SweetTags:        []string{"甜"},
		SugarMarkers:     []string{"糖"},
		SaltyTags:        []string{"咸"},
		CookedCategories: []string{"热菜", "荤菜"},
		SourTags:         []string{"酸"},
		VinegarMarkers:   []string{"醋"},
		FriedTags:        []string{"油炸"},
		MeatCategories:   []string{"荤菜"},
		LightCategories:  []string{"轻食"},
		SeafoodTags:      []string{"海鲜"},
		SoupMarkers:      []string{"汤"},
	}
}

// IsZero 判断词表是否完全为空（用于配置缺省回退）。
func (l Lexicon) IsZero() bool {
	for _, set := range l.sets() {
		if len(set) > 0 {
			return false
		}
	}
	return true
}

func (l Lexicon) sets() [][]string {
	return [][]string{
		l.HotSpicyTags, l.MildSpicyTags, l.SweetTags, l.SugarMarkers,
		l.SaltyTags, l.CookedCategories, l.SourTags, l.VinegarMarkers,
		l.FriedTags, l.MeatCategories, l.LightCategories, l.SeafoodTags,
		l.SoupMarkers,
	}
}

func anyTag(tags map[string]struct{}, markers []string) bool {
	for _, m := range markers {
		if _, ok := tags[m]; ok {
			return true
		}
	}
	return false
}

func anyEqual(s string, markers []string) bool {
	for _, m := range markers {
		if s == m {
			return true
		}
	}
	return false
}

func anySubstring(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}
