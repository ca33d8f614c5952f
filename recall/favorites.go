package recall

import "github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"

// Favorite 是用户最常点的菜及次数。
type Favorite struct {
	Dish  *core.Dish `json:"dish"`
	Count int        `json:"order_count"`
}

// FavoriteDishes 返回用户点得最多的前 n 道菜；次数相同按首次出现顺序。
// 目录中已不存在的菜品不计入。
func FavoriteDishes(userID string, orders []core.OrderEvent, index core.VectorIndex, n int) []Favorite {
	if n <= 0 || index == nil {
		return nil
	}
	counts := newCounter[int]()
	for _, ev := range orders {
		if !ev.IsOrder() || ev.UserID != userID {
			continue
		}
		if _, ok := index.Dish(ev.DishID); ok {
			counts.add(ev.DishID, 1)
		}
	}
	ranked := counts.ranked()
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]Favorite, 0, len(ranked))
	for _, e := range ranked {
		d, _ := index.Dish(e.key)
		out = append(out, Favorite{Dish: d, Count: e.val})
	}
	return out
}
