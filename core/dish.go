package core

import "time"

// ActionOrder 是唯一参与画像与协同过滤的行为类型。
const ActionOrder = "order"

// Dish 是菜单中的一个菜品，由目录方持有，一次请求内只读。
type Dish struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Price    float64  `json:"price"`
	Calories int      `json:"calories"`
	Tags     []string `json:"tags"`

	// Popularity 是可选的先验热度（0-1）；nil 表示未知
	Popularity *float64 `json:"popularity_score,omitempty"`
}

// HasTag 判断菜品是否带有某个标签。
func (d *Dish) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// OrderEvent 是一条只追加的行为日志。
type OrderEvent struct {
	UserID    string    `json:"user_id"`
	DishID    string    `json:"dish_id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
}

// IsOrder 判断是否为下单行为（空 Action 视为下单，兼容只记录下单的数据源）。
func (e OrderEvent) IsOrder() bool {
	return e.Action == "" || e.Action == ActionOrder
}
