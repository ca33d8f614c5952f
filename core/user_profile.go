package core

import "time"

// UserProfile 是口味画像：用户历史菜品向量的时间衰减加权平均。
//
// 它不持久化，每次请求从最近的下单记录重新计算；
// 时段调权只作用于 Clone 出来的副本。
type UserProfile struct {
	UserID string

	// Vector 与菜品特征向量同维同序
	Vector Vector

	// Events 是实际参与加权的记录数（未知菜品不计）
	Events int

	// TotalWeight 是衰减权重之和
	TotalWeight float64

	// BuiltAt 是计算画像时使用的“当前时间”
	BuiltAt time.Time
}

// Clone 返回一份独立副本，用于请求级调权。
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
