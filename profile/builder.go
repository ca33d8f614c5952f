// Package profile 从下单历史构建口味画像，并按时段做请求级调权。
package profile

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// Builder 构建时间衰减画像。
type Builder struct {
	// DecayDays 衰减尺度，<= 0 时使用 core.ProfileDecayDays
	DecayDays float64

	// Limit 最多参与计算的记录数，<= 0 时使用 core.HistoryLimit
	Limit int
}

// Build 使用默认参数构建画像，见 Builder.Build。
func Build(userID string, events []core.OrderEvent, index core.VectorIndex, now time.Time) (*core.UserProfile, bool) {
	return Builder{}.Build(userID, events, index, now)
}

// Build 对最近的下单记录（新→旧）做衰减加权平均。
//
// 无法在索引中找到的菜品直接跳过；没有可用记录时返回 (nil, false)，调用方走冷启动。
func (b Builder) Build(userID string, events []core.OrderEvent, index core.VectorIndex, now time.Time) (*core.UserProfile, bool) {
	if len(events) == 0 || index == nil {
		return nil, false
	}
	decay := b.DecayDays
	if decay <= 0 {
		decay = core.ProfileDecayDays
	}
	limit := b.Limit
	if limit <= 0 {
		limit = core.HistoryLimit
	}
	if len(events) > limit {
		events = events[:limit]
	}

	var (
		sum     core.Vector
		total   float64
		used    int
		skipped int
	)
	for _, ev := range events {
		if !ev.IsOrder() {
			continue
		}
		vec, ok := index.Vector(ev.DishID)
		if !ok {
			skipped++
			continue
		}
		w := DecayedWeight(now, ev.Timestamp, decay)
		for i := range sum {
			sum[i] += vec[i] * w
		}
		total += w
		used++
	}
	if skipped > 0 {
		log.Debug().Str("user_id", userID).Int("skipped", skipped).Msg("profile: unknown dishes in history")
	}
	if total == 0 {
		return nil, false
	}

	p := &core.UserProfile{
		UserID:      userID,
		Events:      used,
		TotalWeight: total,
		BuiltAt:     now,
	}
	for i := range sum {
		p.Vector[i] = sum[i] / total
	}
	return p, true
}
