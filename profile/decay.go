package profile

import (
	"math"
	"time"
)

// DaysSince 返回 ts 到 now 之间的整天数（向下取整）；未来时间按 0 天处理。
func DaysSince(now, ts time.Time) int {
	d := now.Sub(ts)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// Weight 是时间衰减权重 exp(-days/decayDays)，恒为正。
func Weight(days int, decayDays float64) float64 {
	if decayDays <= 0 {
		return 1
	}
	return math.Exp(-float64(days) / decayDays)
}

// DecayedWeight 组合 DaysSince 与 Weight。
func DecayedWeight(now, ts time.Time, decayDays float64) float64 {
	return Weight(DaysSince(now, ts), decayDays)
}
