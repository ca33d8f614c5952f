package recall

import (
	"context"
	"time"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/profile"
)

// 内容打分中类目与标签的权重
const (
	categoryShare = 0.4
	tagShare      = 0.6

	unknownCategory = "unknown"
)

// Preferences 是按时间衰减累加的标签/类目偏好。
type Preferences struct {
	tags       *counter[float64]
	categories *counter[float64]
}

// TagWeight 返回标签的累计权重。
func (p *Preferences) TagWeight(tag string) float64 { return p.tags.get(tag) }

// CategoryWeight 返回类目的累计权重。
func (p *Preferences) CategoryWeight(cat string) float64 { return p.categories.get(cat) }

// Empty 表示没有任何可用历史。
func (p *Preferences) Empty() bool { return p.tags.len() == 0 && p.categories.len() == 0 }

// BuildPreferences 从最近的下单记录累加偏好，权重 exp(-days/decayDays)。
// 目录中找不到的菜品跳过；decayDays <= 0 时使用 core.ContentDecayDays。
func BuildPreferences(history []core.OrderEvent, index core.VectorIndex, now time.Time, decayDays float64) *Preferences {
	if decayDays <= 0 {
		decayDays = core.ContentDecayDays
	}
	p := &Preferences{tags: newCounter[float64](), categories: newCounter[float64]()}
	if index == nil {
		return p
	}
	for _, ev := range history {
		if !ev.IsOrder() {
			continue
		}
		d, ok := index.Dish(ev.DishID)
		if !ok {
			continue
		}
		w := profile.DecayedWeight(now, ev.Timestamp, decayDays)
		cat := d.Category
		if cat == "" {
			cat = unknownCategory
		}
		p.categories.add(cat, w)
		for _, t := range d.Tags {
			p.tags.add(t, w)
		}
	}
	return p
}

// ScoreContent 计算每道菜的内容分：0.4×类目占比 + 0.6×标签占比之和，再除以最大值。
// 所有菜品都有分数（可能为 0）；全为 0 时保持 0。
func ScoreContent(prefs *Preferences, dishes []*core.Dish) map[string]float64 {
	out := make(map[string]float64, len(dishes))
	if len(dishes) == 0 {
		return out
	}
	totalTag := prefs.tags.total()
	if totalTag == 0 {
		totalTag = 1
	}
	totalCat := prefs.categories.total()
	if totalCat == 0 {
		totalCat = 1
	}

	raw := newCounter[float64]()
	for _, d := range dishes {
		var score float64
		if d.Category != "" {
			score += prefs.categories.get(d.Category) / totalCat * categoryShare
		}
		seen := make(map[string]struct{}, len(d.Tags))
		var tagScore float64
		for _, t := range d.Tags {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			tagScore += prefs.tags.get(t)
		}
		score += tagScore / totalTag * tagShare
		raw.add(d.ID, score)
	}

	var maxScore float64
	for _, k := range raw.keys {
		maxScore = max(maxScore, raw.get(k))
	}
	if maxScore == 0 {
		maxScore = 1
	}
	for _, k := range raw.keys {
		out[k] = raw.get(k) / maxScore
	}
	return out
}

// Content 是内容打分策略，使用 rctx.History 与 rctx.Catalog。
type Content struct {
	// DecayDays 衰减尺度，<= 0 时使用 core.ContentDecayDays
	DecayDays float64

	// Limit 参与计算的最近记录数，<= 0 时使用 core.HistoryLimit
	Limit int
}

func (c *Content) Name() string { return "recall.content" }

func (c *Content) Score(ctx context.Context, rctx *core.RecommendContext) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rctx.Catalog == nil {
		return map[string]float64{}, nil
	}
	limit := c.Limit
	if limit <= 0 {
		limit = core.HistoryLimit
	}
	history := rctx.History
	if len(history) > limit {
		history = history[:limit]
	}
	prefs := BuildPreferences(history, rctx.Catalog, rctx.Now, c.DecayDays)
	return ScoreContent(prefs, rctx.Catalog.Dishes()), nil
}
