package core

import "time"

// RecommendContext 承载一次请求的用户、时间与输入快照，贯穿整个 Pipeline 透传。
// 所有字段在进入 Pipeline 前由调用方一次性填好，Node 只读不写。
type RecommendContext struct {
	UserID string

	// Now 是本次请求的“当前时间”，衰减与冷却都以它为准
	Now time.Time

	// Location 是服务所在时区，用于时段调权；nil 时按 UTC
	Location *time.Location

	// Catalog 是本次请求使用的只读特征索引
	Catalog VectorIndex

	// History 是目标用户最近的下单记录（新→旧）
	History []OrderEvent

	// PeerOrders 是全量下单日志，供协同过滤与热度使用
	PeerOrders []OrderEvent

	// User 是经过时段调权的查询画像；nil 表示冷启动
	User *UserProfile

	// Excluded 是本次请求需要剔除的菜品 ID（冷却期等）
	Excluded map[string]struct{}

	// Params 请求级参数：k、alpha 等，覆盖 Node 的默认配置
	Params map[string]any
}

// LocalHour 返回服务时区下的小时数。
func (rctx *RecommendContext) LocalHour() int {
	loc := rctx.Location
	if loc == nil {
		loc = time.UTC
	}
	return rctx.Now.In(loc).Hour()
}

// IsExcluded 判断菜品是否在本次请求的剔除集合中。
func (rctx *RecommendContext) IsExcluded(id string) bool {
	if rctx == nil || rctx.Excluded == nil {
		return false
	}
	_, ok := rctx.Excluded[id]
	return ok
}
