package core

import "time"

// 推荐引擎的固定参数。请求级可覆盖的只有 K 与 alpha（见 RecommendContext.Params）。
const (
	// ProfileDecayDays 画像构建的衰减尺度（天）
	ProfileDecayDays = 7.0

	// ContentDecayDays 内容打分（类目偏好）的衰减尺度（天）
	ContentDecayDays = 14.0

	// HistoryLimit 构建画像时读取的最近下单条数
	HistoryLimit = 50

	// CandidateCap 进入 MMR 的候选数上限
	CandidateCap = 50

	// PeerScanLimit 协同过滤最多扫描的同伴数
	PeerScanLimit = 100

	// PeerTopK 协同过滤保留的最相似同伴数
	PeerTopK = 20

	// PopularityTopN 热度打分保留的菜品数
	PopularityTopN = 50

	// CooldownWindow 冷却窗口：窗口内下过单的菜品不再推荐
	CooldownWindow = 72 * time.Hour

	// DefaultTopK 默认推荐条数
	DefaultTopK = 8

	// DefaultAlpha MMR 相关性权重
	DefaultAlpha = 0.75

	// DefaultTimezone 服务所在时区
	DefaultTimezone = "Asia/Shanghai"
)

// Params 中可识别的键
const (
	ParamK     = "k"
	ParamAlpha = "alpha"
)
