// Package engine 把特征索引、画像、冷却、Pipeline 与各打分策略组装成推荐服务。
//
// Engine 自身不持有可变的请求状态：目录与日志每次请求由 Provider 取一次，
// 特征索引通过 feature.IndexCache 在请求间只读共享。
package engine

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/config/builders"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/feature"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/filter"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pipeline"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/logging"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/metrics"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/profile"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/recall"
)

// Engine 是混合推荐引擎。
type Engine struct {
	catalog core.CatalogProvider
	history core.HistoryProvider

	lexicon  feature.Lexicon
	cache    *feature.IndexCache
	builder  profile.Builder
	pipeline *pipeline.Pipeline
	filters  []filter.Filter

	coldStart     recall.Source
	collaborative *recall.Collaborative
	content       *recall.Content
	popularity    *recall.Popularity
	fanout        *recall.Fanout

	cooldown     time.Duration
	location     *time.Location
	clock        func() time.Time
	defaultK     int
	defaultAlpha float64
	metrics      *metrics.Metrics
}

// New 创建 Engine。未指定 Pipeline 时使用内置配置。
func New(catalog core.CatalogProvider, history core.HistoryProvider, opts ...Option) (*Engine, error) {
	if catalog == nil || history == nil {
		return nil, fmt.Errorf("engine: catalog and history providers are required")
	}
	loc, err := time.LoadLocation(core.DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	e := &Engine{
		catalog:       catalog,
		history:       history,
		lexicon:       feature.DefaultLexicon(),
		collaborative: &recall.Collaborative{},
		content:       &recall.Content{},
		popularity:    &recall.Popularity{},
		fanout:        &recall.Fanout{Timeout: 2 * time.Second},
		cooldown:      core.CooldownWindow,
		location:      loc,
		clock:         time.Now,
		defaultK:      core.DefaultTopK,
		defaultAlpha:  core.DefaultAlpha,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.coldStart == nil {
		e.coldStart = recall.NewColdStart(uint64(time.Now().UnixNano()))
	}
	e.cache = feature.NewIndexCache(feature.NewExtractor(e.lexicon), func(idx *feature.Index) {
		e.metrics.IncIndexRebuild()
		log.Debug().Uint64("version", idx.Version()).Int("dishes", idx.Len()).Msg("engine: feature index rebuilt")
	})
	if e.pipeline == nil {
		p, err := builders.Build(nil)
		if err != nil {
			return nil, fmt.Errorf("engine: default pipeline: %w", err)
		}
		e.pipeline = p
	}
	if len(e.filters) > 0 {
		e.pipeline = withFilterNode(e.pipeline, &filter.FilterNode{Filters: e.filters})
	}
	e.fanout.Scorers = []recall.Scorer{e.collaborative, e.content, e.popularity}
	return e, nil
}

// withFilterNode 返回在第一个召回 Node 之后插入 node 的新 Pipeline。
func withFilterNode(p *pipeline.Pipeline, node pipeline.Node) *pipeline.Pipeline {
	nodes := make([]pipeline.Node, 0, len(p.Nodes)+1)
	inserted := false
	for _, n := range p.Nodes {
		nodes = append(nodes, n)
		if !inserted && n.Kind() == pipeline.KindRecall {
			nodes = append(nodes, node)
			inserted = true
		}
	}
	if !inserted {
		nodes = append([]pipeline.Node{node}, nodes...)
	}
	return &pipeline.Pipeline{Nodes: nodes}
}

// Recommend 以 Engine 时钟的当前时间推荐。
func (e *Engine) Recommend(ctx context.Context, req Request) ([]core.Dish, error) {
	return e.RecommendAt(ctx, req, e.clock())
}

// RecommendAt 返回至多 K 道菜，按选择顺序排列。
//
// 有画像时走 Pipeline（VSM 相关度 → Top50 → MMR），否则从未冷却的菜品中随机挑选。
// 目录为空时返回空结果，不报错。
func (e *Engine) RecommendAt(ctx context.Context, req Request, now time.Time) ([]core.Dish, error) {
	items, _, err := e.recommend(ctx, req, now)
	if err != nil {
		return nil, err
	}
	out := make([]core.Dish, 0, len(items))
	for _, it := range items {
		out = append(out, *it.Dish)
	}
	return out, nil
}

// Recommendation 是一道推荐菜及其链路解释。
type Recommendation struct {
	Dish      core.Dish         `json:"dish"`
	Path      string            `json:"path"`      // personalized | cold_start | empty_catalog
	Relevance float64           `json:"relevance"` // 冷启动时为 0
	Reasons   map[string]string `json:"reasons,omitempty"`
}

// ExplainAt 与 RecommendAt 结果相同，另附各阶段写入的标签（召回来源、相关度、MMR 名次等）。
func (e *Engine) ExplainAt(ctx context.Context, req Request, now time.Time) ([]Recommendation, error) {
	items, path, err := e.recommend(ctx, req, now)
	if err != nil {
		return nil, err
	}
	out := make([]Recommendation, 0, len(items))
	for _, it := range items {
		out = append(out, Recommendation{
			Dish:      *it.Dish,
			Path:      path,
			Relevance: it.Score,
			Reasons:   it.Labels.Explain(),
		})
	}
	return out, nil
}

func (e *Engine) recommend(ctx context.Context, req Request, now time.Time) ([]*core.Item, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}
	if logging.RequestID(ctx) == "" {
		ctx, _ = logging.WithRequestID(ctx, "")
	}
	start := time.Now()
	k, alpha := req.resolve(e.defaultK, e.defaultAlpha)

	index, err := e.index(ctx)
	if err != nil {
		return nil, "", err
	}
	if index.Len() == 0 {
		log.Ctx(ctx).Debug().Str("user_id", req.UserID).Msg("engine: empty catalog")
		e.metrics.ObserveRecommend(metrics.PathEmpty, time.Since(start))
		return nil, metrics.PathEmpty, nil
	}

	history, err := e.history.RecentOrders(ctx, req.UserID, core.HistoryLimit)
	if err != nil {
		return nil, "", fmt.Errorf("recent orders of %s: %w", req.UserID, err)
	}
	excluded := filter.CooldownIDs(history, now, e.cooldown)

	rctx := &core.RecommendContext{
		UserID:   req.UserID,
		Now:      now,
		Location: e.location,
		Catalog:  index,
		History:  history,
		Excluded: excluded,
		Params:   map[string]any{core.ParamK: k, core.ParamAlpha: alpha},
	}

	prof, ok := e.builder.Build(req.UserID, history, index, now)
	if !ok {
		log.Ctx(ctx).Info().Str("user_id", req.UserID).Int("history", len(history)).
			Msg("engine: no profile, falling back to cold start")
		items, err := e.coldStartPick(ctx, rctx)
		if err != nil {
			return nil, "", err
		}
		e.metrics.ObserveRecommend(metrics.PathColdStart, time.Since(start))
		return admissible(ctx, rctx, items, k), metrics.PathColdStart, nil
	}

	rctx.User = profile.Adjust(prof, rctx.LocalHour())
	items, err := e.pipeline.Run(ctx, rctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("recommend pipeline: %w", err)
	}

	out := admissible(ctx, rctx, items, k)
	e.metrics.ObserveCandidates(min(candidateCount(index, rctx), core.CandidateCap))
	e.metrics.ObserveRecommend(metrics.PathPersonalized, time.Since(start))
	log.Ctx(ctx).Debug().
		Str("user_id", req.UserID).
		Int("catalog", index.Len()).
		Int("excluded", len(excluded)).
		Int("returned", len(out)).
		Dur("took", time.Since(start)).
		Msg("engine: recommend done")
	return out, metrics.PathPersonalized, nil
}

func candidateCount(index core.VectorIndex, rctx *core.RecommendContext) int {
	n := 0
	for _, d := range index.Dishes() {
		if !rctx.IsExcluded(d.ID) {
			n++
		}
	}
	return n
}

// admissible 丢弃无菜品或仍在剔除集合中的候选，并截断到 k 个。
// Pipeline 中缺少冷却过滤或 MMR 节点时，结果同样满足这两条约束。
func admissible(ctx context.Context, rctx *core.RecommendContext, items []*core.Item, k int) []*core.Item {
	out := make([]*core.Item, 0, min(len(items), k))
	dropped := 0
	for _, it := range items {
		if len(out) == k {
			break
		}
		if it == nil || it.Dish == nil || rctx.IsExcluded(it.Dish.ID) {
			dropped++
			continue
		}
		out = append(out, it)
	}
	if len(out) < len(items) {
		log.Ctx(ctx).Warn().
			Int("candidates", len(items)).
			Int("excluded", dropped).
			Int("returned", len(out)).
			Msg("engine: pipeline output trimmed")
	}
	return out
}

// coldStartPick 把追加过滤器命中的菜品并入剔除集合，再交给冷启动召回。
func (e *Engine) coldStartPick(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	crctx := *rctx
	if len(e.filters) > 0 {
		items := make([]*core.Item, 0, rctx.Catalog.Len())
		for _, d := range rctx.Catalog.Dishes() {
			if !rctx.IsExcluded(d.ID) {
				items = append(items, core.NewDishItem(d, core.Vector{}))
			}
		}
		node := &filter.FilterNode{Filters: e.filters}
		kept, err := node.Process(ctx, rctx, items)
		if err != nil {
			return nil, fmt.Errorf("cold start filter: %w", err)
		}
		keep := make(map[string]struct{}, len(kept))
		for _, it := range kept {
			keep[it.Dish.ID] = struct{}{}
		}
		excluded := maps.Clone(rctx.Excluded)
		if excluded == nil {
			excluded = make(map[string]struct{})
		}
		for _, it := range items {
			if _, ok := keep[it.Dish.ID]; !ok {
				excluded[it.Dish.ID] = struct{}{}
			}
		}
		crctx.Excluded = excluded
	}
	items, err := e.coldStart.Recall(ctx, &crctx)
	if err != nil {
		return nil, fmt.Errorf("cold start recall: %w", err)
	}
	return items, nil
}

// index 读取目录并返回对应的特征索引。
func (e *Engine) index(ctx context.Context) (*feature.Index, error) {
	dishes, err := e.catalog.ListDishes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	return e.cache.Get(dishes), nil
}

// CollaborativeScore 返回同伴协同过滤分数（dish id -> [0,1]）。
func (e *Engine) CollaborativeScore(ctx context.Context, userID string) (map[string]float64, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	orders, err := e.history.AllPeerOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("all peer orders: %w", err)
	}
	return e.collaborative.Score(ctx, &core.RecommendContext{UserID: userID, PeerOrders: orders})
}

// ContentScore 以 Engine 时钟的当前时间计算内容分数。
func (e *Engine) ContentScore(ctx context.Context, userID string) (map[string]float64, error) {
	return e.ContentScoreAt(ctx, userID, e.clock())
}

// ContentScoreAt 返回基于类目/标签偏好的内容分数（dish id -> [0,1]）。
func (e *Engine) ContentScoreAt(ctx context.Context, userID string, now time.Time) (map[string]float64, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	index, err := e.index(ctx)
	if err != nil {
		return nil, err
	}
	history, err := e.history.RecentOrders(ctx, userID, core.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("recent orders of %s: %w", userID, err)
	}
	return e.content.Score(ctx, &core.RecommendContext{UserID: userID, Now: now, Catalog: index, History: history})
}

// PopularityScore 返回全量下单计数前 50 的热度分数。
func (e *Engine) PopularityScore(ctx context.Context) (map[string]float64, error) {
	orders, err := e.history.AllPeerOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("all peer orders: %w", err)
	}
	return e.popularity.Score(ctx, &core.RecommendContext{PeerOrders: orders})
}

// StrategyScores 并发计算协同过滤、内容、热度三种分数，按策略名分别返回。
func (e *Engine) StrategyScores(ctx context.Context, userID string) (map[string]map[string]float64, error) {
	return e.StrategyScoresAt(ctx, userID, e.clock())
}

// StrategyScoresAt 以给定时间计算各策略分数；内容分数的衰减以 now 为准。
func (e *Engine) StrategyScoresAt(ctx context.Context, userID string, now time.Time) (map[string]map[string]float64, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	index, err := e.index(ctx)
	if err != nil {
		return nil, err
	}
	history, err := e.history.RecentOrders(ctx, userID, core.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("recent orders of %s: %w", userID, err)
	}
	orders, err := e.history.AllPeerOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("all peer orders: %w", err)
	}
	return e.fanout.Run(ctx, &core.RecommendContext{
		UserID:     userID,
		Now:        now,
		Location:   e.location,
		Catalog:    index,
		History:    history,
		PeerOrders: orders,
	})
}

// FavoriteDishes 返回用户点得最多的 n 道菜及次数。
func (e *Engine) FavoriteDishes(ctx context.Context, userID string, n int) ([]recall.Favorite, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	index, err := e.index(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := e.history.RecentOrders(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("orders of %s: %w", userID, err)
	}
	return recall.FavoriteDishes(userID, orders, index, n), nil
}
