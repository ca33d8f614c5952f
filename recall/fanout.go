package recall

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// Fanout 并发执行多个打分策略，按策略名分别返回结果，不做融合。
// 支持超时与限流；单个策略失败时记录日志并跳过，不影响其他策略。
type Fanout struct {
	Scorers       []Scorer
	Timeout       time.Duration // 每个策略的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
}

// Run 返回 strategy name -> (dish id -> score)。
func (f *Fanout) Run(ctx context.Context, rctx *core.RecommendContext) (map[string]map[string]float64, error) {
	out := make(map[string]map[string]float64, len(f.Scorers))
	if len(f.Scorers) == 0 {
		return out, nil
	}

	var (
		mu     sync.Mutex
		eg, gc = errgroup.WithContext(ctx)
	)
	if f.MaxConcurrent > 0 {
		eg.SetLimit(f.MaxConcurrent)
	}

	for _, scorer := range f.Scorers {
		s := scorer
		eg.Go(func() error {
			sctx := gc
			if f.Timeout > 0 {
				var cancel context.CancelFunc
				sctx, cancel = context.WithTimeout(gc, f.Timeout)
				defer cancel()
			}

			scores, err := s.Score(sctx, rctx)
			if err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("scorer", s.Name()).Msg("fanout: scorer failed")
				return nil
			}

			mu.Lock()
			out[s.Name()] = scores
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
