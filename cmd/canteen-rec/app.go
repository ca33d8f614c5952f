package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/config"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/config/builders"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/engine"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/filter"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pipeline"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/logging"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/metrics"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/store"
)

// app 持有一次命令执行所需的全部依赖。
type app struct {
	settings  *config.Settings
	repo      store.Repository
	kv        *store.KVRepository  // 仅 memory/redis 后端
	blacklist *filter.StoreAdapter // 仅 KV 后端可用
	engine    *engine.Engine
}

// Fixture 是 import 命令读取的 JSON 文件格式。
type Fixture struct {
	Dishes []core.Dish       `json:"dishes"`
	Orders []core.OrderEvent `json:"orders"`
}

func newApp(ctx context.Context, opts *globalOptions) (*app, error) {
	s, err := config.LoadSettings(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		s.Log.Level = opts.logLevel
	}
	s.Log.Output = os.Stderr
	logging.Init(s.Log)

	repo, err := store.Open(ctx, store.Options{
		Driver:        s.Store.Driver,
		RedisAddr:     s.Store.RedisAddr,
		RedisPassword: s.Store.RedisPassword,
		RedisDB:       s.Store.RedisDB,
		MongoURI:      s.Store.MongoURI,
		MongoDatabase: s.Store.MongoDatabase,
		SQLitePath:    s.Store.SQLitePath,
		Timeout:       s.Store.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &app{settings: s, repo: repo}
	if kv, ok := repo.(*store.KVRepository); ok {
		a.kv = kv
		a.blacklist = filter.NewStoreAdapter(kv.Store())
	}

	m := processMetrics()
	if s.Breaker.Enabled {
		a.repo = store.NewBreakerRepository(repo, store.BreakerConfig{
			Name:             "store." + s.Store.Driver,
			MaxRequests:      s.Breaker.MaxRequests,
			Interval:         s.Breaker.Interval,
			Timeout:          s.Breaker.Timeout,
			FailureThreshold: s.Breaker.FailureThreshold,
			OnStateChange:    m.SetBreakerState,
		})
	}

	if opts.fixture != "" {
		if _, err := a.importFixture(ctx, opts.fixture); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	engineOpts, err := a.engineOptions(m)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if a.engine, err = engine.New(a.repo, a.repo, engineOpts...); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// 同一进程内多次 newApp（测试）共用一组已注册的指标。
var processMetrics = sync.OnceValue(func() *metrics.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
})

func (a *app) engineOptions(m *metrics.Metrics) ([]engine.Option, error) {
	s := a.settings
	loc, err := s.Location()
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{
		engine.WithLocation(loc),
		engine.WithLexicon(s.Lexicon),
		engine.WithMetrics(m),
		engine.WithDefaults(s.Engine.K, s.Engine.Alpha),
		engine.WithDecay(s.Engine.ProfileDecayDays, s.Engine.ContentDecayDays),
		engine.WithCooldown(s.Engine.CooldownWindow),
		engine.WithScorerTimeout(s.Engine.ScorerTimeout),
	}
	if s.Engine.Seed != 0 {
		opts = append(opts, engine.WithSeed(s.Engine.Seed))
	}

	var filters []filter.Filter
	if len(s.Blacklist) > 0 || a.blacklist != nil {
		var bs filter.BlacklistStore
		if a.blacklist != nil {
			bs = a.blacklist
		}
		filters = append(filters, filter.NewBlacklistFilter(s.Blacklist, bs, store.KeyBlacklist))
	}
	if len(s.Rules) > 0 {
		rules, err := filter.NewExprFilter(s.Rules...)
		if err != nil {
			return nil, fmt.Errorf("compile rules: %w", err)
		}
		filters = append(filters, rules)
	}
	if len(filters) > 0 {
		opts = append(opts, engine.WithFilters(filters...))
	}

	if s.PipelineFile != "" {
		cfg, err := pipeline.Load(s.PipelineFile)
		if err != nil {
			return nil, err
		}
		p, err := builders.Build(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithPipeline(p))
	}
	return opts, nil
}

// importFixture 写入菜品与下单日志，返回写入条数。
func (a *app) importFixture(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read fixture: %w", err)
	}
	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return 0, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	for _, d := range fx.Dishes {
		if err := a.repo.AddDish(ctx, d); err != nil {
			return 0, err
		}
	}
	for _, o := range fx.Orders {
		if err := a.repo.AppendOrder(ctx, o); err != nil {
			return 0, err
		}
	}
	log.Ctx(ctx).Info().Int("dishes", len(fx.Dishes)).Int("orders", len(fx.Orders)).Str("file", path).
		Msg("fixture imported")
	return len(fx.Dishes) + len(fx.Orders), nil
}

func (a *app) Close() error {
	return a.repo.Close()
}
