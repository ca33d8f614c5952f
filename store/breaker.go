package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// BreakerConfig 熔断参数。
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32

	// OnStateChange 可选，用于上报监控（state：0 closed，1 half-open，2 open）
	OnStateChange func(name string, state float64)
}

// BreakerRepository 给 Repository 的每次调用加熔断；熔断打开时立即返回 core.ErrStoreUnavailable。
// 输入错误与 not found 不计为失败。
type BreakerRepository struct {
	repo Repository
	cb   *gobreaker.CircuitBreaker[any]
}

var _ Repository = (*BreakerRepository)(nil)

func NewBreakerRepository(repo Repository, cfg BreakerConfig) *BreakerRepository {
	if cfg.Name == "" {
		cfg.Name = "store"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || core.IsInputError(err) || core.IsNotFound(err) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("store: circuit breaker state changed")
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, float64(to))
			}
		},
	}
	return &BreakerRepository{repo: repo, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

// State 返回当前熔断状态。
func (b *BreakerRepository) State() gobreaker.State {
	return b.cb.State()
}

func execute[T any](b *BreakerRepository, fn func() (T, error)) (T, error) {
	out, err := b.cb.Execute(func() (any, error) { return fn() })
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, core.WrapError(core.ModuleStore, core.CodeUnavailable, "store: backend unavailable", err)
		}
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

func (b *BreakerRepository) ListDishes(ctx context.Context) ([]core.Dish, error) {
	return execute(b, func() ([]core.Dish, error) { return b.repo.ListDishes(ctx) })
}

func (b *BreakerRepository) RecentOrders(ctx context.Context, userID string, limit int) ([]core.OrderEvent, error) {
	return execute(b, func() ([]core.OrderEvent, error) { return b.repo.RecentOrders(ctx, userID, limit) })
}

func (b *BreakerRepository) AllPeerOrders(ctx context.Context) ([]core.OrderEvent, error) {
	return execute(b, func() ([]core.OrderEvent, error) { return b.repo.AllPeerOrders(ctx) })
}

func (b *BreakerRepository) AddDish(ctx context.Context, dish core.Dish) error {
	_, err := execute(b, func() (struct{}, error) { return struct{}{}, b.repo.AddDish(ctx, dish) })
	return err
}

func (b *BreakerRepository) AppendOrder(ctx context.Context, event core.OrderEvent) error {
	_, err := execute(b, func() (struct{}, error) { return struct{}{}, b.repo.AppendOrder(ctx, event) })
	return err
}

func (b *BreakerRepository) ResetHistory(ctx context.Context, userID string) error {
	_, err := execute(b, func() (struct{}, error) { return struct{}{}, b.repo.ResetHistory(ctx, userID) })
	return err
}

func (b *BreakerRepository) Close() error {
	return b.repo.Close()
}
