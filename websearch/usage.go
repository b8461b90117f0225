package websearch

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// UsageStore 搜索提供商的日用量计数，基于 Redis。
//
// 重置采用"读重置日期 → 不是今天则重置 → 自增"的顺序：并发下两个
// 请求可能同时发现跨天并各自重置，丢失的竞争最多造成一次少计，
// 计数本身始终通过原子 INCR 完成，不会损坏。
type UsageStore struct {
	rdb    redis.UniversalClient
	logger *zap.Logger

	// now 可注入，测试用
	now func() time.Time
}

// NewUsageStore 创建用量计数存储。
func NewUsageStore(rdb redis.UniversalClient, logger *zap.Logger) *UsageStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsageStore{
		rdb:    rdb,
		logger: logger.With(zap.String("component", "usage_store")),
		now:    time.Now,
	}
}

func usageKey(providerID string) string {
	return "answercore:websearch:usage:" + providerID
}

func resetKey(providerID string) string {
	return "answercore:websearch:usage_reset:" + providerID
}

// Increment 自增提供商当日用量并返回新值。
// 跨天时先重置计数再自增。
func (s *UsageStore) Increment(ctx context.Context, providerID string) (int64, error) {
	if err := s.maybeReset(ctx, providerID); err != nil {
		return 0, err
	}
	n, err := s.rdb.Incr(ctx, usageKey(providerID)).Result()
	if err != nil {
		return 0, fmt.Errorf("websearch: increment usage for %s: %w", providerID, err)
	}
	return n, nil
}

// Today 返回提供商当日用量（跨天时先重置）。
func (s *UsageStore) Today(ctx context.Context, providerID string) (int64, error) {
	if err := s.maybeReset(ctx, providerID); err != nil {
		return 0, err
	}
	n, err := s.rdb.Get(ctx, usageKey(providerID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("websearch: read usage for %s: %w", providerID, err)
	}
	return n, nil
}

func (s *UsageStore) maybeReset(ctx context.Context, providerID string) error {
	today := s.now().Format("2006-01-02")

	last, err := s.rdb.Get(ctx, resetKey(providerID)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("websearch: read reset date for %s: %w", providerID, err)
	}
	if last == today {
		return nil
	}

	// 跨天：先写日期再清计数。两个并发重置是幂等的。
	if err := s.rdb.Set(ctx, resetKey(providerID), today, 48*time.Hour).Err(); err != nil {
		return fmt.Errorf("websearch: set reset date for %s: %w", providerID, err)
	}
	if err := s.rdb.Del(ctx, usageKey(providerID)).Err(); err != nil {
		return fmt.Errorf("websearch: reset usage for %s: %w", providerID, err)
	}
	s.logger.Debug("daily usage reset", zap.String("provider", providerID), zap.String("date", today))
	return nil
}
