// Package feed 是推荐核心的对外入口：编排候选获取、打分、过滤、排序与缓存。
package feed

import (
	"context"
	"encoding/json"

	"github.com/rushteam/feedkit/core"
)

// Cache 是按用户的 Feed 结果缓存：TTL 过期 + 强信号显式失效。
// 键按用户隔离，互不影响；同键覆盖写入由底层存储保证原子。
type Cache struct {
	store core.Store
	ttl   int // 秒
}

// NewCache 创建 Feed 缓存。ttlSeconds <= 0 表示不过期（不推荐）。
func NewCache(store core.Store, ttlSeconds int) *Cache {
	return &Cache{store: store, ttl: ttlSeconds}
}

func cacheKey(userID string) string { return "feed:" + userID }

// Get 读取用户的缓存结果；未命中或已过期返回 ok=false。
func (c *Cache) Get(ctx context.Context, userID string) ([]core.RecommendationResult, bool) {
	data, err := c.store.Get(ctx, cacheKey(userID))
	if err != nil {
		return nil, false
	}
	var results []core.RecommendationResult
	if err := json.Unmarshal(data, &results); err != nil {
		// 缓存内容损坏按未命中处理，顺带清掉
		_ = c.store.Delete(ctx, cacheKey(userID))
		return nil, false
	}
	return results, true
}

// Set 写入用户的缓存结果。
func (c *Cache) Set(ctx context.Context, userID string, results []core.RecommendationResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, cacheKey(userID), data, c.ttl)
}

// Invalidate 显式失效用户的缓存（新内容发布、偏好变化等强信号）。
func (c *Cache) Invalidate(ctx context.Context, userID string) error {
	return c.store.Delete(ctx, cacheKey(userID))
}
