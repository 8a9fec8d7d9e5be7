package catalog

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/logging"
	"github.com/rushteam/gamerec/metrics"
)

// DefaultFetchTimeout 是合并后的上游拉取的默认超时。
const DefaultFetchTimeout = 30 * time.Second

// CachedProvider 把上游候选池（原始游戏对象）缓存到 core.Store。
// 只缓存上游数据，词表和向量每次请求重新计算。TTL <= 0 时不缓存。
//
// 并发的未命中请求合并为一次上游拉取。这次拉取不受任何单个调用方的取消影响，
// 只受 FetchTimeout 限制；调用方取消时自己先返回 ctx.Err()。
type CachedProvider struct {
	Provider core.CandidateProvider
	Store    core.Store
	Key      string
	TTL      time.Duration
	// FetchTimeout 合并拉取的超时，<= 0 时使用 DefaultFetchTimeout
	FetchTimeout time.Duration

	group singleflight.Group
}

var _ core.CandidateProvider = (*CachedProvider)(nil)

func (c *CachedProvider) Name() string {
	return "cached:" + c.Provider.Name()
}

func (c *CachedProvider) key() string {
	if c.Key != "" {
		return c.Key
	}
	return "catalog:pool:" + c.Provider.Name()
}

func (c *CachedProvider) Candidates(ctx context.Context) ([]*core.Game, error) {
	if c.Store == nil || c.TTL <= 0 {
		return c.Provider.Candidates(ctx)
	}

	key := c.key()
	if data, err := c.Store.Get(ctx, key); err == nil {
		if games, _, err := DecodeGames(data); err == nil {
			metrics.CatalogCacheHits.Inc()
			return games, nil
		}
	} else if !core.IsStoreNotFound(err) {
		logging.Ctx(ctx).Warn().Err(err).Str("store", c.Store.Name()).Msg("catalog cache read failed")
	}
	metrics.CatalogCacheMisses.Inc()

	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout())
		defer cancel()

		games, err := c.Provider.Candidates(fetchCtx)
		if err != nil {
			return nil, err
		}
		if len(games) > 0 {
			c.save(fetchCtx, key, games)
		}
		return games, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*core.Game), nil
	}
}

func (c *CachedProvider) fetchTimeout() time.Duration {
	if c.FetchTimeout > 0 {
		return c.FetchTimeout
	}
	return DefaultFetchTimeout
}

func (c *CachedProvider) save(ctx context.Context, key string, games []*core.Game) {
	data, err := EncodeGames(games)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("catalog cache encode failed")
		return
	}
	ttl := int(c.TTL / time.Second)
	if ttl < 1 {
		ttl = 1
	}
	if err := c.Store.Set(ctx, key, data, ttl); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("store", c.Store.Name()).Msg("catalog cache write failed")
	}
}

// Invalidate 删除缓存。
func (c *CachedProvider) Invalidate(ctx context.Context) error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Delete(ctx, c.key())
}
