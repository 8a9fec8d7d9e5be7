package filter

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/gamerec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单中的游戏。
// 内存列表与 Store 中的列表取并集；Store 中的列表按 RefreshInterval 缓存。
type BlacklistFilter struct {
	// GameIDs 是内存中的黑名单游戏 ID 列表
	GameIDs []int64

	// Store 用于从存储中读取黑名单（可选）
	Store BlacklistStore

	// Key 是 Store 中的黑名单 key（可选）
	Key string

	// RefreshInterval Store 黑名单的缓存时间，默认 30s
	RefreshInterval time.Duration

	mu       sync.Mutex
	static   map[int64]struct{}
	remote   map[int64]struct{}
	loadedAt time.Time
}

// BlacklistStore 是黑名单存储接口。
type BlacklistStore interface {
	// GetBlacklist 获取黑名单游戏 ID 列表
	GetBlacklist(ctx context.Context, key string) ([]int64, error)
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(gameIDs []int64, storeAdapter *StoreAdapter, key string) *BlacklistFilter {
	var store BlacklistStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	return &BlacklistFilter{
		GameIDs: gameIDs,
		Store:   store,
		Key:     key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}

	static, remote, err := f.sets(ctx)
	if _, ok := static[item.ID]; ok {
		return true, nil
	}
	if _, ok := remote[item.ID]; ok {
		return true, nil
	}
	return false, err
}

func (f *BlacklistFilter) sets(ctx context.Context) (map[int64]struct{}, map[int64]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.static == nil {
		f.static = toSet(f.GameIDs)
	}
	if f.Store == nil || f.Key == "" {
		return f.static, nil, nil
	}

	interval := f.RefreshInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if f.remote != nil && time.Since(f.loadedAt) < interval {
		return f.static, f.remote, nil
	}

	ids, err := f.Store.GetBlacklist(ctx, f.Key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			f.remote, f.loadedAt = map[int64]struct{}{}, time.Now()
			return f.static, f.remote, nil
		}
		// 读取失败时沿用上一次的结果
		return f.static, f.remote, err
	}
	f.remote, f.loadedAt = toSet(ids), time.Now()
	return f.static, f.remote, nil
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
