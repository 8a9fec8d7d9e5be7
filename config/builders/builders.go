package builders

import (
	"fmt"
	"sync"
	"time"

	"github.com/rushteam/gamerec/config"
	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
	"github.com/rushteam/gamerec/filter"
	"github.com/rushteam/gamerec/metrics"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/pkg/conv"
	"github.com/rushteam/gamerec/pkg/dsl"
	"github.com/rushteam/gamerec/rank"
	"github.com/rushteam/gamerec/rerank"
)

func init() {
	config.Register("feature.vectorize", BuildVectorizeNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rank.similarity", BuildSimilarityNode)
	config.Register("rerank.sort", BuildSortNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

var (
	storeMu sync.RWMutex
	store   core.Store
)

// BindStore 设置 blacklist 过滤器读取远程黑名单所用的 Store。
// 未设置时 blacklist 只使用配置中的 game_ids。
func BindStore(s core.Store) {
	storeMu.Lock()
	defer storeMu.Unlock()
	store = s
}

func boundStore() core.Store {
	storeMu.RLock()
	defer storeMu.RUnlock()
	return store
}

func BuildVectorizeNode(_ map[string]interface{}) (pipeline.Node, error) {
	return &feature.VectorizeNode{OnDegraded: metrics.OnDegraded}, nil
}

func BuildSimilarityNode(_ map[string]interface{}) (pipeline.Node, error) {
	return &rank.SimilarityNode{}, nil
}

func BuildSortNode(_ map[string]interface{}) (pipeline.Node, error) {
	return &rerank.SortNode{}, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", core.DefaultTopK)
	if n < 1 || n > core.DefaultTopK {
		return nil, fmt.Errorf("rerank.topn: n must be in 1..%d, got %d", core.DefaultTopK, n)
	}
	return &rerank.TopNNode{N: int(n)}, nil
}

func BuildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	labelKey := conv.ConfigGet(cfg, "label_key", rerank.LabelPrimaryGenre)
	if labelKey == "" {
		labelKey = rerank.LabelPrimaryGenre
	}
	return &rerank.Diversity{
		LabelKey:  labelKey,
		MaxPerKey: int(conv.ConfigGetInt64(cfg, "max_per_key", 1)),
	}, nil
}

// BuildFilterNode 构建过滤 Node。filters 为空时只有 liked 过滤器。
// liked 过滤器总是排在第一位，配置中重复声明会被忽略。
//
//	- type: filter
//	  config:
//	    filters:
//	      - type: blacklist
//	        game_ids: [1, 2]
//	        key: recommend:blacklist
//	        refresh_interval: 30
//	      - type: expr
//	        expr: "size(game.platforms) > 0"
func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filters := []filter.Filter{&filter.LikedFilter{}}

	filtersConfig, _ := cfg["filters"].([]interface{})
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("filter config must be a map, got %T", fc)
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "liked":
		case "blacklist":
			var adapter *filter.StoreAdapter
			key := conv.ConfigGet(filterMap, "key", "")
			if s := boundStore(); s != nil && key != "" {
				adapter = filter.NewStoreAdapter(s)
			}
			bl := filter.NewBlacklistFilter(conv.SliceAnyToInt64(filterMap["game_ids"]), adapter, key)
			if sec := conv.ConfigGetInt64(filterMap, "refresh_interval", 0); sec > 0 {
				bl.RefreshInterval = time.Duration(sec) * time.Second
			}
			filters = append(filters, bl)
		case "expr":
			expr := conv.ConfigGet(filterMap, "expr", "")
			if expr != "" {
				if _, err := dsl.Compile(expr); err != nil {
					return nil, fmt.Errorf("filter expr: %w", err)
				}
			}
			filters = append(filters, &filter.ExprFilter{Expr: expr})
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}
