package config

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/rushteam/gamerec/pipeline"
)

// 配置驱动的推荐 Pipeline 需要 import _ "github.com/rushteam/gamerec/config/builders"，
// 由它在 init 中注册 feature.vectorize、rank.similarity、filter、rerank.* 等节点。

// NodeBuilder 根据 YAML 中的 config 构建节点。
type NodeBuilder = pipeline.NodeBuilder

// RequiredTypes 是推荐 Pipeline 必须包含的节点类型，按执行顺序排列。
// 其余已注册类型（如 rerank.diversity）可以插在任意位置。
//
// filter 排在 rank.similarity 之后，请求表达式才能读取 item.score。
var RequiredTypes = []string{
	"feature.vectorize",
	"rank.similarity",
	"filter",
	"rerank.sort",
	"rerank.topn",
}

var (
	builders   = make(map[string]NodeBuilder)
	buildersMu sync.RWMutex
)

// Register 注册一种节点类型。空类型名或 nil builder 被忽略。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	buildersMu.Lock()
	defer buildersMu.Unlock()
	builders[typeName] = builder
}

// SupportedTypes 返回已注册的节点类型（排序）。
func SupportedTypes() []string {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	types := make([]string, 0, len(builders))
	for t := range builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回包含全部已注册类型的 NodeFactory。
func DefaultFactory() *pipeline.NodeFactory {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range builders {
		f.Register(typeName, builder)
	}
	return f
}

// ValidatePipelineConfig 校验推荐 Pipeline 配置：
//   - 每个节点类型都已注册
//   - RequiredTypes 全部出现，且首次出现的先后顺序与 RequiredTypes 一致
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return fmt.Errorf("pipeline config is empty")
	}

	supported := SupportedTypes()
	first := make(map[string]int, len(cfg.Pipeline.Nodes))
	for i, nc := range cfg.Pipeline.Nodes {
		if nc.Type == "" {
			return fmt.Errorf("pipeline node %d: missing type", i)
		}
		if !slices.Contains(supported, nc.Type) {
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, supported)
		}
		if _, ok := first[nc.Type]; !ok {
			first[nc.Type] = i
		}
	}

	var missing []string
	for _, t := range RequiredTypes {
		if _, ok := first[t]; !ok {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("pipeline is missing required nodes: %s", strings.Join(missing, ", "))
	}

	for i := 1; i < len(RequiredTypes); i++ {
		prev, cur := RequiredTypes[i-1], RequiredTypes[i]
		if first[cur] < first[prev] {
			return fmt.Errorf("pipeline node %q must come after %q", cur, prev)
		}
	}
	return nil
}
