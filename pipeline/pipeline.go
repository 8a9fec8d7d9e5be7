package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/gamerec/core"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链，按顺序执行。
type Pipeline struct {
	Nodes []Node
	Hooks []Hook
}

// New 创建 Pipeline。
func New(nodes ...Node) *Pipeline {
	return &Pipeline{Nodes: nodes}
}

// Use 追加 Hook。
func (p *Pipeline) Use(hooks ...Hook) *Pipeline {
	p.Hooks = append(p.Hooks, hooks...)
	return p
}

// Run 依次执行所有 Node。任一 Node 返回错误即中断，错误原样（包装节点名）向上返回。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var err error
		for _, h := range p.Hooks {
			if cur, err = h.BeforeNode(ctx, rctx, node, cur); err != nil {
				return nil, fmt.Errorf("%s: %w", node.Name(), err)
			}
		}

		next, err := node.Process(ctx, rctx, cur)
		for _, h := range p.Hooks {
			next, err = h.AfterNode(ctx, rctx, node, next, err)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// NodeNames 返回节点名称列表，便于日志输出。
func (p *Pipeline) NodeNames() []string {
	names := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		names = append(names, n.Name())
	}
	return names
}
