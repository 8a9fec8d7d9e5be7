package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pipeline"
)

// PipelineHook 记录每个节点的耗时与错误。
// 同一个 Hook 可被并发请求共享，开始时间按 (rctx, node) 区分。
type PipelineHook struct {
	starts sync.Map
}

type hookKey struct {
	rctx *core.RecommendContext
	node string
}

var _ pipeline.Hook = (*PipelineHook)(nil)

func NewPipelineHook() *PipelineHook {
	return &PipelineHook{}
}

func (h *PipelineHook) BeforeNode(_ context.Context, rctx *core.RecommendContext,
	node pipeline.Node, items []*core.Item) ([]*core.Item, error) {
	h.starts.Store(hookKey{rctx, node.Name()}, time.Now())
	return items, nil
}

func (h *PipelineHook) AfterNode(_ context.Context, rctx *core.RecommendContext,
	node pipeline.Node, items []*core.Item, err error) ([]*core.Item, error) {
	if v, ok := h.starts.LoadAndDelete(hookKey{rctx, node.Name()}); ok {
		PipelineNodeDuration.WithLabelValues(node.Name(), string(node.Kind())).
			Observe(time.Since(v.(time.Time)).Seconds())
	}
	if err != nil {
		PipelineNodeErrors.WithLabelValues(node.Name(), string(node.Kind())).Inc()
	}
	return items, err
}
