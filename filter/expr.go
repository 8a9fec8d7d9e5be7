package filter

import (
	"context"
	"fmt"
	"sync"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pkg/dsl"
)

// ParamFilter 是请求参数中过滤表达式的 key，值可以是 string 或 *dsl.Program。
const ParamFilter = "filter"

// ExprFilter 是 CEL 表达式过滤器：表达式为 false 的游戏被过滤掉。
// Expr 为空时读取请求参数 rctx.Params["filter"]，两者都为空则不过滤。
type ExprFilter struct {
	Expr string

	once sync.Once
	prg  *dsl.Program
	err  error
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	prg, err := f.program(rctx)
	if err != nil || prg == nil {
		return false, err
	}
	keep, err := prg.Match(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}

func (f *ExprFilter) program(rctx *core.RecommendContext) (*dsl.Program, error) {
	if f.Expr != "" {
		f.once.Do(func() {
			f.prg, f.err = dsl.Compile(f.Expr)
		})
		if f.err != nil {
			return nil, fmt.Errorf("filter expression %q: %w", f.Expr, f.err)
		}
		return f.prg, nil
	}

	if rctx == nil {
		return nil, nil
	}
	v, ok := rctx.Param(ParamFilter)
	if !ok {
		return nil, nil
	}
	switch p := v.(type) {
	case *dsl.Program:
		return p, nil
	case string:
		if p == "" {
			return nil, nil
		}
		prg, err := dsl.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("filter expression %q: %w", p, err)
		}
		// 请求内只编译一次
		rctx.Params[ParamFilter] = prg
		return prg, nil
	default:
		return nil, fmt.Errorf("filter param: unexpected type %T", v)
	}
}
