package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/gamerec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("game", cel.DynType),
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译后的过滤表达式，线程安全，可对多个游戏重复求值。
//
// 表达式语法（CEL 标准语法），可用变量：
//   - game.id / game.name / game.genres / game.themes / game.platforms
//   - item.score / item.degraded（filter 节点在 rank.similarity 之后执行，score 已写入）
//   - label.<key>：Label 的 Value，例如 label.degraded != null
//   - rctx.user_id / rctx.params
//
// 示例：
//   - `6 in game.platforms` → 只保留 PC 平台的游戏
//   - `!(12 in game.genres) && game.name != ""`
//   - `item.score > 0.3`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式。空表达式、语法错误或返回值不是布尔型时返回错误。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return boolean, got %s", t)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string {
	return p.expr
}

// Match 对单个 Item 求值。
func (p *Program) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		// 访问不存在的 key 会报错，存在性检查应写成 label.key != null
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// Eval 编译并对单个 Item 求值，适用于一次性表达式。空表达式视为 true。
func Eval(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if expr == "" {
		return true, nil
	}
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Match(item, rctx)
}

func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	game := map[string]any{
		"id":        int64(0),
		"name":      "",
		"genres":    []any{},
		"themes":    []any{},
		"platforms": []any{},
	}
	itemMap := map[string]any{
		"id":       int64(0),
		"score":    0.0,
		"degraded": false,
	}
	label := make(map[string]any)

	if item != nil {
		itemMap["id"] = item.ID
		itemMap["score"] = item.Score
		itemMap["degraded"] = item.Degraded
		for k, v := range item.Labels {
			label[k] = v.Value
		}
		if g := item.Game; g != nil {
			game["id"] = g.ID
			game["name"] = g.Name
			for _, axis := range core.Axes {
				ids, _ := g.Categories(axis)
				list := make([]any, 0, len(ids))
				for _, id := range ids {
					list = append(list, id)
				}
				game[string(axis)] = list
			}
		}
	}

	rctxMap := map[string]any{
		"user_id": "",
		"params":  map[string]any{},
	}
	if rctx != nil {
		rctxMap["user_id"] = rctx.UserID
		if rctx.Params != nil {
			rctxMap["params"] = rctx.Params
		}
	}

	return map[string]any{
		"game":  game,
		"item":  itemMap,
		"label": label,
		"rctx":  rctxMap,
	}
}
