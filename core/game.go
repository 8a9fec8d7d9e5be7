package core

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// Axis 标识一个类目维度（genres / themes / platforms）。
type Axis string

const (
	AxisGenre    Axis = "genres"
	AxisTheme    Axis = "themes"
	AxisPlatform Axis = "platforms"
)

// Axes 是特征向量的拼接顺序：genres ⧺ themes ⧺ platforms，全局固定。
var Axes = []Axis{AxisGenre, AxisTheme, AxisPlatform}

// Game 是上游目录服务返回的游戏对象。
//
// 类目字段的三种状态：
//   - nil：字段缺失
//   - 空切片：字段存在但为空
//   - malformed：字段存在但无法解析为 id 列表（解码时记录，不中断）
//
// 前两种在编码时都得到该维度的全零向量；第三种由 Vectorizer 走降级路径。
type Game struct {
	ID        int64
	Name      string
	Genres    []int64
	Themes    []int64
	Platforms []int64

	malformed []Axis
	raw       json.RawMessage
}

// Categories 返回指定维度的类目 id。维度无法读取时返回 ErrMalformedGame。
func (g *Game) Categories(axis Axis) ([]int64, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil game", ErrMalformedGame)
	}
	for _, a := range g.malformed {
		if a == axis {
			return nil, fmt.Errorf("%w: game %d axis %s", ErrMalformedGame, g.ID, axis)
		}
	}
	switch axis {
	case AxisGenre:
		return g.Genres, nil
	case AxisTheme:
		return g.Themes, nil
	case AxisPlatform:
		return g.Platforms, nil
	default:
		return nil, fmt.Errorf("%w: unknown axis %q", ErrMalformedGame, axis)
	}
}

// MarkMalformed 标记某个维度不可读。
func (g *Game) MarkMalformed(axis Axis) {
	for _, a := range g.malformed {
		if a == axis {
			return
		}
	}
	g.malformed = append(g.malformed, axis)
}

// Malformed 返回不可读的维度列表。
func (g *Game) Malformed() []Axis {
	return g.malformed
}

func (g *Game) IsMalformed() bool {
	return len(g.malformed) > 0
}

// gameWire 是 Game 的宽松解码形态：类目字段先保留原始 JSON，再逐个解析。
type gameWire struct {
	ID        json.RawMessage `json:"id"`
	Name      json.RawMessage `json:"name"`
	Genres    json.RawMessage `json:"genres"`
	Themes    json.RawMessage `json:"themes"`
	Platforms json.RawMessage `json:"platforms"`
}

// UnmarshalJSON 支持两种形态：
//   - 纯数字（或数字字符串）：仅含 id 的游戏，用于 liked 列表
//   - 对象：id 必填；类目元素可以是数字、数字字符串或 {"id": n}
//
// 类目字段形态不对时只标记该维度 malformed，不返回错误；id 缺失或非法时返回错误。
func (g *Game) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errors.New("game: empty value")
	}

	if trimmed[0] != '{' {
		id, err := parseID(trimmed)
		if err != nil {
			return fmt.Errorf("game: %w", err)
		}
		*g = Game{ID: id}
		return nil
	}

	var w gameWire
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if len(w.ID) == 0 {
		return errors.New("game: missing id")
	}
	id, err := parseID(w.ID)
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}

	out := Game{ID: id, raw: append(json.RawMessage(nil), trimmed...)}
	if len(w.Name) > 0 {
		var name string
		if json.Unmarshal(w.Name, &name) == nil {
			out.Name = name
		}
	}

	fields := []struct {
		axis Axis
		raw  json.RawMessage
		dst  *[]int64
	}{
		{AxisGenre, w.Genres, &out.Genres},
		{AxisTheme, w.Themes, &out.Themes},
		{AxisPlatform, w.Platforms, &out.Platforms},
	}
	for _, f := range fields {
		ids, ok := parseCategoryList(f.raw)
		if !ok {
			out.MarkMalformed(f.axis)
			continue
		}
		*f.dst = ids
	}

	*g = out
	return nil
}

// MarshalJSON 优先输出上游原始对象，保证返回给调用方的是完整的游戏对象。
func (g Game) MarshalJSON() ([]byte, error) {
	if len(g.raw) > 0 {
		return g.raw, nil
	}
	type out struct {
		ID        int64    `json:"id"`
		Name      string   `json:"name,omitempty"`
		Genres    *[]int64 `json:"genres,omitempty"`
		Themes    *[]int64 `json:"themes,omitempty"`
		Platforms *[]int64 `json:"platforms,omitempty"`
	}
	o := out{ID: g.ID, Name: g.Name}
	if g.Genres != nil {
		o.Genres = &g.Genres
	}
	if g.Themes != nil {
		o.Themes = &g.Themes
	}
	if g.Platforms != nil {
		o.Platforms = &g.Platforms
	}
	return json.Marshal(o)
}

// Raw 返回上游原始 JSON（可能为空）。
func (g *Game) Raw() json.RawMessage {
	return g.raw
}

// parseCategoryList 解析类目列表。null / 缺失视为 nil（合法），其他无法识别的形态返回 false。
func parseCategoryList(raw json.RawMessage) ([]int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, true
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}

	ids := make([]int64, 0, len(elems))
	for _, e := range elems {
		e = bytes.TrimSpace(e)
		if len(e) > 0 && e[0] == '{' {
			var ref struct {
				ID json.RawMessage `json:"id"`
			}
			if err := json.Unmarshal(e, &ref); err != nil || len(ref.ID) == 0 {
				return nil, false
			}
			e = ref.ID
		}
		id, err := parseID(e)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

func parseID(raw []byte) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("invalid id %s", raw)
		}
		raw = []byte(s)
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
