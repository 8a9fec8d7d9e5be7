package catalog

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/rushteam/gamerec/core"
)

// DecodeGames 解析上游返回的候选池。
// 支持顶层数组，或带 games / results / data 字段的对象。
// 单个元素解析失败（例如缺少 id）时跳过并计入 skipped，不影响其他元素。
func DecodeGames(data []byte) (games []*core.Game, skipped int, err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("catalog: empty response body")
	}

	var elems []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &elems); err != nil {
			return nil, 0, fmt.Errorf("catalog: decode list: %w", err)
		}
	case '{':
		var envelope struct {
			Games   []json.RawMessage `json:"games"`
			Results []json.RawMessage `json:"results"`
			Data    []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, 0, fmt.Errorf("catalog: decode envelope: %w", err)
		}
		switch {
		case envelope.Games != nil:
			elems = envelope.Games
		case envelope.Results != nil:
			elems = envelope.Results
		default:
			elems = envelope.Data
		}
	default:
		return nil, 0, fmt.Errorf("catalog: unexpected response body")
	}

	games = make([]*core.Game, 0, len(elems))
	for _, raw := range elems {
		var g core.Game
		if err := json.Unmarshal(raw, &g); err != nil {
			skipped++
			continue
		}
		games = append(games, &g)
	}
	return games, skipped, nil
}

// EncodeGames 把候选池编码为 JSON 数组，每个游戏输出上游原始对象。
func EncodeGames(games []*core.Game) ([]byte, error) {
	return json.Marshal(games)
}
