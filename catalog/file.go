package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/rushteam/gamerec/core"
)

// FileProvider 从本地 JSON 文件读取候选池，格式与上游接口一致。
// 每次调用都重新读取文件。
type FileProvider struct {
	Path string
}

var _ core.CandidateProvider = (*FileProvider)(nil)

func (p *FileProvider) Name() string { return "file:" + p.Path }

func (p *FileProvider) Candidates(_ context.Context) ([]*core.Game, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", p.Path, err)
	}
	games, _, err := DecodeGames(data)
	return games, err
}
