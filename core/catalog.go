package core

import "context"

// CandidateProvider 提供推荐候选池（上游目录服务）。
// 核心算法不主动拉取，由调用方拿到候选池后交给 engine。
type CandidateProvider interface {
	Name() string

	// Candidates 返回候选游戏，顺序即候选池原始顺序（排序稳定性依赖它）
	Candidates(ctx context.Context) ([]*Game, error)
}
