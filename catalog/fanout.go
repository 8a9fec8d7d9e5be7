package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/logging"
)

// Fanout 并发拉取多个候选源，按源顺序合并并按 id 去重（先出现的保留）。
// 部分源失败时跳过该源；全部失败时返回第一个源的错误。
type Fanout struct {
	Providers     []core.CandidateProvider
	Timeout       time.Duration // 每个源的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
}

var _ core.CandidateProvider = (*Fanout)(nil)

func (f *Fanout) Name() string { return "fanout" }

func (f *Fanout) Candidates(ctx context.Context) ([]*core.Game, error) {
	if len(f.Providers) == 0 {
		return nil, nil
	}
	if len(f.Providers) == 1 {
		return f.fetch(ctx, f.Providers[0])
	}

	results := make([][]*core.Game, len(f.Providers))
	errs := make([]error, len(f.Providers))

	var eg errgroup.Group
	if f.MaxConcurrent > 0 {
		eg.SetLimit(f.MaxConcurrent)
	}
	for i, p := range f.Providers {
		eg.Go(func() error {
			games, err := f.fetch(ctx, p)
			if err != nil {
				// 单个源失败不中断其他源
				logging.Ctx(ctx).Warn().Err(err).Str("source", p.Name()).Msg("candidate source failed")
				errs[i] = err
				return nil
			}
			results[i] = games
			return nil
		})
	}
	_ = eg.Wait()

	ok := false
	for _, err := range errs {
		if err == nil {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("all %d candidate sources failed: %w", len(errs), errors.Join(errs...))
	}
	return mergeFirst(results), nil
}

func (f *Fanout) fetch(ctx context.Context, p core.CandidateProvider) ([]*core.Game, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	return p.Candidates(ctx)
}

// mergeFirst 按源顺序拼接，按 id 去重，保留第一个出现的。
func mergeFirst(results [][]*core.Game) []*core.Game {
	total := 0
	for _, r := range results {
		total += len(r)
	}
	seen := make(map[int64]struct{}, total)
	out := make([]*core.Game, 0, total)
	for _, r := range results {
		for _, g := range r {
			if g == nil {
				continue
			}
			if _, dup := seen[g.ID]; dup {
				continue
			}
			seen[g.ID] = struct{}{}
			out = append(out, g)
		}
	}
	return out
}
