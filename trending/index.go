// Package trending 维护热点主题索引：按互动热度给近期主题打分，整体快照原子替换。
package trending

import (
	"context"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/rushteam/feedkit/core"
)

// Index 是热点主题索引。
//
// 重算流程（Recompute，由调度器按固定间隔驱动）：
//  1. 扫描回看窗口内发布的内容
//  2. 取每条内容的主题（自带主题优先；缺失时可选调用外部分析服务）
//  3. 按内容互动权重累加到主题维度
//  4. 全部主题分数除以批最大值归一化到 [0,1]
//  5. 新快照原子替换旧快照
//
// 读取方（打分器）永远看到完整快照；空批次保留上一轮快照不清零。
// 外部分析服务挂了由熔断器兜底：降级为空主题，不影响重算本身。
type Index struct {
	repo     core.ContentRepository
	analysis core.AnalysisService
	lookback time.Duration
	log      zerolog.Logger

	snap atomic.Pointer[snapshot]

	// breaker 保护外部分析服务调用；analysis 为 nil 时不使用
	breaker *gobreaker.CircuitBreaker[[]string]
}

type snapshot struct {
	scores     map[string]float64
	computedAt time.Time
}

// NewIndex 创建热点索引。analysis 可以为 nil（只用内容自带主题）。
func NewIndex(cfg *core.Config, repo core.ContentRepository, analysis core.AnalysisService, logger zerolog.Logger) *Index {
	idx := &Index{
		repo:     repo,
		analysis: analysis,
		lookback: cfg.TrendingLookback(),
		log:      logger.With().Str("component", "trending").Logger(),
	}
	idx.snap.Store(&snapshot{scores: map[string]float64{}})

	if analysis != nil {
		idx.breaker = gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
			Name:    "trending-analysis",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				idx.log.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("analysis service breaker state changed")
			},
		})
	}
	return idx
}

// Score 返回主题的归一化热度；未知主题返回 0。
func (idx *Index) Score(topic string) float64 {
	return idx.snap.Load().scores[topic]
}

// ComputedAt 返回当前快照的计算时间。
func (idx *Index) ComputedAt() time.Time {
	return idx.snap.Load().computedAt
}

// Entries 返回当前快照的全部条目（按热度降序，同分按主题名升序）。
func (idx *Index) Entries() []core.TrendingEntry {
	snap := idx.snap.Load()
	out := make([]core.TrendingEntry, 0, len(snap.scores))
	for topic, score := range snap.scores {
		out = append(out, core.TrendingEntry{Topic: topic, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}

// Recompute 重算整个索引并原子替换快照。
// 内容仓库不可达返回 UPSTREAM_UNAVAILABLE（保留旧快照，等下一轮）。
func (idx *Index) Recompute(ctx context.Context) error {
	start := time.Now()
	candidates, err := idx.repo.ListCandidates(ctx, core.CandidateFilter{
		Since: start.Add(-idx.lookback),
	})
	if err != nil {
		return core.NewDomainError(core.ModuleTrending, core.ErrorCodeUpstreamUnavailable,
			"list recent content: "+err.Error())
	}
	if len(candidates) == 0 {
		// 空批次保留旧快照，避免热点信号闪断
		idx.log.Debug().Msg("no recent content, keeping previous trending snapshot")
		return nil
	}

	raw := make(map[string]float64)
	maxScore := 0.0
	for _, content := range candidates {
		if content == nil {
			continue
		}
		weight := content.Stats.EngagementWeight()
		if weight <= 0 || math.IsNaN(weight) {
			continue
		}
		for _, topic := range idx.topicsOf(ctx, content) {
			raw[topic] += weight
			if raw[topic] > maxScore {
				maxScore = raw[topic]
			}
		}
	}
	if len(raw) == 0 || maxScore <= 0 {
		idx.log.Debug().Msg("no engaged topics, keeping previous trending snapshot")
		return nil
	}

	scores := make(map[string]float64, len(raw))
	for topic, score := range raw {
		scores[topic] = score / maxScore
	}

	idx.snap.Store(&snapshot{scores: scores, computedAt: start})
	idx.log.Info().
		Int("topics", len(scores)).
		Int("candidates", len(candidates)).
		Dur("elapsed", time.Since(start)).
		Msg("trending index recomputed")
	return nil
}

// topicsOf 返回内容主题：自带主题优先；缺失时走熔断保护的分析服务，失败降级为空。
func (idx *Index) topicsOf(ctx context.Context, content *core.Content) []string {
	if len(content.Topics) > 0 {
		return content.Topics
	}
	if idx.analysis == nil || idx.breaker == nil || content.Text == "" {
		return nil
	}
	topics, err := idx.breaker.Execute(func() ([]string, error) {
		analysis, err := idx.analysis.Analyze(ctx, content.Text)
		if err != nil {
			return nil, err
		}
		return analysis.Topics, nil
	})
	if err != nil {
		idx.log.Debug().Err(err).Str("content_id", content.ID).Msg("topic analysis degraded")
		return nil
	}
	return topics
}

var _ core.TrendingReader = (*Index)(nil)
