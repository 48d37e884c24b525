// Package scorer 实现规则侧的混合基础分：协同信号 + 内容偏好 + 时段 + 热点。
package scorer

import (
	"context"
	"math"
	"time"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/utils"
)

// HybridScorer 是混合打分 Node：对每个候选计算四路信号的加权和，
// 再乘以指数时间衰减，写入 item.BaseScore。
//
// 四路信号：
//  1. 内容类型偏好匹配 —— 内容类型在用户最偏好的前 N 个类型中，固定加分
//  2. 网络相关性 —— 作者在用户关注集合中，固定加分（协同信号的工程拆分）
//  3. 时段相关性 —— 发布小时落在用户最活跃的前 N 个时段中，固定加分
//  4. 热点加成 —— 内容主题的归一化热度按主题求平均，乘以热点权重
//
// 时间衰减：decay = 2^(-age/halfLife)，乘在四路信号之和上；
// 融合预测分之前完成（FinalScore 的融合在 predict 节点）。
//
// 命中的信号写入 score_components 标签，便于 explain / 观测。
type HybridScorer struct {
	// Trending 热点索引只读视图（可选；为空则热点加成恒为 0）
	Trending core.TrendingReader

	// TypeMatchBonus / NetworkBonus / ActiveHourBonus 三路固定加分
	TypeMatchBonus  float64
	NetworkBonus    float64
	ActiveHourBonus float64

	// TrendingWeight 热点加成权重
	TrendingWeight float64

	// TopTypes / TopHours 偏好匹配取前 N
	TopTypes int
	TopHours int

	// HalfLife 指数衰减半衰期
	HalfLife time.Duration

	// now 可注入时钟，便于测试
	Now func() time.Time
}

// NewHybridScorer 按配置创建混合打分器。
func NewHybridScorer(cfg *core.Config, trending core.TrendingReader) *HybridScorer {
	return &HybridScorer{
		Trending:        trending,
		TypeMatchBonus:  cfg.TypeMatchBonus,
		NetworkBonus:    cfg.NetworkBonus,
		ActiveHourBonus: cfg.ActiveHourBonus,
		TrendingWeight:  cfg.TrendingWeight,
		TopTypes:        cfg.TopPreferredTypes,
		TopHours:        cfg.TopActiveHours,
		HalfLife:        cfg.RecencyHalfLife(),
	}
}

func (s *HybridScorer) Name() string        { return "score.hybrid" }
func (s *HybridScorer) Kind() pipeline.Kind { return pipeline.KindScore }

func (s *HybridScorer) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	for _, it := range items {
		if it == nil || it.Content == nil {
			continue
		}
		it.BaseScore = s.score(rctx, it, now())
	}
	return items, nil
}

func (s *HybridScorer) score(rctx *core.RecommendContext, it *core.Item, now time.Time) float64 {
	content := it.Content
	score := 0.0
	components := ""

	appendComponent := func(name string) {
		if components != "" {
			components += "+"
		}
		components += name
	}

	var profile *core.EngagementProfile
	if rctx != nil {
		profile = rctx.Profile
	}

	// 1. 内容类型偏好匹配
	if profile.PrefersType(content.Type, s.TopTypes) {
		score += s.TypeMatchBonus
		appendComponent("type_match")
	}

	// 2. 网络相关性
	if rctx.IsFollowing(content.AuthorID) {
		score += s.NetworkBonus
		appendComponent("network")
	}

	// 3. 时段相关性
	if !content.PublishedAt.IsZero() && profile.IsActiveHour(content.PublishedAt.Hour(), s.TopHours) {
		score += s.ActiveHourBonus
		appendComponent("active_hour")
	}

	// 4. 热点加成：主题归一化热度的平均值
	if s.Trending != nil && len(content.Topics) > 0 {
		sum := 0.0
		for _, topic := range content.Topics {
			sum += s.Trending.Score(topic)
		}
		avg := sum / float64(len(content.Topics))
		if avg > 0 {
			score += avg * s.TrendingWeight
			appendComponent("trending")
		}
	}

	// 时间衰减：decay = 2^(-age/halfLife)
	if s.HalfLife > 0 && !content.PublishedAt.IsZero() {
		age := now.Sub(content.PublishedAt)
		if age > 0 {
			score *= math.Exp2(-age.Hours() / s.HalfLife.Hours())
		}
	}

	// NaN 一律按最低分处理，绝不向下游传播
	if math.IsNaN(score) || math.IsInf(score, 0) {
		score = 0
	}

	if components != "" {
		it.PutLabel("score_components", utils.Label{Value: components, Source: "score"})
	}
	return score
}
