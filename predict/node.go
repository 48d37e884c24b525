package predict

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/utils"
)

// EngagementNode 是预测打分 Node：逐条调用 Predictor，
// 并把预测分与规则基础分融合为最终排序分。
//
// 融合公式：FinalScore = BaseScore*RecommendationWeight + Engagement*EngagementWeight。
//
// 降级策略：预测器缺失或返回错误时，整批退化为 base-score-only，
// 并给出合成置信度 1.0（降级结果不应被置信度过滤掉），只记日志不上抛。
type EngagementNode struct {
	Predictor core.Predictor

	RecommendationWeight float64
	EngagementWeight     float64

	log zerolog.Logger
}

// NewEngagementNode 按配置创建预测打分节点。predictor 可以为 nil（恒降级）。
func NewEngagementNode(cfg *core.Config, predictor core.Predictor, logger zerolog.Logger) *EngagementNode {
	return &EngagementNode{
		Predictor:            predictor,
		RecommendationWeight: cfg.RecommendationWeight,
		EngagementWeight:     cfg.EngagementWeight,
		log:                  logger.With().Str("component", "predict").Logger(),
	}
}

func (n *EngagementNode) Name() string        { return "score.engagement" }
func (n *EngagementNode) Kind() pipeline.Kind { return pipeline.KindScore }

func (n *EngagementNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Predictor == nil {
		n.degrade(items, "no predictor configured")
		return items, nil
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		// 请求被取消/超时：剩余部分退化为 base-only，尽力返回而不是报错
		if ctx.Err() != nil {
			n.degrade(items, "context cancelled")
			break
		}
		pred, err := n.Predictor.Predict(ctx, it.Features)
		if err != nil {
			// 预测器不可用：整批降级，保证结果齐性
			n.log.Warn().
				Err(err).
				Str("predictor", n.Predictor.Name()).
				Msg("predictor failed, degrading to base-score-only ranking")
			n.degrade(items, err.Error())
			break
		}
		it.EngagementScore = clamp01(pred.Engagement)
		it.Confidence = clamp01(pred.Confidence)
		n.blend(it)
	}
	return items, nil
}

// degrade 把剩余条目退化为 base-score-only：Engagement=0、合成置信度 1.0。
func (n *EngagementNode) degrade(items []*core.Item, reason string) {
	for _, it := range items {
		if it == nil {
			continue
		}
		it.EngagementScore = 0
		it.Confidence = 1.0
		n.blend(it)
		it.PutLabel("degraded", utils.Label{Value: reason, Source: "predict"})
	}
}

func (n *EngagementNode) blend(it *core.Item) {
	score := it.BaseScore*n.RecommendationWeight + it.EngagementScore*n.EngagementWeight
	if math.IsNaN(score) || math.IsInf(score, 0) {
		score = 0
	}
	it.FinalScore = score
}

var _ pipeline.Node = (*EngagementNode)(nil)
