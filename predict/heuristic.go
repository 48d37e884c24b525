// Package predict 实现互动预测器：规则启发式与可重训练的逻辑回归，
// 以及把预测分融合进排序链路的 pipeline Node。
package predict

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// Heuristic 是规则启发式预测器：对归一化后的三段特征分段取均值加权。
// 不需要训练，适合冷启动或作为学习模型不可用时的兜底实现。
//
// 预测原理：
//  1. 内容段均值（互动统计、时效等）权重 0.5
//  2. 用户段均值（活跃度、偏好强度）权重 0.3
//  3. 上下文段均值 权重 0.2
//
// 输入特征都在 [0,1]，因此加权和天然落在 [0,1]。
type Heuristic struct{}

func NewHeuristic() *Heuristic { return &Heuristic{} }

func (h *Heuristic) Name() string { return "heuristic" }

func (h *Heuristic) Predict(_ context.Context, fv *core.FeatureVector) (core.Prediction, error) {
	if fv == nil {
		return core.Prediction{}, core.NewDomainError(core.ModulePredict, core.ErrorCodeInvalidInput, "feature vector is nil")
	}
	engagement := segmentMean(fv.Content)*0.5 + segmentMean(fv.User)*0.3 + segmentMean(fv.Context)*0.2
	return core.Prediction{
		Engagement: clamp01(engagement),
		Confidence: clamp01(scoreConfidence(fv)),
	}, nil
}

// Train 对启发式是空操作：没有可学习的参数。
func (h *Heuristic) Train(_ context.Context, _ []core.TrainingRecord) error { return nil }

func segmentMean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

var _ core.Predictor = (*Heuristic)(nil)
