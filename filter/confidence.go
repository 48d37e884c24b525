package filter

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// ConfidenceFilter 过滤掉预测置信度低于门槛的候选。
// 降级候选带合成置信度 1.0，天然通过此过滤器。
type ConfidenceFilter struct {
	// MinConfidence 置信度门槛，低于（严格小于）此值的候选被过滤
	MinConfidence float64
}

func NewConfidenceFilter(minConfidence float64) *ConfidenceFilter {
	return &ConfidenceFilter{MinConfidence: minConfidence}
}

func (f *ConfidenceFilter) Name() string {
	return "filter.confidence"
}

func (f *ConfidenceFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return item.Confidence < f.MinConfidence, nil
}
