package filter

import (
	"context"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/dsl"
)

// RuleFilter 是基于规则表达式的过滤器，使用 CEL 表达式判断是否过滤。
// 表达式返回 true 时过滤该候选。
//
// 示例：
//   - `item.content_type == "video"` → 过滤掉所有视频
//   - `item.author_id == rctx.user_id` → 过滤掉用户自己发布的内容
//   - `label.degraded != null && item.base_score < 0.1` → 过滤掉降级且低分的候选
type RuleFilter struct {
	// Expr 是 CEL 过滤表达式；空表达式不过滤任何候选
	Expr string
}

func NewRuleFilter(expr string) *RuleFilter {
	return &RuleFilter{Expr: expr}
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" {
		return false, nil
	}
	return dsl.NewEval(item, rctx).Evaluate(f.Expr)
}
