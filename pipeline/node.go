package pipeline

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindCandidate   Kind = "candidate"   // 候选阶段：生成候选集
	KindScore       Kind = "score"       // 打分阶段：规则基础分 / 预测互动分
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不符合约束的候选
	KindRerank      Kind = "rerank"      // 重排阶段：排序与截断
	KindPostProcess Kind = "postprocess" // 后处理阶段：补充标签或最终结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入 items -> 输出 items"的形态，方便打分更新、过滤截断、重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
