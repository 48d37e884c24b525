// Package rerank 实现排序与截断节点。
package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
)

// TopNNode 按 FinalScore 降序排序并截取前 N 个候选。
// 同分时按 PublishedAt 新者在前，保证排序结果稳定可复现。
//
// 如果 N <= 0 或候选数不足 N，只排序不截断。
type TopNNode struct {
	// N 要保留的候选数量
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindRerank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		// 同分：新发布的在前
		if a.Content != nil && b.Content != nil {
			return a.Content.PublishedAt.After(b.Content.PublishedAt)
		}
		return false
	})

	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}

var _ pipeline.Node = (*TopNNode)(nil)
