package feature

import (
	"math"

	"github.com/rushteam/feedkit/core"
)

// NormalizeBatch 对一批特征向量做逐维 min-max 归一化（就地修改）。
//
// 规则：
//   - 归一化范围是"本次打分的批次"，不是全局统计
//   - NaN/Inf 原始值先替换为 0（缺失值默认 0），再参与归一化
//   - 某一维的 max == min 时（包括批次只有一个候选的退化情况），
//     该维全部输出 0.5，绝不产生 NaN/除零
//
// 归一化后的每个值都落在 [0,1]。
func NormalizeBatch(vectors []*core.FeatureVector) {
	if len(vectors) == 0 {
		return
	}

	normalizeSegment(vectors, func(fv *core.FeatureVector) []float64 { return fv.Content })
	normalizeSegment(vectors, func(fv *core.FeatureVector) []float64 { return fv.User })
	normalizeSegment(vectors, func(fv *core.FeatureVector) []float64 { return fv.Context })
}

// 各槽位的固定上限，用于没有批次可依的场景（训练样本逐条产生）。
// 顺序与 ContentSlots / UserSlots / ContextSlots 一致。
var (
	contentSlotCaps = []float64{100000, 10000, 1000, 1000, 1000000, 720, 16, 10000}
	userSlotCaps    = []float64{10000, 1000, 500, 500, 8, 100, 24, 720}
	contextSlotCaps = []float64{23, 6, 8, 86400}
)

// ScaleToUnit 用固定槽位上限把单条原始特征向量压进 [0,1]（就地修改）。
//
// 打分路径按候选批次做 min-max 归一化（NormalizeBatch）；训练样本没有
// 批次，改用固定上限缩放，保证训练与打分输入落在同一量纲。
// 超过上限的值截断为 1，负值与 NaN/Inf 归零。
func ScaleToUnit(fv *core.FeatureVector) {
	if fv == nil {
		return
	}
	scaleSlots(fv.Content, contentSlotCaps)
	scaleSlots(fv.User, userSlotCaps)
	scaleSlots(fv.Context, contextSlotCaps)
}

func scaleSlots(dst []float64, caps []float64) {
	for i := range dst {
		v := dst[i]
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			dst[i] = 0
			continue
		}
		limit := 1.0
		if i < len(caps) && caps[i] > 0 {
			limit = caps[i]
		}
		if v >= limit {
			dst[i] = 1
			continue
		}
		dst[i] = v / limit
	}
}

func normalizeSegment(vectors []*core.FeatureVector, segment func(*core.FeatureVector) []float64) {
	dim := 0
	for _, fv := range vectors {
		if fv == nil {
			continue
		}
		if s := segment(fv); len(s) > dim {
			dim = len(s)
		}
	}

	for d := 0; d < dim; d++ {
		min := math.Inf(1)
		max := math.Inf(-1)

		for _, fv := range vectors {
			if fv == nil {
				continue
			}
			s := segment(fv)
			if d >= len(s) {
				continue
			}
			// 缺失/非法值归零后再统计
			if math.IsNaN(s[d]) || math.IsInf(s[d], 0) {
				s[d] = 0
			}
			if s[d] < min {
				min = s[d]
			}
			if s[d] > max {
				max = s[d]
			}
		}

		span := max - min
		for _, fv := range vectors {
			if fv == nil {
				continue
			}
			s := segment(fv)
			if d >= len(s) {
				continue
			}
			if span <= 0 {
				s[d] = 0.5
				continue
			}
			s[d] = (s[d] - min) / span
		}
	}
}
