package predict

import (
	"math"

	"github.com/rushteam/feedkit/core"
)

// scoreConfidence 根据输入信号的完整度与离散度估计置信度。
//
// 完整度 = 非零特征占比；离散度 = 标准差相对上限（归一化特征的
// 标准差上限为 0.5）的比值。两者加权：低信息输入（全零、或几乎没有
// 区分度）必然得到低置信度，绝不给"假高分"。
func scoreConfidence(fv *core.FeatureVector) float64 {
	if fv == nil {
		return 0
	}
	flat := fv.Flatten()
	if len(flat) == 0 {
		return 0
	}

	nonZero := 0
	sum := 0.0
	for _, v := range flat {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		if v != 0 {
			nonZero++
		}
		sum += v
	}
	n := float64(len(flat))
	completeness := float64(nonZero) / n

	mean := sum / n
	variance := 0.0
	for _, v := range flat {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		d := v - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / n)
	spread := math.Min(1, stddev/0.5)

	return completeness*0.7 + spread*0.3
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
