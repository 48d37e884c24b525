package feature

import (
	"math"
	"testing"

	"github.com/rushteam/feedkit/core"
)

func vectorWithContent(values ...float64) *core.FeatureVector {
	fv := core.NewFeatureVector()
	copy(fv.Content, values)
	return fv
}

func TestNormalizeBatch_Range(t *testing.T) {
	vectors := []*core.FeatureVector{
		vectorWithContent(0, 100, 5),
		vectorWithContent(50, 200, 5),
		vectorWithContent(100, 0, 5),
	}

	NormalizeBatch(vectors)

	for i, fv := range vectors {
		for d, v := range fv.Content {
			if v < 0 || v > 1 {
				t.Errorf("vector %d content[%d] = %v, want in [0,1]", i, d, v)
			}
			if math.IsNaN(v) {
				t.Errorf("vector %d content[%d] is NaN", i, d)
			}
		}
	}

	// 维度 0：0/50/100 → 0/0.5/1
	if vectors[0].Content[0] != 0 || vectors[1].Content[0] != 0.5 || vectors[2].Content[0] != 1 {
		t.Errorf("dim 0 = [%v %v %v], want [0 0.5 1]",
			vectors[0].Content[0], vectors[1].Content[0], vectors[2].Content[0])
	}
}

func TestNormalizeBatch_DegenerateDimension(t *testing.T) {
	// 维度 2 所有原始值相等 → 全部 0.5
	vectors := []*core.FeatureVector{
		vectorWithContent(1, 2, 7),
		vectorWithContent(3, 4, 7),
	}

	NormalizeBatch(vectors)

	for i, fv := range vectors {
		if fv.Content[2] != 0.5 {
			t.Errorf("vector %d degenerate dim = %v, want 0.5", i, fv.Content[2])
		}
	}
}

func TestNormalizeBatch_SingleCandidate(t *testing.T) {
	// 批次只有一个候选：所有维度退化为 0.5
	fv := vectorWithContent(42, 0, 7)
	NormalizeBatch([]*core.FeatureVector{fv})

	for d, v := range fv.Content {
		if v != 0.5 {
			t.Errorf("content[%d] = %v, want 0.5", d, v)
		}
	}
	for d, v := range fv.User {
		if v != 0.5 {
			t.Errorf("user[%d] = %v, want 0.5", d, v)
		}
	}
}

func TestNormalizeBatch_NaNReplaced(t *testing.T) {
	a := vectorWithContent(math.NaN(), 10)
	b := vectorWithContent(4, 20)

	NormalizeBatch([]*core.FeatureVector{a, b})

	// NaN → 0（缺失值），随后 min-max：0/4 → 0/1
	if a.Content[0] != 0 || b.Content[0] != 1 {
		t.Errorf("dim 0 = [%v %v], want [0 1]", a.Content[0], b.Content[0])
	}
	for _, fv := range []*core.FeatureVector{a, b} {
		for d, v := range fv.Content {
			if math.IsNaN(v) {
				t.Errorf("content[%d] is NaN after normalization", d)
			}
		}
	}
}

func TestScaleToUnit_Range(t *testing.T) {
	fv := core.NewFeatureVector()
	fv.Content[0] = 200000 // views 超过上限 → 截断为 1
	fv.Content[5] = 360    // age_hours 上限 720 → 0.5
	fv.User[0] = math.NaN()
	fv.User[1] = -3 // 负值归零
	fv.Context[0] = 23
	fv.Context[1] = 3 // day_of_week 上限 6 → 0.5
	fv.Context[3] = 86400

	ScaleToUnit(fv)

	for _, seg := range [][]float64{fv.Content, fv.User, fv.Context} {
		for d, v := range seg {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Errorf("slot %d = %v, want in [0,1]", d, v)
			}
		}
	}
	if fv.Content[0] != 1 {
		t.Errorf("capped views = %v, want 1", fv.Content[0])
	}
	if fv.Content[5] != 0.5 {
		t.Errorf("age_hours = %v, want 0.5", fv.Content[5])
	}
	if fv.User[0] != 0 || fv.User[1] != 0 {
		t.Errorf("NaN/negative = [%v %v], want [0 0]", fv.User[0], fv.User[1])
	}
	if fv.Context[0] != 1 || fv.Context[1] != 0.5 || fv.Context[3] != 1 {
		t.Errorf("context = [%v %v _ %v], want [1 0.5 _ 1]",
			fv.Context[0], fv.Context[1], fv.Context[3])
	}
}

func TestScaleToUnit_Nil(t *testing.T) {
	ScaleToUnit(nil) // 不 panic 即可
}

func TestNormalizeBatch_Empty(t *testing.T) {
	NormalizeBatch(nil) // 不 panic 即可
	NormalizeBatch([]*core.FeatureVector{})
}
