package predict

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rushteam/feedkit/core"
)

type stubPredictor struct {
	pred core.Prediction
	err  error
}

func (s *stubPredictor) Name() string { return "stub" }
func (s *stubPredictor) Predict(context.Context, *core.FeatureVector) (core.Prediction, error) {
	return s.pred, s.err
}
func (s *stubPredictor) Train(context.Context, []core.TrainingRecord) error { return nil }

func newNode(p core.Predictor) *EngagementNode {
	return NewEngagementNode(core.DefaultConfig(), p, zerolog.Nop())
}

func TestEngagementNode_Blend(t *testing.T) {
	n := newNode(&stubPredictor{pred: core.Prediction{Engagement: 0.5, Confidence: 0.9}})

	it := core.NewItem(&core.Content{ID: "a"})
	it.BaseScore = 1.0
	it.Features = core.NewFeatureVector()

	if _, err := n.Process(context.Background(), nil, []*core.Item{it}); err != nil {
		t.Fatal(err)
	}
	// 1.0*0.6 + 0.5*0.4 = 0.8
	if math.Abs(it.FinalScore-0.8) > 1e-9 {
		t.Errorf("FinalScore = %v, want 0.8", it.FinalScore)
	}
	if it.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", it.Confidence)
	}
}

func TestEngagementNode_DegradeOnError(t *testing.T) {
	n := newNode(&stubPredictor{err: core.NewDomainError(
		core.ModulePredict, core.ErrorCodePredictorUnavailable, "model offline")})

	items := []*core.Item{
		core.NewItem(&core.Content{ID: "a"}),
		core.NewItem(&core.Content{ID: "b"}),
	}
	items[0].BaseScore = 0.5
	items[1].BaseScore = 0.2

	out, err := n.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("degradation must not surface an error, got %v", err)
	}
	for _, it := range out {
		if it.Confidence != 1.0 {
			t.Errorf("degraded Confidence = %v, want synthetic 1.0", it.Confidence)
		}
		if it.EngagementScore != 0 {
			t.Errorf("degraded EngagementScore = %v, want 0", it.EngagementScore)
		}
		if math.Abs(it.FinalScore-it.BaseScore*0.6) > 1e-9 {
			t.Errorf("degraded FinalScore = %v, want base-only %v", it.FinalScore, it.BaseScore*0.6)
		}
		if _, ok := it.Labels["degraded"]; !ok {
			t.Error("degraded item missing degraded label")
		}
	}
}

func TestEngagementNode_NilPredictorDegrades(t *testing.T) {
	n := newNode(nil)
	it := core.NewItem(&core.Content{ID: "a"})
	it.BaseScore = 1.0

	if _, err := n.Process(context.Background(), nil, []*core.Item{it}); err != nil {
		t.Fatal(err)
	}
	if it.Confidence != 1.0 || it.FinalScore != 0.6 {
		t.Errorf("Confidence=%v FinalScore=%v, want 1.0 / 0.6", it.Confidence, it.FinalScore)
	}
}

func TestEngagementNode_ContextCancelDegrades(t *testing.T) {
	n := newNode(&stubPredictor{pred: core.Prediction{Engagement: 0.5, Confidence: 0.9}})
	it := core.NewItem(&core.Content{ID: "a"})
	it.BaseScore = 1.0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := n.Process(ctx, nil, []*core.Item{it}); err != nil {
		t.Fatalf("cancelled context must degrade, not error: %v", err)
	}
	if it.Confidence != 1.0 || it.EngagementScore != 0 {
		t.Errorf("Confidence=%v EngagementScore=%v, want degraded 1.0 / 0", it.Confidence, it.EngagementScore)
	}
}

func TestEngagementNode_NaNNeverPropagates(t *testing.T) {
	n := newNode(&stubPredictor{pred: core.Prediction{Engagement: math.NaN(), Confidence: 0.9}})
	it := core.NewItem(&core.Content{ID: "a"})
	it.BaseScore = math.NaN()

	if _, err := n.Process(context.Background(), nil, []*core.Item{it}); err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(it.FinalScore) {
		t.Error("FinalScore is NaN, must clamp to minimum score")
	}
	if math.IsNaN(it.EngagementScore) {
		t.Error("EngagementScore is NaN, must clamp")
	}
}
