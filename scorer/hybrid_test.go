package scorer

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rushteam/feedkit/core"
)

type stubTrending struct {
	scores map[string]float64
	at     time.Time
}

func (s *stubTrending) Score(topic string) float64 { return s.scores[topic] }
func (s *stubTrending) ComputedAt() time.Time      { return s.at }

func testClock() time.Time {
	return time.Date(2026, 8, 15, 20, 0, 0, 0, time.UTC)
}

func newScorer(trending core.TrendingReader) *HybridScorer {
	s := NewHybridScorer(core.DefaultConfig(), trending)
	s.Now = testClock
	return s
}

func richProfile() *core.EngagementProfile {
	p := core.NewEngagementProfile("u1")
	p.ContentTypeEngagement = map[string]float64{"post": 50, "video": 10}
	p.ActiveHours = []int{20, 8, 13}
	p.Counts.Views = 60
	return p
}

func TestHybridScorer_AllFourComponents(t *testing.T) {
	trending := &stubTrending{scores: map[string]float64{"go": 0.8}, at: testClock()}
	s := newScorer(trending)

	rctx := &core.RecommendContext{
		UserID:    "u1",
		Profile:   richProfile(),
		Following: map[string]struct{}{"a1": {}},
	}

	// C：关注作者 + 偏好类型 + 活跃时段（20 点）发布 + 热点主题 0.8
	c := core.NewItem(&core.Content{
		ID: "C", AuthorID: "a1", Type: "post", Topics: []string{"go"},
		PublishedAt: time.Date(2026, 8, 14, 20, 0, 0, 0, time.UTC),
	})

	// D：除四路信号全不命中外与 C 等价
	d := core.NewItem(&core.Content{
		ID: "D", AuthorID: "a9", Type: "image", Topics: []string{"cooking"},
		PublishedAt: time.Date(2026, 8, 14, 3, 0, 0, 0, time.UTC),
	})

	items, err := s.Process(context.Background(), rctx, []*core.Item{d, c})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	var scoreC, scoreD float64
	for _, it := range items {
		switch it.ID() {
		case "C":
			scoreC = it.BaseScore
		case "D":
			scoreD = it.BaseScore
		}
	}

	// C 命中全部四路信号：0.3 + 0.4 + 0.3 + 0.8*0.2 = 1.16，再乘衰减
	age := testClock().Sub(time.Date(2026, 8, 14, 20, 0, 0, 0, time.UTC))
	want := 1.16 * math.Exp2(-age.Hours()/168)
	if math.Abs(scoreC-want) > 1e-9 {
		t.Errorf("score(C) = %v, want %v", scoreC, want)
	}
	if scoreD != 0 {
		t.Errorf("score(D) = %v, want 0", scoreD)
	}
	if scoreC <= scoreD {
		t.Errorf("score(C)=%v must rank above score(D)=%v", scoreC, scoreD)
	}

	// 命中信号写入了解释标签
	lbl, ok := items[1].Labels["score_components"]
	if !ok {
		t.Fatal("missing score_components label on C")
	}
	if lbl.Value != "type_match+network+active_hour+trending" {
		t.Errorf("score_components = %q", lbl.Value)
	}
}

func TestHybridScorer_RecencyDecay(t *testing.T) {
	s := newScorer(nil)

	rctx := &core.RecommendContext{
		UserID:    "u1",
		Profile:   richProfile(),
		Following: map[string]struct{}{"a1": {}},
	}

	fresh := core.NewItem(&core.Content{
		ID: "fresh", AuthorID: "a1", Type: "post",
		PublishedAt: testClock().Add(-24 * time.Hour),
	})
	aged := core.NewItem(&core.Content{
		ID: "aged", AuthorID: "a1", Type: "post",
		PublishedAt: testClock().Add(-14 * 24 * time.Hour),
	})
	// 两条信号命中完全相同，只差发布时间
	items, err := s.Process(context.Background(), rctx, []*core.Item{fresh, aged})
	if err != nil {
		t.Fatal(err)
	}

	if items[0].BaseScore <= items[1].BaseScore {
		t.Errorf("fresh=%v should outscore aged=%v", items[0].BaseScore, items[1].BaseScore)
	}
	// 两周 = 两个半衰期：衰减到 1/4 左右
	if items[1].BaseScore <= 0 {
		t.Errorf("aged score = %v, decay must not zero out the score", items[1].BaseScore)
	}
}

func TestHybridScorer_EmptyProfileNoSignal(t *testing.T) {
	s := newScorer(nil)

	rctx := &core.RecommendContext{UserID: "u1", Profile: core.NewEngagementProfile("u1")}
	it := core.NewItem(&core.Content{
		ID: "x", AuthorID: "a1", Type: "post",
		PublishedAt: testClock().Add(-time.Hour),
	})

	if _, err := s.Process(context.Background(), rctx, []*core.Item{it}); err != nil {
		t.Fatal(err)
	}
	if it.BaseScore != 0 {
		t.Errorf("empty profile base score = %v, want 0 (no signal)", it.BaseScore)
	}
}

func TestHybridScorer_NilContentSkipped(t *testing.T) {
	s := newScorer(nil)
	items := []*core.Item{nil, {Content: nil}}
	if _, err := s.Process(context.Background(), &core.RecommendContext{}, items); err != nil {
		t.Fatalf("Process() with nil entries error = %v", err)
	}
}

func TestHybridScorer_TrendingAverage(t *testing.T) {
	trending := &stubTrending{scores: map[string]float64{"go": 1.0, "rust": 0.5}}
	s := newScorer(trending)
	s.HalfLife = 0 // 关掉衰减便于断言

	it := core.NewItem(&core.Content{
		ID: "x", AuthorID: "a1", Type: "post", Topics: []string{"go", "rust", "unknown"},
		PublishedAt: testClock().Add(-time.Hour),
	})
	rctx := &core.RecommendContext{UserID: "u1"}

	if _, err := s.Process(context.Background(), rctx, []*core.Item{it}); err != nil {
		t.Fatal(err)
	}
	// (1.0+0.5+0)/3 * 0.2 = 0.1
	if math.Abs(it.BaseScore-0.1) > 1e-9 {
		t.Errorf("trending-only score = %v, want 0.1", it.BaseScore)
	}
}
