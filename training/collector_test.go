package training

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/feedkit/core"
)

type trainSpy struct {
	mu      sync.Mutex
	batches [][]core.TrainingRecord
	notify  chan int
	err     error
}

func newTrainSpy() *trainSpy {
	return &trainSpy{notify: make(chan int, 8)}
}

func (s *trainSpy) Name() string { return "spy" }
func (s *trainSpy) Predict(context.Context, *core.FeatureVector) (core.Prediction, error) {
	return core.Prediction{}, nil
}
func (s *trainSpy) Train(_ context.Context, batch []core.TrainingRecord) error {
	s.mu.Lock()
	s.batches = append(s.batches, batch)
	s.mu.Unlock()
	s.notify <- len(batch)
	return s.err
}

func (s *trainSpy) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func record(v float64) core.TrainingRecord {
	fv := core.NewFeatureVector()
	for i := range fv.Content {
		fv.Content[i] = v
	}
	return core.TrainingRecord{Features: *fv, Label: v}
}

func collectorConfig(batchSize int) *core.Config {
	cfg := core.DefaultConfig()
	cfg.BatchSize = batchSize
	return cfg
}

func TestCollector_ThresholdTriggersDrain(t *testing.T) {
	spy := newTrainSpy()
	c := NewCollector(collectorConfig(1000), spy, zerolog.Nop())

	for i := 0; i < 999; i++ {
		c.Add(record(0.5))
	}
	select {
	case n := <-spy.notify:
		t.Fatalf("999 records must not trigger training, got batch of %d", n)
	case <-time.After(50 * time.Millisecond):
	}
	if got := c.Pending(); got != 999 {
		t.Fatalf("Pending() = %d, want 999", got)
	}

	// 第 1000 条立即触发换出与训练
	c.Add(record(0.5))
	select {
	case n := <-spy.notify:
		if n != 1000 {
			t.Errorf("trained batch size = %d, want 1000", n)
		}
	case <-time.After(time.Second):
		t.Fatal("1000th record did not trigger training")
	}
	if got := c.Pending(); got != 0 {
		t.Errorf("Pending() after drain = %d, want 0", got)
	}
	c.Wait()
}

func TestCollector_FlushReleasesPartialBatch(t *testing.T) {
	spy := newTrainSpy()
	c := NewCollector(collectorConfig(1000), spy, zerolog.Nop())

	for i := 0; i < 10; i++ {
		c.Add(record(0.5))
	}
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if spy.calls() != 1 {
		t.Fatalf("Train calls = %d, want 1", spy.calls())
	}
	// 空缓冲再 Flush 不应触发训练
	if err := c.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if spy.calls() != 1 {
		t.Errorf("empty flush triggered training, calls = %d", spy.calls())
	}
}

func TestCollector_ConcurrentAdd(t *testing.T) {
	spy := newTrainSpy()
	c := NewCollector(collectorConfig(100000), spy, zerolog.Nop())

	var wg sync.WaitGroup
	const writers, perWriter = 8, 500
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				c.Add(record(0.5))
			}
		}()
	}
	wg.Wait()
	if got := c.Pending(); got != writers*perWriter {
		t.Errorf("Pending() = %d, want %d (no lost appends)", got, writers*perWriter)
	}
}

func TestCollector_TrainErrorIsolated(t *testing.T) {
	spy := newTrainSpy()
	spy.err = core.NewDomainError(core.ModulePredict, core.ErrorCodePredictorUnavailable, "down")
	c := NewCollector(collectorConfig(2), spy, zerolog.Nop())

	c.Add(record(0.5))
	c.Add(record(0.5))
	<-spy.notify
	c.Wait()

	// 失败的批次不回灌：缓冲保持干净，后续追加照常
	if got := c.Pending(); got != 0 {
		t.Errorf("Pending() after failed train = %d, want 0", got)
	}
	c.Add(record(0.5))
	if got := c.Pending(); got != 1 {
		t.Errorf("Pending() = %d, want 1", got)
	}
}

func TestClean_OutlierReplacedWithMean(t *testing.T) {
	batch := make([]core.TrainingRecord, 0, 101)
	for i := 0; i < 100; i++ {
		batch = append(batch, record(0.5))
	}
	// 构造一条在第 0 列偏离均值 50σ 的离群样本
	outlier := record(0.5)
	outlier.Features.Content[0] = 500
	batch = append(batch, outlier)

	cleaned := Clean(batch)
	got := cleaned[100].Features.Content[0]
	if got > 10 {
		t.Fatalf("outlier survived cleaning: %v", got)
	}
	// 替换值是批均值，不是 0：保持特征完整性
	mean := (0.5*100 + 500) / 101
	if math.Abs(got-mean) > 1e-9 {
		t.Errorf("outlier replaced with %v, want batch mean %v", got, mean)
	}
	// 其余样本保持不变
	if cleaned[0].Features.Content[0] != 0.5 {
		t.Errorf("in-range value mutated: %v", cleaned[0].Features.Content[0])
	}
}

func TestClean_NaNReplacedWithMean(t *testing.T) {
	batch := []core.TrainingRecord{record(0.2), record(0.4), record(0.6)}
	batch[1].Features.User[3] = math.NaN()
	batch[2].Label = math.Inf(1)

	cleaned := Clean(batch)
	if v := cleaned[1].Features.User[3]; math.IsNaN(v) {
		t.Error("NaN survived cleaning")
	}
	if v := cleaned[2].Label; math.IsInf(v, 0) {
		t.Error("Inf label survived cleaning")
	}
	// NaN 列的均值由其余有效值计算：(0+0)/2 = 0
	if v := cleaned[1].Features.User[3]; v != 0 {
		t.Errorf("User[3] = %v, want column mean 0", v)
	}
	// 标签列均值 = (0.2+0.4)/2 = 0.3
	if v := cleaned[2].Label; math.Abs(v-0.3) > 1e-9 {
		t.Errorf("Label = %v, want column mean 0.3", v)
	}
}

func TestClean_EmptyBatch(t *testing.T) {
	if got := Clean(nil); len(got) != 0 {
		t.Errorf("Clean(nil) = %v, want empty", got)
	}
}
