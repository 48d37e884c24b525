package predict

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rushteam/feedkit/core"
)

// featureDim 是展平后特征向量的总维度。
const featureDim = core.ContentFeatureDim + core.UserFeatureDim + core.ContextFeatureDim

// LogisticModel 实现了逻辑回归 (Logistic Regression) 预测器。
// 它是互动概率预估最基础也最经典的算法。
//
// 预测原理：
// 1. 线性加权求和: z = Bias + sum(Weight_i * Feature_i)
// 2. Sigmoid 变换: P = 1 / (1 + exp(-z))
//
// 并发契约：参数以不可变快照承载，Predict 读当前快照，
// Train 在副本上做批量梯度下降、训练完成后原子切换。
// 重训练期间旧快照持续服务，读取方永远看不到半更新的参数。
type LogisticModel struct {
	snapshot atomic.Pointer[lrSnapshot]

	// trainMu 串行化重训练：并发的 Train（定时 Flush 撞上缓冲区
	// 满触发）如果各自从同一份旧快照出发，后存的会覆盖先存的学习成果
	trainMu sync.Mutex

	// LearningRate / Epochs 训练超参
	LearningRate float64
	Epochs       int
}

// lrSnapshot 是一份不可变的参数快照。
type lrSnapshot struct {
	Bias      float64   `json:"bias"`
	Weights   []float64 `json:"weights"`
	Version   int64     `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
}

// NewLogisticModel 创建全零参数的逻辑回归预测器。
func NewLogisticModel() *LogisticModel {
	m := &LogisticModel{
		LearningRate: 0.1,
		Epochs:       10,
	}
	m.snapshot.Store(&lrSnapshot{Weights: make([]float64, featureDim)})
	return m
}

// LoadLogisticModel 从 JSON 文件加载参数快照。
func LoadLogisticModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap lrSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if len(snap.Weights) != featureDim {
		return nil, core.NewDomainError(core.ModulePredict, core.ErrorCodeInvalidInput,
			"model weight dimension mismatch")
	}
	m := NewLogisticModel()
	m.snapshot.Store(&snap)
	return m, nil
}

func (m *LogisticModel) Name() string { return "lr" }

// Version 返回当前快照的版本号（每次成功重训练递增）。
func (m *LogisticModel) Version() int64 { return m.snapshot.Load().Version }

// Save 将当前参数快照写入 JSON 文件。
func (m *LogisticModel) Save(path string) error {
	data, err := json.Marshal(m.snapshot.Load())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (m *LogisticModel) Predict(_ context.Context, fv *core.FeatureVector) (core.Prediction, error) {
	if fv == nil {
		return core.Prediction{}, core.NewDomainError(core.ModulePredict, core.ErrorCodeInvalidInput,
			"feature vector is nil")
	}
	snap := m.snapshot.Load()

	flat := fv.Flatten()
	z := snap.Bias
	for i, v := range flat {
		if i >= len(snap.Weights) {
			break
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		z += snap.Weights[i] * v
	}
	return core.Prediction{
		Engagement: clamp01(sigmoid(z)),
		Confidence: clamp01(scoreConfidence(fv)),
	}, nil
}

// Train 用一批清洗后的样本做批量梯度下降，完成后原子切换参数快照。
// 训练从当前快照的副本出发，不影响并发的 Predict。空批次直接返回。
// 多个 Train 之间互斥，后来者接着前一次的结果继续训练。
func (m *LogisticModel) Train(ctx context.Context, batch []core.TrainingRecord) error {
	if len(batch) == 0 {
		return nil
	}

	m.trainMu.Lock()
	defer m.trainMu.Unlock()

	old := m.snapshot.Load()
	next := &lrSnapshot{
		Bias:    old.Bias,
		Weights: append([]float64(nil), old.Weights...),
	}

	// 展平一次，训练轮次内复用
	flats := make([][]float64, 0, len(batch))
	labels := make([]float64, 0, len(batch))
	for _, rec := range batch {
		flat := rec.Features.Flatten()
		if len(flat) != featureDim {
			continue
		}
		flats = append(flats, flat)
		labels = append(labels, clamp01(rec.Label))
	}
	if len(flats) == 0 {
		return nil
	}

	for epoch := 0; epoch < m.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, flat := range flats {
			z := next.Bias
			for j, v := range flat {
				z += next.Weights[j] * v
			}
			// 梯度 = (sigmoid(z) - label) * x
			g := sigmoid(z) - labels[i]
			next.Bias -= m.LearningRate * g
			for j, v := range flat {
				next.Weights[j] -= m.LearningRate * g * v
			}
		}
	}

	next.Version = old.Version + 1
	next.TrainedAt = time.Now()
	m.snapshot.Store(next)
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

var _ core.Predictor = (*LogisticModel)(nil)
