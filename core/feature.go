package core

import "context"

// 特征向量的固定维度。三段各自定长，归一化后每个值都在 [0,1]。
const (
	ContentFeatureDim = 8
	UserFeatureDim    = 8
	ContextFeatureDim = 4
)

// FeatureVector 是 (内容, 用户, 上下文) 三段定长特征向量。
// 派生数据：每次打分重新计算，不做长期持久化。
type FeatureVector struct {
	Content []float64 `json:"content"`
	User    []float64 `json:"user"`
	Context []float64 `json:"context"`
}

// NewFeatureVector 创建全零特征向量。
func NewFeatureVector() *FeatureVector {
	return &FeatureVector{
		Content: make([]float64, ContentFeatureDim),
		User:    make([]float64, UserFeatureDim),
		Context: make([]float64, ContextFeatureDim),
	}
}

// Flatten 按 content → user → context 顺序拼接为单个向量。
func (fv *FeatureVector) Flatten() []float64 {
	out := make([]float64, 0, ContentFeatureDim+UserFeatureDim+ContextFeatureDim)
	out = append(out, fv.Content...)
	out = append(out, fv.User...)
	out = append(out, fv.Context...)
	return out
}

// Prediction 是 Predictor 的输出：预测互动概率 + 自评置信度，均在 [0,1]。
type Prediction struct {
	Engagement float64 `json:"engagement"`
	Confidence float64 `json:"confidence"`
}

// TrainingRecord 是一条训练样本：特征向量 + 互动标签（[0,1]）。
type TrainingRecord struct {
	Features FeatureVector `json:"features"`
	Label    float64       `json:"label"`
}

// Predictor 是互动预测器的领域接口：可替换单元。
//
// 契约：
//   - Predict 返回的 Engagement/Confidence 必须落在 [0,1]
//   - Confidence 必须反映输入信号完整度与离散度：低信息输入必须给低置信度，
//     绝不允许"假高分"
//   - Train 异步幂等（按批次），且不得阻塞并发的 Predict：
//     旧模型持续服务，新模型就绪后原子切换
//   - 预测器不可用时返回 PREDICTOR_UNAVAILABLE 领域错误，由调用方降级处理
//
// 实现：
//   - predict.Heuristic：规则启发式（无需训练）
//   - predict.LogisticModel：逻辑回归，支持批量重训练
//   - 外部打分服务也可以实现此接口
type Predictor interface {
	// Name 返回预测器名称（用于日志/监控）
	Name() string

	// Predict 对单条特征向量给出互动预测
	Predict(ctx context.Context, fv *FeatureVector) (Prediction, error)

	// Train 用一批清洗后的训练样本重训练模型
	Train(ctx context.Context, batch []TrainingRecord) error
}
