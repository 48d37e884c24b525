package core

import "context"

// FeatureService 是特征服务的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（feature）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 使用场景：
//   - 获取用户原始特征：画像统计、历史行为计数等
//   - 获取内容原始特征：互动统计、作者统计等
//
// 注意：请求级上下文特征（hour_of_day、device_class 等）通过
// RecommendContext.Params 传递，不经过 FeatureService。
//
// 实现：
//   - feature.FeastService（远程 Feature Store）实现此接口
//   - 其他特征后端（Redis、HTTP 等）也可以实现此接口
type FeatureService interface {
	// Name 返回特征服务名称（用于日志/监控）
	Name() string

	// GetUserFeatures 获取用户原始特征（key 为特征名）
	GetUserFeatures(ctx context.Context, userID string) (map[string]float64, error)

	// GetContentFeatures 获取内容原始特征
	GetContentFeatures(ctx context.Context, contentID string) (map[string]float64, error)

	// Close 关闭特征服务，释放资源
	Close(ctx context.Context) error
}
