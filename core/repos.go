package core

import (
	"context"
	"time"
)

// CandidateFilter 是候选内容查询条件。
type CandidateFilter struct {
	// Types 限定内容类型（为空不限定）
	Types []string

	// Since 只返回该时刻之后发布的内容（零值不限定）
	Since time.Time

	// Exclude 排除的内容 ID
	Exclude []string

	// Limit 最大返回条数（<=0 由实现决定默认值）
	Limit int
}

// ContentRepository 是内容仓库的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由外部系统实现
//   - 推荐核心只消费候选集与主题，不持久化内容
type ContentRepository interface {
	// ListCandidates 按条件获取候选内容（应大于最终 limit，留出过滤余量）
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]*Content, error)

	// GetContentTopics 获取内容的主题列表
	GetContentTopics(ctx context.Context, contentID string) ([]string, error)
}

// UserRepository 是用户仓库的领域接口。
type UserRepository interface {
	// GetFollowing 获取用户关注的作者集合
	GetFollowing(ctx context.Context, userID string) (map[string]struct{}, error)

	// GetInteractionHistory 获取用户在时间窗口内的交互事件
	GetInteractionHistory(ctx context.Context, userID string, window time.Duration) ([]InteractionEvent, error)
}

// EventSource 是交互事件历史的最小读取接口（UserRepository 的子集）。
// ingest.Recorder 与外部用户仓库都满足它。
type EventSource interface {
	GetInteractionHistory(ctx context.Context, userID string, window time.Duration) ([]InteractionEvent, error)
}

// Analysis 是内容分析服务的输出。
type Analysis struct {
	Topics    []string
	Sentiment float64 // [-1,1]
}

// AnalysisService 是可选的外部内容分析服务（主题/情感抽取）。
// 失败必须降级为空主题处理，不得作为致命错误向上传播。
type AnalysisService interface {
	// Name 返回服务名称（用于日志/监控）
	Name() string

	Analyze(ctx context.Context, text string) (*Analysis, error)
}

// TrendingEntry 是热点索引中的一个条目，Score 在每轮重算后归一化到 [0,1]。
type TrendingEntry struct {
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

// TrendingReader 是热点索引的只读视图，由打分器消费。
// 实现必须保证读取到的是完整快照（每轮整体替换，不存在半更新状态）。
type TrendingReader interface {
	// Score 返回主题的归一化热度；未知主题返回 0
	Score(topic string) float64

	// ComputedAt 返回当前快照的计算时间（新鲜度判断）
	ComputedAt() time.Time
}
