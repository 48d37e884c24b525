package core

import (
	"time"

	"github.com/rushteam/feedkit/pkg/utils"
)

// Content 是候选内容的元信息，由外部内容仓库提供。
// 打分链路只读取，不回写。
type Content struct {
	ID          string
	AuthorID    string
	Type        string // post / article / video / image ...
	Topics      []string
	Text        string
	PublishedAt time.Time
	Stats       ContentStats
}

// ContentStats 是内容的互动统计，作为内容侧原始特征的来源。
type ContentStats struct {
	Views    int64
	Likes    int64
	Comments int64
	Shares   int64

	// AuthorFollowers 作者粉丝数（内容侧特征之一）
	AuthorFollowers int64
}

// EngagementWeight 返回按交互权重加权的互动热度（view=1 like=2 share=3 comment=4）。
// 相对大小有意义，绝对数值不做归一化。
func (s ContentStats) EngagementWeight() float64 {
	return float64(s.Views)*1 + float64(s.Likes)*2 + float64(s.Shares)*3 + float64(s.Comments)*4
}

// Item 是打分链路中的统一承载结构：内容、特征、各阶段分数、标签。
// Labels 用于解释与策略驱动；FinalScore 用于最终排序决策。
type Item struct {
	Content *Content

	// BaseScore 规则侧基础分（偏好匹配 + 网络相关 + 时段匹配 + 热点加成，含时间衰减）
	BaseScore float64

	// EngagementScore / Confidence 来自 Predictor
	EngagementScore float64
	Confidence      float64

	// FinalScore = BaseScore*recommendation_weight + EngagementScore*engagement_weight
	FinalScore float64

	// Features 归一化后的特征向量（按批次 min-max 归一化）
	Features *FeatureVector

	Labels map[string]utils.Label
}

func NewItem(content *Content) *Item {
	return &Item{
		Content: content,
		Labels:  make(map[string]utils.Label),
	}
}

// ID 返回内容 ID；Content 为空时返回空字符串。
func (it *Item) ID() string {
	if it.Content == nil {
		return ""
	}
	return it.Content.ID
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Result 导出为对外的推荐结果。
func (it *Item) Result() RecommendationResult {
	return RecommendationResult{
		ContentID:       it.ID(),
		BaseScore:       it.BaseScore,
		EngagementScore: it.EngagementScore,
		Confidence:      it.Confidence,
		FinalScore:      it.FinalScore,
	}
}

// RecommendationResult 是对外返回（以及写入 Feed 缓存）的推荐结果条目。
// 每次请求重新计算或由缓存命中返回，不做长期持久化。
type RecommendationResult struct {
	ContentID       string  `json:"content_id"`
	BaseScore       float64 `json:"base_score"`
	EngagementScore float64 `json:"engagement_score"`
	Confidence      float64 `json:"confidence"`
	FinalScore      float64 `json:"final_score"`
}
