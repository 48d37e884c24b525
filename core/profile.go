package core

import "time"

// InteractionType 是交互事件类型。
type InteractionType string

const (
	InteractionView    InteractionType = "view"
	InteractionLike    InteractionType = "like"
	InteractionShare   InteractionType = "share"
	InteractionComment InteractionType = "comment"
)

// Weight 返回交互类型的固定权重，随交互成本/意图单调递增：
// view=1 < like=2 < share=3 < comment=4。
func (t InteractionType) Weight() float64 {
	switch t {
	case InteractionView:
		return 1
	case InteractionLike:
		return 2
	case InteractionShare:
		return 3
	case InteractionComment:
		return 4
	default:
		return 0
	}
}

// Valid 判断交互类型是否合法。
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionLike, InteractionShare, InteractionComment:
		return true
	}
	return false
}

// InteractionEvent 是原始交互事件：不可变、追加写入、不回改。
// 保留一个滚动窗口后归档/清理。
type InteractionEvent struct {
	UserID      string          `json:"user_id"`
	ContentID   string          `json:"content_id"`
	ContentType string          `json:"content_type,omitempty"`
	Type        InteractionType `json:"type"`
	Timestamp   time.Time       `json:"timestamp"`
	Context     map[string]any  `json:"context,omitempty"`
}

// InteractionCounts 是按类型的交互总数统计。
type InteractionCounts struct {
	Views    int `json:"views"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

// Total 返回所有交互的总次数。
func (c InteractionCounts) Total() int {
	return c.Views + c.Likes + c.Comments + c.Shares
}

// EngagementProfile 是用户互动画像：由交互事件历史聚合而来。
//
// 设计要点：
//   - 由 profile.Builder 独占产出；消费方只读
//   - 接受过期（最终一致），但必须携带 ComputedAt 供新鲜度判断
//   - 空历史产出空画像（全零），不是错误
type EngagementProfile struct {
	UserID string `json:"user_id"`

	// ContentTypeEngagement 各内容类型累积的加权互动分。
	// 只比较相对大小，不做归一化。
	ContentTypeEngagement map[string]float64 `json:"content_type_engagement"`

	// ActiveHours 24 小时桶按事件频次降序排列后的小时列表（偏好时段在前）。
	ActiveHours []int `json:"active_hours"`

	// Counts 按交互类型的总量
	Counts InteractionCounts `json:"counts"`

	// ComputedAt 画像的计算时间（新鲜度时间戳）
	ComputedAt time.Time `json:"computed_at"`
}

// NewEngagementProfile 创建一个空但合法的画像（无信号时的回退）。
func NewEngagementProfile(userID string) *EngagementProfile {
	return &EngagementProfile{
		UserID:                userID,
		ContentTypeEngagement: make(map[string]float64),
		ActiveHours:           make([]int, 0),
		ComputedAt:            time.Now(),
	}
}

// Empty 判断画像是否没有任何信号。
func (p *EngagementProfile) Empty() bool {
	return p == nil || p.Counts.Total() == 0
}

// TopContentTypes 返回累积互动分最高的前 n 个内容类型（降序）。
func (p *EngagementProfile) TopContentTypes(n int) []string {
	if p == nil || len(p.ContentTypeEngagement) == 0 || n <= 0 {
		return nil
	}
	types := make([]string, 0, len(p.ContentTypeEngagement))
	for t := range p.ContentTypeEngagement {
		types = append(types, t)
	}
	// 插入排序足够：内容类型数量很小
	for i := 1; i < len(types); i++ {
		for j := i; j > 0; j-- {
			a, b := types[j-1], types[j]
			if p.ContentTypeEngagement[b] > p.ContentTypeEngagement[a] ||
				(p.ContentTypeEngagement[b] == p.ContentTypeEngagement[a] && b < a) {
				types[j-1], types[j] = types[j], types[j-1]
			}
		}
	}
	if len(types) > n {
		types = types[:n]
	}
	return types
}

// PrefersType 判断内容类型是否在用户最偏好的前 n 个类型中。
func (p *EngagementProfile) PrefersType(contentType string, n int) bool {
	for _, t := range p.TopContentTypes(n) {
		if t == contentType {
			return true
		}
	}
	return false
}

// IsActiveHour 判断 hour 是否在用户最活跃的前 n 个时段中。
func (p *EngagementProfile) IsActiveHour(hour, n int) bool {
	if p == nil || n <= 0 {
		return false
	}
	hours := p.ActiveHours
	if len(hours) > n {
		hours = hours[:n]
	}
	for _, h := range hours {
		if h == hour {
			return true
		}
	}
	return false
}

// Age 返回画像距今的时长，用于新鲜度告警。
func (p *EngagementProfile) Age() time.Duration {
	if p == nil || p.ComputedAt.IsZero() {
		return 0
	}
	return time.Since(p.ComputedAt)
}
