// Package profile 把交互事件历史聚合为用户互动画像。
package profile

import (
	"context"
	"time"

	"github.com/rushteam/feedkit/core"
)

// Builder 是用户互动画像的唯一产出方。
//
// 算法：
//   - 每个事件按类型固定权重（view=1 like=2 share=3 comment=4）累积到对应内容类型
//   - 权重只比较相对大小，不做跨类型归一化
//   - 活跃时段是 24 小时桶的事件频次直方图，按频次降序得到偏好时段列表
//
// 失败语义：历史缺失/为空时产出空但合法的画像（全零），绝不返回错误——
// 调用方把空画像视为"无信号，回退到通用打分"。
type Builder struct {
	// Source 事件来源：ingest.Recorder 或外部用户仓库
	Source core.EventSource

	// Lookback 事件回看窗口
	Lookback time.Duration

	// MaxEvents 单次聚合的事件数上限（<=0 不限制）
	MaxEvents int
}

// NewBuilder 创建画像构建器。
func NewBuilder(source core.EventSource, lookback time.Duration) *Builder {
	return &Builder{
		Source:   source,
		Lookback: lookback,
	}
}

// Build 拉取用户的交互历史并聚合为画像。
// 历史拉取失败或为空时返回空画像，不返回错误。
func (b *Builder) Build(ctx context.Context, userID string) (*core.EngagementProfile, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleProfile, core.ErrorCodeInvalidInput, "user id is required")
	}

	var events []core.InteractionEvent
	if b.Source != nil {
		got, err := b.Source.GetInteractionHistory(ctx, userID, b.Lookback)
		if err == nil {
			events = got
		}
	}
	if b.MaxEvents > 0 && len(events) > b.MaxEvents {
		// 保留最近的 MaxEvents 条
		events = events[len(events)-b.MaxEvents:]
	}

	return BuildFromEvents(userID, events), nil
}

// BuildFromEvents 从给定的事件列表直接聚合画像（纯函数，便于测试与离线重算）。
func BuildFromEvents(userID string, events []core.InteractionEvent) *core.EngagementProfile {
	p := core.NewEngagementProfile(userID)

	var hourCounts [24]int
	for _, ev := range events {
		if !ev.Type.Valid() {
			continue
		}

		if ev.ContentType != "" {
			p.ContentTypeEngagement[ev.ContentType] += ev.Type.Weight()
		}

		switch ev.Type {
		case core.InteractionView:
			p.Counts.Views++
		case core.InteractionLike:
			p.Counts.Likes++
		case core.InteractionComment:
			p.Counts.Comments++
		case core.InteractionShare:
			p.Counts.Shares++
		}

		if !ev.Timestamp.IsZero() {
			hourCounts[ev.Timestamp.Hour()]++
		}
	}

	p.ActiveHours = rankHours(hourCounts)
	p.ComputedAt = time.Now()
	return p
}

// rankHours 把 24 桶直方图转为按频次降序的小时列表，零频次的小时不进入列表。
func rankHours(counts [24]int) []int {
	hours := make([]int, 0, 24)
	for h, c := range counts {
		if c > 0 {
			hours = append(hours, h)
		}
	}
	// 频次降序；相同频次按小时升序保证稳定
	for i := 1; i < len(hours); i++ {
		for j := i; j > 0; j-- {
			a, b := hours[j-1], hours[j]
			if counts[b] > counts[a] || (counts[b] == counts[a] && b < a) {
				hours[j-1], hours[j] = hours[j], hours[j-1]
			}
		}
	}
	return hours
}
