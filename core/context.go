package core

import "github.com/rushteam/feedkit/pkg/utils"

// RecommendContext 承载单次 Feed 请求的用户/场景/实时信息，贯穿整个打分链路透传。
type RecommendContext struct {
	UserID string

	// Profile 是用户互动画像；缺失历史时为空画像（全零），不是 nil 错误。
	Profile *EngagementProfile

	// Following 是用户关注的作者集合，驱动网络相关性加分。
	Following map[string]struct{}

	// Labels 是请求级标签，可驱动过滤/解释/策略
	// 例如：degraded（预测器降级）、new_user 等
	Labels map[string]utils.Label

	// Params 请求级上下文参数：
	// - hour_of_day, day_of_week, device_class, seconds_since_last_interaction 等
	Params map[string]any
}

// IsFollowing 判断作者是否在用户关注集合中。
func (rctx *RecommendContext) IsFollowing(authorID string) bool {
	if rctx == nil || rctx.Following == nil {
		return false
	}
	_, ok := rctx.Following[authorID]
	return ok
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
