package filter

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/feedkit/core"
)

// SeenFilter 过滤掉用户近期已经交互过的内容，避免重复推荐。
// 曝光历史来自交互事件日志（core.EventSource）。
//
// 历史在首次调用时按用户惰性加载一次并缓存在过滤器实例内，
// 因此实例按请求创建，不要跨请求复用。事件源不可达时放行（不因
// 曝光历史缺失而拦截整个链路）。
type SeenFilter struct {
	// Source 交互事件来源
	Source core.EventSource

	// Window 回看窗口；零值表示不限定
	Window time.Duration

	once sync.Once
	seen map[string]struct{}
}

func NewSeenFilter(source core.EventSource, window time.Duration) *SeenFilter {
	return &SeenFilter{Source: source, Window: window}
}

func (f *SeenFilter) Name() string {
	return "filter.seen"
}

func (f *SeenFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || rctx.UserID == "" || f.Source == nil {
		return false, nil
	}

	f.once.Do(func() {
		events, err := f.Source.GetInteractionHistory(ctx, rctx.UserID, f.Window)
		if err != nil {
			return
		}
		f.seen = make(map[string]struct{}, len(events))
		for _, ev := range events {
			f.seen[ev.ContentID] = struct{}{}
		}
	})

	_, ok := f.seen[item.ID()]
	return ok, nil
}
