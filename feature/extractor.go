// Package feature 把 (内容, 用户, 上下文) 三元组转换为定长归一化特征向量。
package feature

import (
	"context"
	"time"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/conv"
)

// 各段特征的槽位名称，顺序即向量下标。
// FeatureService 返回的远程特征按同名槽位覆盖本地原始值。
var (
	ContentSlots = []string{
		"views", "likes", "comments", "shares",
		"author_followers", "age_hours", "topic_count", "text_length",
	}
	UserSlots = []string{
		"views", "likes", "comments", "shares",
		"engaged_type_count", "max_type_engagement", "active_hour_count", "profile_age_hours",
	}
	ContextSlots = []string{
		"hour_of_day", "day_of_week", "device_class", "seconds_since_last_interaction",
	}
)

// Extractor 是特征抽取器的统一接口，采用策略模式。
//
// 返回的是"原始"特征向量；归一化在整个候选批次上统一做
// （见 NormalizeBatch），抽取器本身不做缩放。
//
// 通过实现此接口，可以完全自定义特征抽取逻辑，无需修改库代码。
type Extractor interface {
	// Extract 对单个候选内容抽取原始特征
	Extract(ctx context.Context, rctx *core.RecommendContext, content *core.Content) (*core.FeatureVector, error)

	// Name 返回抽取器名称（用于日志/监控）
	Name() string
}

// DefaultExtractor 是默认的特征抽取器实现。
//
// 抽取策略：
//   - 内容侧：互动统计、作者粉丝数、内容年龄、主题数、文本长度
//   - 用户侧：画像交互计数、互动类型分布、活跃时段数、画像年龄
//   - 上下文侧：RecommendContext.Params 中的 hour_of_day / day_of_week /
//     device_class / seconds_since_last_interaction
//   - 缺失的原始值取 0（归一化前）
//   - 如果配置了 FeatureService，远程特征按槽位名覆盖本地值；
//     远程失败静默回退本地值（特征服务是增强，不是依赖）
type DefaultExtractor struct {
	// Features 远程特征服务（可选）
	Features core.FeatureService

	// now 可注入时钟，便于测试
	now func() time.Time
}

// Option 是 DefaultExtractor 的配置选项。
type Option func(*DefaultExtractor)

// WithFeatureService 设置远程特征服务（命中时按槽位覆盖本地值）。
func WithFeatureService(fs core.FeatureService) Option {
	return func(e *DefaultExtractor) {
		e.Features = fs
	}
}

// WithClock 注入时钟（测试用）。
func WithClock(now func() time.Time) Option {
	return func(e *DefaultExtractor) {
		e.now = now
	}
}

// NewDefaultExtractor 创建默认特征抽取器。
func NewDefaultExtractor(opts ...Option) *DefaultExtractor {
	e := &DefaultExtractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *DefaultExtractor) Name() string { return "default" }

func (e *DefaultExtractor) Extract(ctx context.Context, rctx *core.RecommendContext, content *core.Content) (*core.FeatureVector, error) {
	fv := core.NewFeatureVector()

	e.fillContent(fv.Content, content)
	e.fillUser(fv.User, rctx)
	e.fillContext(fv.Context, rctx)

	// 远程特征按槽位覆盖（失败回退本地值）
	if e.Features != nil {
		if content != nil && content.ID != "" {
			if remote, err := e.Features.GetContentFeatures(ctx, content.ID); err == nil {
				overlaySlots(fv.Content, ContentSlots, remote)
			}
		}
		if rctx != nil && rctx.UserID != "" {
			if remote, err := e.Features.GetUserFeatures(ctx, rctx.UserID); err == nil {
				overlaySlots(fv.User, UserSlots, remote)
			}
		}
	}

	return fv, nil
}

func (e *DefaultExtractor) fillContent(dst []float64, content *core.Content) {
	if content == nil {
		return
	}
	dst[0] = float64(content.Stats.Views)
	dst[1] = float64(content.Stats.Likes)
	dst[2] = float64(content.Stats.Comments)
	dst[3] = float64(content.Stats.Shares)
	dst[4] = float64(content.Stats.AuthorFollowers)
	if !content.PublishedAt.IsZero() {
		age := e.now().Sub(content.PublishedAt)
		if age > 0 {
			dst[5] = age.Hours()
		}
	}
	dst[6] = float64(len(content.Topics))
	dst[7] = float64(len(content.Text))
}

func (e *DefaultExtractor) fillUser(dst []float64, rctx *core.RecommendContext) {
	if rctx == nil || rctx.Profile == nil {
		return
	}
	p := rctx.Profile
	dst[0] = float64(p.Counts.Views)
	dst[1] = float64(p.Counts.Likes)
	dst[2] = float64(p.Counts.Comments)
	dst[3] = float64(p.Counts.Shares)
	dst[4] = float64(len(p.ContentTypeEngagement))
	maxEngagement := 0.0
	for _, v := range p.ContentTypeEngagement {
		if v > maxEngagement {
			maxEngagement = v
		}
	}
	dst[5] = maxEngagement
	dst[6] = float64(len(p.ActiveHours))
	if !p.ComputedAt.IsZero() {
		if age := e.now().Sub(p.ComputedAt); age > 0 {
			dst[7] = age.Hours()
		}
	}
}

func (e *DefaultExtractor) fillContext(dst []float64, rctx *core.RecommendContext) {
	if rctx == nil || rctx.Params == nil {
		return
	}
	for i, slot := range ContextSlots {
		if v, ok := conv.ToFloat64(rctx.Params[slot]); ok {
			dst[i] = v
		}
	}
}

// overlaySlots 把远程特征 map 按槽位名覆盖到向量上。
func overlaySlots(dst []float64, slots []string, remote map[string]float64) {
	for i, slot := range slots {
		if v, ok := remote[slot]; ok {
			dst[i] = v
		}
	}
}

// CustomExtractor 是自定义特征抽取器，允许完全自定义抽取逻辑。
type CustomExtractor struct {
	name    string
	extract func(ctx context.Context, rctx *core.RecommendContext, content *core.Content) (*core.FeatureVector, error)
}

// NewCustomExtractor 创建自定义特征抽取器。
func NewCustomExtractor(name string, extract func(ctx context.Context, rctx *core.RecommendContext, content *core.Content) (*core.FeatureVector, error)) *CustomExtractor {
	return &CustomExtractor{name: name, extract: extract}
}

func (e *CustomExtractor) Name() string { return e.name }

func (e *CustomExtractor) Extract(ctx context.Context, rctx *core.RecommendContext, content *core.Content) (*core.FeatureVector, error) {
	if e.extract == nil {
		return core.NewFeatureVector(), nil
	}
	return e.extract(ctx, rctx, content)
}
