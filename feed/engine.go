package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/feature"
	"github.com/rushteam/feedkit/filter"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/predict"
	"github.com/rushteam/feedkit/rerank"
	"github.com/rushteam/feedkit/scorer"
)

// ProfileBuilder 构建用户互动画像。profile.Builder 实现此接口。
type ProfileBuilder interface {
	Build(ctx context.Context, userID string) (*core.EngagementProfile, error)
}

// Recorder 记录交互事件。ingest.Recorder 实现此接口。
type Recorder interface {
	Record(ctx context.Context, ev core.InteractionEvent) error
}

// TrainingCollector 接收训练样本。training.Collector 实现此接口。
type TrainingCollector interface {
	Add(rec core.TrainingRecord)
}

// Engine 是推荐编排器：组合仓库、画像、特征、打分、预测、过滤与缓存，
// 对外提供 GetFeed 与 RecordInteraction 两个入口。
//
// GetFeed 流程：
//  1. 校验输入 → 查缓存，命中直接返回
//  2. 并发获取候选集 / 关注集合 / 用户画像
//     （候选或关注失败对本次请求致命；画像失败降级为空画像）
//  3. 批量抽取特征并按批归一化
//  4. 走打分 pipeline：规则基础分 → 预测融合 → 置信度过滤 → TopN
//  5. 写缓存并返回
//
// 预测器不可用时整批降级为 base-score-only（合成置信度 1.0），只记日志。
// 同用户并发请求可选 single-flight 合并，避免缓存击穿。
type Engine struct {
	cfg *core.Config

	contents core.ContentRepository
	users    core.UserRepository

	profiles  ProfileBuilder
	extractor feature.Extractor
	predictor core.Predictor
	trending  core.TrendingReader
	cache     *Cache
	collector TrainingCollector
	recorder  Recorder
	events    core.EventSource

	ruleExpr string

	log zerolog.Logger
	sf  singleflight.Group
}

// EngineOption 是 Engine 的配置选项。
type EngineOption func(*Engine)

// WithProfileBuilder 设置画像构建器；缺省时所有请求使用空画像。
func WithProfileBuilder(b ProfileBuilder) EngineOption {
	return func(e *Engine) { e.profiles = b }
}

// WithExtractor 覆盖默认特征抽取器。
func WithExtractor(ex feature.Extractor) EngineOption {
	return func(e *Engine) { e.extractor = ex }
}

// WithPredictor 设置互动预测器；缺省时恒走降级路径。
func WithPredictor(p core.Predictor) EngineOption {
	return func(e *Engine) { e.predictor = p }
}

// WithTrending 设置热点索引只读视图。
func WithTrending(tr core.TrendingReader) EngineOption {
	return func(e *Engine) { e.trending = tr }
}

// WithCache 设置 Feed 缓存；缺省不缓存。
func WithCache(c *Cache) EngineOption {
	return func(e *Engine) { e.cache = c }
}

// WithCollector 设置训练数据收集器；缺省不收集。
func WithCollector(c TrainingCollector) EngineOption {
	return func(e *Engine) { e.collector = c }
}

// WithRecorder 设置交互事件记录器；缺省只更新训练缓冲不落事件日志。
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

// WithSeenSource 设置曝光历史来源，过滤近期已交互内容。
func WithSeenSource(src core.EventSource) EngineOption {
	return func(e *Engine) { e.events = src }
}

// WithRuleExpr 追加一条 CEL 过滤规则（见 filter.RuleFilter）。
func WithRuleExpr(expr string) EngineOption {
	return func(e *Engine) { e.ruleExpr = expr }
}

// WithLogger 设置日志器；缺省 Nop。
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) { e.log = logger }
}

// NewEngine 创建推荐编排器。contents 与 users 是必需依赖，其余走选项。
func NewEngine(cfg *core.Config, contents core.ContentRepository, users core.UserRepository, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if err := cfg.Normalize().Validate(); err != nil {
		return nil, err
	}
	if contents == nil || users == nil {
		return nil, core.NewDomainError(core.ModuleFeed, core.ErrorCodeInvalidInput,
			"content and user repositories are required")
	}

	e := &Engine{
		cfg:      cfg,
		contents: contents,
		users:    users,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With().Str("component", "feed").Logger()
	if e.extractor == nil {
		e.extractor = feature.NewDefaultExtractor()
	}
	return e, nil
}

// GetFeed 返回对该用户按 FinalScore 降序排列的至多 limit 条推荐结果。
func (e *Engine) GetFeed(ctx context.Context, userID string, limit int) ([]core.RecommendationResult, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleFeed, core.ErrorCodeInvalidInput, "user id is required")
	}
	if limit <= 0 {
		return nil, core.NewDomainError(core.ModuleFeed, core.ErrorCodeInvalidInput, "limit must be positive")
	}

	if e.cache != nil {
		if results, ok := e.cache.Get(ctx, userID); ok {
			e.log.Debug().Str("user_id", userID).Msg("feed cache hit")
			return clip(results, limit), nil
		}
	}

	if !e.cfg.SingleFlight {
		return e.computeFeed(ctx, userID, limit)
	}

	key := fmt.Sprintf("%s:%d", userID, limit)
	v, err, shared := e.sf.Do(key, func() (any, error) {
		return e.computeFeed(ctx, userID, limit)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		e.log.Debug().Str("user_id", userID).Msg("feed computation shared via single-flight")
	}
	return v.([]core.RecommendationResult), nil
}

func (e *Engine) computeFeed(ctx context.Context, userID string, limit int) ([]core.RecommendationResult, error) {
	start := time.Now()

	var (
		candidates []*core.Content
		following  map[string]struct{}
		prof       *core.EngagementProfile
	)

	// 外部查询并发执行，都在任何共享临界区之外
	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		candidates, err = e.contents.ListCandidates(egctx, core.CandidateFilter{
			Limit: limit * e.cfg.CandidateMultiplier,
		})
		if err != nil {
			return core.NewDomainError(core.ModuleFeed, core.ErrorCodeUpstreamUnavailable,
				"list candidates: "+err.Error())
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		following, err = e.users.GetFollowing(egctx, userID)
		if err != nil {
			return core.NewDomainError(core.ModuleFeed, core.ErrorCodeUpstreamUnavailable,
				"get following: "+err.Error())
		}
		return nil
	})
	eg.Go(func() error {
		// 画像缺失可降级：空画像打分，不拦截请求
		if e.profiles == nil {
			prof = core.NewEngagementProfile(userID)
			return nil
		}
		p, err := e.profiles.Build(egctx, userID)
		if err != nil {
			e.log.Warn().Err(err).Str("user_id", userID).Msg("profile build failed, using empty profile")
			p = core.NewEngagementProfile(userID)
		}
		prof = p
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []core.RecommendationResult{}, nil
	}

	e.checkFreshness(userID, prof)

	rctx := &core.RecommendContext{
		UserID:    userID,
		Profile:   prof,
		Following: following,
	}

	items := make([]*core.Item, 0, len(candidates))
	vectors := make([]*core.FeatureVector, 0, len(candidates))
	for _, content := range candidates {
		if content == nil {
			continue
		}
		it := core.NewItem(content)
		fv, err := e.extractor.Extract(ctx, rctx, content)
		if err != nil || fv == nil {
			fv = core.NewFeatureVector()
		}
		it.Features = fv
		items = append(items, it)
		vectors = append(vectors, fv)
	}
	feature.NormalizeBatch(vectors)

	items, err := e.buildPipeline(limit).Run(ctx, rctx, items)
	if err != nil {
		return nil, err
	}

	results := make([]core.RecommendationResult, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		results = append(results, it.Result())
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, userID, results); err != nil {
			e.log.Warn().Err(err).Str("user_id", userID).Msg("feed cache write failed")
		}
	}

	e.log.Info().
		Str("user_id", userID).
		Int("candidates", len(candidates)).
		Int("results", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("feed computed")
	return results, nil
}

// buildPipeline 组装单次请求的打分链路。
func (e *Engine) buildPipeline(limit int) *pipeline.Pipeline {
	filters := []filter.Filter{filter.NewConfidenceFilter(e.cfg.ConfidenceGate())}
	if e.events != nil {
		filters = append(filters, filter.NewSeenFilter(e.events, e.cfg.ProfileLookback()))
	}
	if e.ruleExpr != "" {
		filters = append(filters, filter.NewRuleFilter(e.ruleExpr))
	}

	return &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			scorer.NewHybridScorer(e.cfg, e.trending),
			predict.NewEngagementNode(e.cfg, e.predictor, e.log),
			&filter.FilterNode{Filters: filters},
			&rerank.TopNNode{N: limit},
		},
	}
}

// checkFreshness 对画像与热点索引做新鲜度检查：超阈值只告警，不阻断。
func (e *Engine) checkFreshness(userID string, prof *core.EngagementProfile) {
	staleAfter := e.cfg.StaleAfter()
	if staleAfter <= 0 {
		return
	}
	if prof != nil && !prof.ComputedAt.IsZero() && prof.Age() > staleAfter {
		e.log.Warn().
			Str("user_id", userID).
			Dur("age", prof.Age()).
			Str("code", core.ErrorCodeStaleData).
			Msg("engagement profile is stale")
	}
	if e.trending != nil {
		at := e.trending.ComputedAt()
		if !at.IsZero() && time.Since(at) > staleAfter {
			e.log.Warn().
				Dur("age", time.Since(at)).
				Str("code", core.ErrorCodeStaleData).
				Msg("trending index is stale")
		}
	}
}

// RecordInteraction 记录一条交互事件：写事件日志、喂训练缓冲，
// 强信号（comment/share）同时失效该用户的 Feed 缓存。
func (e *Engine) RecordInteraction(ctx context.Context, ev core.InteractionEvent) error {
	if ev.UserID == "" || ev.ContentID == "" {
		return core.NewDomainError(core.ModuleFeed, core.ErrorCodeInvalidInput,
			"user id and content id are required")
	}
	if !ev.Type.Valid() {
		return core.NewDomainError(core.ModuleFeed, core.ErrorCodeInvalidInput,
			"unknown interaction type: "+string(ev.Type))
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, ev); err != nil {
			return err
		}
	}

	if e.collector != nil {
		e.collector.Add(e.trainingRecord(ctx, ev))
	}

	// 强信号改变网络相关性/偏好，下一次 GetFeed 重新计算
	if e.cache != nil && (ev.Type == core.InteractionComment || ev.Type == core.InteractionShare) {
		if err := e.cache.Invalidate(ctx, ev.UserID); err != nil {
			e.log.Warn().Err(err).Str("user_id", ev.UserID).Msg("feed cache invalidation failed")
		}
	}
	return nil
}

// trainingRecord 把交互事件转成训练样本：特征尽力抽取，标签按交互权重归一。
func (e *Engine) trainingRecord(ctx context.Context, ev core.InteractionEvent) core.TrainingRecord {
	content := &core.Content{ID: ev.ContentID}
	if topics, err := e.contents.GetContentTopics(ctx, ev.ContentID); err == nil {
		content.Topics = topics
	}

	rctx := &core.RecommendContext{UserID: ev.UserID, Params: ev.Context}
	fv, err := e.extractor.Extract(ctx, rctx, content)
	if err != nil || fv == nil {
		fv = core.NewFeatureVector()
	}
	// 打分时预测器吃的是批内归一化后的 [0,1] 向量，训练样本
	// 必须落在同一量纲，否则每次重训练都在放大权重
	feature.ScaleToUnit(fv)

	// 标签 = 交互权重 / 最大权重（comment=4）
	return core.TrainingRecord{Features: *fv, Label: ev.Type.Weight() / 4}
}

func clip(results []core.RecommendationResult, limit int) []core.RecommendationResult {
	if len(results) <= limit {
		return results
	}
	return results[:limit]
}
