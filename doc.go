// Package feedkit 是个性化 Feed 推荐核心（Feed Kit）。
//
// 设计要点：
// - Pipeline-first: 打分链路通过 Node 串联（Score → Filter → Rerank）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 可替换预测器: 实现 core.Predictor 即可接入任意互动预测模型
// - 原子快照: 模型参数与热点索引整体替换，读取方永远看到完整版本
//
// 典型组装（composition root 持有全部实例，不用全局单例）：
//
//	cfg, _ := config.Load("feedkit.yaml")
//	kv := store.NewMemoryStore()
//	recorder := ingest.NewRecorder(kv, cfg.ProfileLookback(), logger)
//	model := predict.NewLogisticModel()
//	collector := training.NewCollector(cfg, model, logger)
//	idx := trending.NewIndex(cfg, contents, nil, logger)
//
//	engine, _ := feed.NewEngine(cfg, contents, users,
//	    feed.WithProfileBuilder(profile.NewBuilder(recorder, cfg.ProfileLookback())),
//	    feed.WithPredictor(model),
//	    feed.WithTrending(idx),
//	    feed.WithCache(feed.NewCache(kv, cfg.CacheTTLSeconds)),
//	    feed.WithCollector(collector),
//	    feed.WithRecorder(recorder),
//	    feed.WithLogger(logger),
//	)
//
//	sched := scheduler.New(logger)
//	sched.Add(&scheduler.Task{Name: "trending", Interval: cfg.TrendingInterval(), Run: idx.Recompute})
//	sched.Add(&scheduler.Task{Name: "retrain", Interval: cfg.RetrainInterval(), Run: collector.Flush})
//	sched.Start(ctx)
//
//	results, _ := engine.GetFeed(ctx, userID, 20)
package feedkit

import "github.com/rushteam/feedkit/pipeline"

// 轻量 facade：便于用户直接 import "feedkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindCandidate   = pipeline.KindCandidate
	KindScore       = pipeline.KindScore
	KindFilter      = pipeline.KindFilter
	KindRerank      = pipeline.KindRerank
	KindPostProcess = pipeline.KindPostProcess
)
