package core

import "time"

// Config 是推荐核心的全部可调参数。
//
// 源码中散落的固定常数（0.6/0.4 融合权重、0.3/0.4/0.3 规则加分等）在这里
// 统一暴露为默认配置而非硬编码；周期/TTL 类参数按秒配置。
type Config struct {
	// 分数融合：FinalScore = BaseScore*RecommendationWeight + EngagementScore*EngagementWeight
	// 两个权重不要求和为 1。
	RecommendationWeight float64 `yaml:"recommendation_weight" env:"FEEDKIT_RECOMMENDATION_WEIGHT"`
	EngagementWeight     float64 `yaml:"engagement_weight" env:"FEEDKIT_ENGAGEMENT_WEIGHT"`

	// MinConfidence 置信度门槛：低于此值的结果被过滤。
	// 指针类型以区分"未配置"（回填默认 0.7）与显式的 0（关闭门槛）。
	MinConfidence *float64 `yaml:"min_confidence" env:"FEEDKIT_MIN_CONFIDENCE"`

	// 混合打分器的规则加分与热点权重
	TypeMatchBonus  float64 `yaml:"type_match_bonus" env:"FEEDKIT_TYPE_MATCH_BONUS"`
	NetworkBonus    float64 `yaml:"network_bonus" env:"FEEDKIT_NETWORK_BONUS"`
	ActiveHourBonus float64 `yaml:"active_hour_bonus" env:"FEEDKIT_ACTIVE_HOUR_BONUS"`
	TrendingWeight  float64 `yaml:"trending_weight" env:"FEEDKIT_TRENDING_WEIGHT"`

	// RecencyHalfLifeHours 指数时间衰减的半衰期（小时）
	RecencyHalfLifeHours int `yaml:"recency_half_life_hours" env:"FEEDKIT_RECENCY_HALF_LIFE_HOURS"`

	// TopPreferredTypes / TopActiveHours 偏好匹配取前 N
	TopPreferredTypes int `yaml:"top_preferred_types" env:"FEEDKIT_TOP_PREFERRED_TYPES"`
	TopActiveHours    int `yaml:"top_active_hours" env:"FEEDKIT_TOP_ACTIVE_HOURS"`

	// CandidateMultiplier 候选集超采倍数：候选数 = limit * multiplier
	CandidateMultiplier int `yaml:"candidate_multiplier" env:"FEEDKIT_CANDIDATE_MULTIPLIER"`

	// BatchSize 训练缓冲区的批次大小（达到即触发清洗+重训练）
	BatchSize int `yaml:"batch_size" env:"FEEDKIT_BATCH_SIZE"`

	// 周期任务间隔 / TTL（秒）
	RetrainIntervalSeconds  int `yaml:"retrain_interval_seconds" env:"FEEDKIT_RETRAIN_INTERVAL_SECONDS"`
	CacheTTLSeconds         int `yaml:"cache_ttl_seconds" env:"FEEDKIT_CACHE_TTL_SECONDS"`
	TrendingIntervalSeconds int `yaml:"trending_recompute_interval_seconds" env:"FEEDKIT_TRENDING_INTERVAL_SECONDS"`

	// TrendingLookbackHours 热点重算扫描的内容发布窗口（小时）
	TrendingLookbackHours int `yaml:"trending_lookback_hours" env:"FEEDKIT_TRENDING_LOOKBACK_HOURS"`

	// ProfileLookbackDays 画像聚合的事件回看窗口（天）
	ProfileLookbackDays int `yaml:"profile_lookback_days" env:"FEEDKIT_PROFILE_LOOKBACK_DAYS"`

	// StaleAfterSeconds 画像/热点索引的新鲜度阈值，超过只告警不阻断
	StaleAfterSeconds int `yaml:"stale_after_seconds" env:"FEEDKIT_STALE_AFTER_SECONDS"`

	// SingleFlight 同一用户并发 GetFeed 是否合并计算
	SingleFlight bool `yaml:"single_flight" env:"FEEDKIT_SINGLE_FLIGHT"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		RecommendationWeight:    0.6,
		EngagementWeight:        0.4,
		MinConfidence:           Float64(0.7),
		TypeMatchBonus:          0.3,
		NetworkBonus:            0.4,
		ActiveHourBonus:         0.3,
		TrendingWeight:          0.2,
		RecencyHalfLifeHours:    168, // 7 天
		TopPreferredTypes:       3,
		TopActiveHours:          6,
		CandidateMultiplier:     3,
		BatchSize:               1000,
		RetrainIntervalSeconds:  3600,
		CacheTTLSeconds:         300,
		TrendingIntervalSeconds: 3600,
		TrendingLookbackHours:   24,
		ProfileLookbackDays:     30,
		StaleAfterSeconds:       7200,
		SingleFlight:            true,
	}
}

// Normalize 把零值字段回填为默认值，返回自身便于链式调用。
func (c *Config) Normalize() *Config {
	def := DefaultConfig()
	if c.RecommendationWeight <= 0 {
		c.RecommendationWeight = def.RecommendationWeight
	}
	if c.EngagementWeight <= 0 {
		c.EngagementWeight = def.EngagementWeight
	}
	if c.MinConfidence == nil {
		c.MinConfidence = def.MinConfidence
	}
	if c.TypeMatchBonus <= 0 {
		c.TypeMatchBonus = def.TypeMatchBonus
	}
	if c.NetworkBonus <= 0 {
		c.NetworkBonus = def.NetworkBonus
	}
	if c.ActiveHourBonus <= 0 {
		c.ActiveHourBonus = def.ActiveHourBonus
	}
	if c.TrendingWeight <= 0 {
		c.TrendingWeight = def.TrendingWeight
	}
	if c.RecencyHalfLifeHours <= 0 {
		c.RecencyHalfLifeHours = def.RecencyHalfLifeHours
	}
	if c.TopPreferredTypes <= 0 {
		c.TopPreferredTypes = def.TopPreferredTypes
	}
	if c.TopActiveHours <= 0 {
		c.TopActiveHours = def.TopActiveHours
	}
	if c.CandidateMultiplier <= 0 {
		c.CandidateMultiplier = def.CandidateMultiplier
	}
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.RetrainIntervalSeconds <= 0 {
		c.RetrainIntervalSeconds = def.RetrainIntervalSeconds
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = def.CacheTTLSeconds
	}
	if c.TrendingIntervalSeconds <= 0 {
		c.TrendingIntervalSeconds = def.TrendingIntervalSeconds
	}
	if c.TrendingLookbackHours <= 0 {
		c.TrendingLookbackHours = def.TrendingLookbackHours
	}
	if c.ProfileLookbackDays <= 0 {
		c.ProfileLookbackDays = def.ProfileLookbackDays
	}
	if c.StaleAfterSeconds <= 0 {
		c.StaleAfterSeconds = def.StaleAfterSeconds
	}
	return c
}

// Validate 校验配置的合法性。
func (c *Config) Validate() error {
	if g := c.ConfidenceGate(); g < 0 || g > 1 {
		return NewDomainError(ModuleFeed, ErrorCodeInvalidInput, "min_confidence must be in [0,1]")
	}
	if c.RecommendationWeight < 0 || c.EngagementWeight < 0 {
		return NewDomainError(ModuleFeed, ErrorCodeInvalidInput, "blend weights must be >= 0")
	}
	return nil
}

// ConfidenceGate 返回置信度门槛；0 表示门槛关闭（全部放行）。
func (c *Config) ConfidenceGate() float64 {
	if c.MinConfidence == nil {
		return 0
	}
	return *c.MinConfidence
}

// Float64 返回 v 的指针，便于填写可选配置字段。
func Float64(v float64) *float64 { return &v }

// 周期/TTL 的 time.Duration 便捷视图。

func (c *Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }

func (c *Config) RetrainInterval() time.Duration {
	return time.Duration(c.RetrainIntervalSeconds) * time.Second
}

func (c *Config) TrendingInterval() time.Duration {
	return time.Duration(c.TrendingIntervalSeconds) * time.Second
}

func (c *Config) TrendingLookback() time.Duration {
	return time.Duration(c.TrendingLookbackHours) * time.Hour
}

func (c *Config) RecencyHalfLife() time.Duration {
	return time.Duration(c.RecencyHalfLifeHours) * time.Hour
}

func (c *Config) ProfileLookback() time.Duration {
	return time.Duration(c.ProfileLookbackDays) * 24 * time.Hour
}

func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterSeconds) * time.Second
}
