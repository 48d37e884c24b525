// Package config 加载推荐核心配置：默认值 ← YAML 文件 ← 环境变量，逐层覆盖。
package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/feedkit/core"
)

// Load 按 默认值 → YAML → 环境变量 的顺序加载配置。
// path 为空表示没有配置文件，只用默认值和环境变量。
// 非法或缺失的字段回退到默认值（Normalize），最后整体校验。
func Load(path string) (*core.Config, error) {
	cfg := core.DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleFeed, core.ErrorCodeInvalidInput,
				"read config file: "+err.Error())
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, core.NewDomainError(core.ModuleFeed, core.ErrorCodeInvalidInput,
				"parse config file: "+err.Error())
		}
	}

	// 环境变量优先级最高（FEEDKIT_* 前缀，见 core.Config 的 env 标签）
	if err := env.Parse(cfg); err != nil {
		return nil, core.NewDomainError(core.ModuleFeed, core.ErrorCodeInvalidInput,
			"parse env overrides: "+err.Error())
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
