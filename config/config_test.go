package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/feedkit/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feedkit.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := core.DefaultConfig()
	if cfg.ConfidenceGate() != def.ConfidenceGate() || cfg.BatchSize != def.BatchSize {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "min_confidence: 0.5\nbatch_size: 200\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ConfidenceGate() != 0.5 {
		t.Errorf("MinConfidence = %v, want 0.5", cfg.ConfidenceGate())
	}
	if cfg.BatchSize != 200 {
		t.Errorf("BatchSize = %d, want 200", cfg.BatchSize)
	}
	// 未覆盖的字段保持默认
	if cfg.CacheTTLSeconds != core.DefaultConfig().CacheTTLSeconds {
		t.Errorf("CacheTTLSeconds = %d, want default", cfg.CacheTTLSeconds)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "min_confidence: 0.5\n")
	t.Setenv("FEEDKIT_MIN_CONFIDENCE", "0.9")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ConfidenceGate() != 0.9 {
		t.Errorf("MinConfidence = %v, want env override 0.9", cfg.ConfidenceGate())
	}
}

func TestLoad_ZeroConfidenceGateExpressible(t *testing.T) {
	// min_confidence: 0 是合法配置（关闭门槛），不得被回填成默认 0.7
	path := writeConfig(t, "min_confidence: 0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ConfidenceGate() != 0 {
		t.Errorf("ConfidenceGate() = %v, want 0 (gate off)", cfg.ConfidenceGate())
	}
}

func TestLoad_InvalidValueRejected(t *testing.T) {
	path := writeConfig(t, "min_confidence: 1.5\n")
	if _, err := Load(path); !core.IsInvalidInput(err) {
		t.Errorf("Load() error = %v, want INVALID_INPUT", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/feedkit.yaml"); !core.IsInvalidInput(err) {
		t.Errorf("Load(missing) error = %v, want INVALID_INPUT", err)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "min_confidence: [not a number\n")
	if _, err := Load(path); !core.IsInvalidInput(err) {
		t.Errorf("Load(malformed) error = %v, want INVALID_INPUT", err)
	}
}
