package builders

import (
	_ "embed"
	"fmt"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/config"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pipeline"
)

//go:embed default_pipeline.yaml
var defaultPipelineYAML []byte

// DefaultPipelineConfig 返回内置的主链路配置：目录召回 → 冷却过滤 → VSM 排序 → Top50 → MMR。
func DefaultPipelineConfig() (*pipeline.Config, error) {
	return pipeline.Parse(defaultPipelineYAML, pipeline.FormatYAML)
}

// Build 校验并构建 Pipeline；cfg 为 nil 时使用内置配置。
func Build(cfg *pipeline.Config) (*pipeline.Pipeline, error) {
	if cfg == nil {
		var err error
		if cfg, err = DefaultPipelineConfig(); err != nil {
			return nil, err
		}
	}
	if err := config.ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	p, err := cfg.BuildPipeline(config.DefaultFactory())
	if err != nil {
		return nil, fmt.Errorf("build pipeline %q: %w", cfg.Pipeline.Name, err)
	}
	return p, nil
}
