package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pipeline"
)

// 内置 Node 由 config/builders 在 init 中注册；只用 Settings 而不用 Pipeline 配置时无需引入。

type NodeBuilder = pipeline.NodeBuilder

var (
	registryMu sync.RWMutex
	registry   = pipeline.NewNodeFactory()
)

// Register 注册 Node 类型。重复注册同一类型会 panic，与 database/sql 的驱动注册一致。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		panic("config: Register with empty type or nil builder")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if registry.Has(typeName) {
		panic(fmt.Sprintf("config: node type %q registered twice", typeName))
	}
	registry.Register(typeName, builder)
}

// SupportedTypes 返回已注册的 Node 类型（排序）。
func SupportedTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry.Types()
}

// DefaultFactory 返回注册表的快照，之后的 Register 不影响它。
func DefaultFactory() *pipeline.NodeFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry.Clone()
}

// ValidatePipelineConfig 一次报告所有缺失或未注册的 Node 类型。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return errors.New("pipeline config is nil")
	}
	registryMu.RLock()
	defer registryMu.RUnlock()

	var errs []error
	for i, nc := range cfg.Pipeline.Nodes {
		switch {
		case nc.Type == "":
			errs = append(errs, fmt.Errorf("node #%d: missing type", i))
		case !registry.Has(nc.Type):
			errs = append(errs, fmt.Errorf("node #%d: unsupported type %q", i, nc.Type))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("pipeline %q: %w (supported: %v)", cfg.Pipeline.Name, errors.Join(errs...), registry.Types())
	}
	return nil
}
