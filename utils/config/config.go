package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultSampleStep     = 1.0 // 默认参考线采样步长(m)
	DefaultNearestSamples = 64  // 默认最近点粗搜索的采样数
)

// RuntimeConfig 运行时配置
// 功能：存储运行时使用的配置信息，已填充默认值
// 说明：将YAML配置转换为运行时可用的配置对象
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置（已填充默认值）
}

// NewRuntimeConfig 校验配置并初始化运行时配置
// 功能：使用validator校验配置，随后填充默认值
// 参数：config-原始配置对象
// 返回：运行时配置指针，校验失败时返回error
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return newRuntimeConfig(config), nil
}

// DefaultRuntimeConfig 不依赖输入配置的默认运行时配置，供库调用与测试使用
func DefaultRuntimeConfig() *RuntimeConfig {
	return newRuntimeConfig(Config{})
}

func newRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{
		All: config,
		C:   config.Control,
	}
	if rc.C.Geometry.SampleStep <= 0 {
		rc.C.Geometry.SampleStep = DefaultSampleStep
	}
	if rc.C.Geometry.NearestSamples <= 0 {
		rc.C.Geometry.NearestSamples = DefaultNearestSamples
	}
	return rc
}
