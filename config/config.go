// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Discovery.EnableMQTT = true
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

import (
	"encoding/json"

	"go.uber.org/multierr"
)

// Config 是 RemoteSvc 的完整配置结构
//
// 配置按照功能模块组织：
//   - Dispatch: 调度器 servlet 与共享 HTTP 服务器
//   - Discovery: 五种可互换的发现后端
type Config struct {
	// Dispatch 调度配置
	Dispatch DispatchConfig `json:"dispatch"`

	// Discovery 发现配置
	Discovery DiscoveryConfig `json:"discovery"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Dispatch:  DefaultDispatchConfig(),
		Discovery: DefaultDiscoveryConfig(),
	}
}

// FromJSON 从 JSON 数据加载配置
//
// 未出现的字段保持默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToJSON 序列化配置
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "    ")
}

// Validate 递归验证所有子配置（聚合全部错误）
func (c *Config) Validate() error {
	return multierr.Combine(
		c.Dispatch.Validate(),
		c.Discovery.Validate(),
	)
}
