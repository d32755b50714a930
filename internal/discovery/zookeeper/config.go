package zookeeper

import (
	"errors"
	"time"
)

const (
	// DefaultSessionTimeout 默认会话超时
	DefaultSessionTimeout = 10 * time.Second
)

// Config ZooKeeper 配置
type Config struct {
	// Servers 集群地址列表
	Servers []string

	// SessionTimeout 会话超时；临时节点随会话消失
	SessionTimeout time.Duration

	// Enabled 是否启用，默认 true
	Enabled bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Servers:        []string{"127.0.0.1:2181"},
		SessionTimeout: DefaultSessionTimeout,
		Enabled:        true,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if len(c.Servers) == 0 {
		return errors.New("servers list is empty")
	}
	for _, server := range c.Servers {
		if server == "" {
			return errors.New("empty server address")
		}
	}

	if c.SessionTimeout <= 0 {
		return errors.New("session timeout must be positive")
	}

	return nil
}

// ApplyOptions 应用配置选项
func (c *Config) ApplyOptions(opts ...ConfigOption) {
	for _, opt := range opts {
		opt(c)
	}
}

// ConfigOption 配置选项函数
type ConfigOption func(*Config)

// WithServers 设置集群地址列表
func WithServers(servers ...string) ConfigOption {
	return func(c *Config) {
		c.Servers = servers
	}
}

// WithSessionTimeout 设置会话超时
func WithSessionTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.SessionTimeout = timeout
	}
}

// WithEnabled 设置是否启用
func WithEnabled(enabled bool) ConfigOption {
	return func(c *Config) {
		c.Enabled = enabled
	}
}
