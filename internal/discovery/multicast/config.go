package multicast

import (
	"errors"
	"time"
)

const (
	// DefaultGroup 默认组播组
	DefaultGroup = "239.0.0.1"

	// DefaultPort 默认组播端口
	DefaultPort = 42000

	// DefaultFetchTimeout 拉取对端端点列表的 HTTP 超时
	DefaultFetchTimeout = 5 * time.Second
)

// Config 组播发现配置
type Config struct {
	// Group 组播组地址，默认 "239.0.0.1"
	Group string

	// Port 组播端口，默认 42000
	Port int

	// FetchTimeout 拉取对端端点列表的 HTTP 超时，默认 5s
	FetchTimeout time.Duration

	// Enabled 是否启用，默认 true
	Enabled bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Group:        DefaultGroup,
		Port:         DefaultPort,
		FetchTimeout: DefaultFetchTimeout,
		Enabled:      true,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Group == "" {
		return errors.New("group is empty")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("port out of range")
	}

	if c.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be positive")
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

// WithGroup 设置组播组地址
func WithGroup(group string) ConfigOption {
	return func(c *Config) {
		c.Group = group
	}
}

// WithPort 设置组播端口
func WithPort(port int) ConfigOption {
	return func(c *Config) {
		c.Port = port
	}
}

// WithFetchTimeout 设置 HTTP 拉取超时
func WithFetchTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.FetchTimeout = timeout
	}
}

// WithEnabled 设置是否启用
func WithEnabled(enabled bool) ConfigOption {
	return func(c *Config) {
		c.Enabled = enabled
	}
}
