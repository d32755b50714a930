package mdns

import (
	"errors"
	"strings"
	"time"
)

const (
	// DefaultServiceType mDNS 服务类型
	DefaultServiceType = "_remotesvc._tcp"

	// DefaultDomain mDNS 域
	DefaultDomain = "local."

	// DefaultTTL 服务记录存活时间
	DefaultTTL = 60 * time.Second
)

// Config mDNS 配置
type Config struct {
	// ServiceType mDNS 服务类型，默认 "_remotesvc._tcp"
	ServiceType string

	// Domain mDNS 域，默认 "local."
	Domain string

	// TTL 记录存活时间；超过 TTL 未刷新的远端端点视为失活
	TTL time.Duration

	// Enabled 是否启用，默认 true
	Enabled bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		ServiceType: DefaultServiceType,
		Domain:      DefaultDomain,
		TTL:         DefaultTTL,
		Enabled:     true,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.ServiceType == "" || !strings.HasPrefix(c.ServiceType, "_") {
		return errors.New("invalid service type")
	}

	if c.Domain == "" {
		return errors.New("domain is empty")
	}

	if c.TTL <= 0 {
		return errors.New("ttl must be positive")
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

// WithServiceType 设置服务类型
func WithServiceType(serviceType string) ConfigOption {
	return func(c *Config) {
		c.ServiceType = serviceType
	}
}

// WithDomain 设置 mDNS 域
func WithDomain(domain string) ConfigOption {
	return func(c *Config) {
		c.Domain = domain
	}
}

// WithTTL 设置记录存活时间
func WithTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) {
		c.TTL = ttl
	}
}

// WithEnabled 设置是否启用
func WithEnabled(enabled bool) ConfigOption {
	return func(c *Config) {
		c.Enabled = enabled
	}
}
