package redis

import (
	"errors"
	"time"
)

const (
	// DefaultAddr 默认服务器地址
	DefaultAddr = "localhost:6379"

	// DefaultHeartbeatInterval 默认心跳间隔
	DefaultHeartbeatInterval = 30 * time.Second
)

// Config Redis 配置
type Config struct {
	// Addr 服务器地址，默认 "localhost:6379"
	Addr string

	// Password 密码（可为空）
	Password string

	// DB 数据库编号
	DB int

	// HeartbeatInterval 心跳刷新间隔；心跳键 TTL = 1.2 × 间隔
	HeartbeatInterval time.Duration

	// Enabled 是否启用，默认 true
	Enabled bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Addr:              DefaultAddr,
		HeartbeatInterval: DefaultHeartbeatInterval,
		Enabled:           true,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Addr == "" {
		return errors.New("addr is empty")
	}

	if c.DB < 0 {
		return errors.New("db must not be negative")
	}

	if c.HeartbeatInterval <= 0 {
		return errors.New("heartbeat interval must be positive")
	}

	return nil
}

// TTL 心跳键存活时间（1.2 × 心跳间隔）
func (c *Config) TTL() time.Duration {
	return c.HeartbeatInterval * 12 / 10
}

// ApplyOptions 应用配置选项
func (c *Config) ApplyOptions(opts ...ConfigOption) {
	for _, opt := range opts {
		opt(c)
	}
}

// ConfigOption 配置选项函数
type ConfigOption func(*Config)

// WithAddr 设置服务器地址
func WithAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.Addr = addr
	}
}

// WithPassword 设置密码
func WithPassword(password string) ConfigOption {
	return func(c *Config) {
		c.Password = password
	}
}

// WithDB 设置数据库编号
func WithDB(db int) ConfigOption {
	return func(c *Config) {
		c.DB = db
	}
}

// WithHeartbeatInterval 设置心跳间隔
func WithHeartbeatInterval(interval time.Duration) ConfigOption {
	return func(c *Config) {
		c.HeartbeatInterval = interval
	}
}

// WithEnabled 设置是否启用
func WithEnabled(enabled bool) ConfigOption {
	return func(c *Config) {
		c.Enabled = enabled
	}
}
