package mqtt

import (
	"errors"
	"strings"
	"time"
)

const (
	// DefaultBroker 默认 broker 地址
	DefaultBroker = "tcp://localhost:1883"

	// DefaultTopicPrefix 默认主题前缀
	DefaultTopicPrefix = "remotesvc/discovery"

	// DefaultPublishTimeout QoS-2 发布确认等待上限
	DefaultPublishTimeout = 5 * time.Second

	// DefaultConnectTimeout 首连等待上限（超过后转入后台重试）
	DefaultConnectTimeout = 10 * time.Second

	// DefaultRetryInterval 连接失败后的重试间隔
	DefaultRetryInterval = 10 * time.Second
)

// Config MQTT 配置
type Config struct {
	// Broker broker 地址（如 "tcp://localhost:1883"）
	Broker string

	// TopicPrefix 主题前缀，默认 "remotesvc/discovery"
	TopicPrefix string

	// PublishTimeout 发布确认等待上限；超时退化为 fire-and-forget
	PublishTimeout time.Duration

	// ConnectTimeout 首连等待上限；超过后启动继续，连接转入后台重试
	ConnectTimeout time.Duration

	// RetryInterval 连接失败后的重试间隔
	RetryInterval time.Duration

	// Enabled 是否启用，默认 true
	Enabled bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Broker:         DefaultBroker,
		TopicPrefix:    DefaultTopicPrefix,
		PublishTimeout: DefaultPublishTimeout,
		ConnectTimeout: DefaultConnectTimeout,
		RetryInterval:  DefaultRetryInterval,
		Enabled:        true,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Broker == "" {
		return errors.New("broker is empty")
	}

	if c.TopicPrefix == "" || strings.HasSuffix(c.TopicPrefix, "/") {
		return errors.New("invalid topic prefix")
	}

	if c.PublishTimeout <= 0 {
		return errors.New("publish timeout must be positive")
	}

	if c.ConnectTimeout <= 0 {
		return errors.New("connect timeout must be positive")
	}

	if c.RetryInterval <= 0 {
		return errors.New("retry interval must be positive")
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

// WithBroker 设置 broker 地址
func WithBroker(broker string) ConfigOption {
	return func(c *Config) {
		c.Broker = broker
	}
}

// WithTopicPrefix 设置主题前缀
func WithTopicPrefix(prefix string) ConfigOption {
	return func(c *Config) {
		c.TopicPrefix = prefix
	}
}

// WithPublishTimeout 设置发布确认等待上限
func WithPublishTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.PublishTimeout = timeout
	}
}

// WithRetryInterval 设置连接重试间隔
func WithRetryInterval(interval time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryInterval = interval
	}
}

// WithEnabled 设置是否启用
func WithEnabled(enabled bool) ConfigOption {
	return func(c *Config) {
		c.Enabled = enabled
	}
}
