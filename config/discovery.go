package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// DiscoveryConfig 发现配置
//
// 五种可互换的发现后端：
//   - Multicast: 组播 UDP 尽力而为 gossip
//   - MDNS: mDNS/Zeroconf 服务记录
//   - MQTT: pub/sub 结构化事件
//   - Redis: 带 TTL 的心跳键
//   - ZooKeeper: 会话绑定的临时节点
type DiscoveryConfig struct {
	// EnableMulticast 是否启用组播 UDP 发现
	EnableMulticast bool `json:"enable_multicast"`

	// EnableMDNS 是否启用 mDNS 发现
	EnableMDNS bool `json:"enable_mdns"`

	// EnableMQTT 是否启用 MQTT 发现
	EnableMQTT bool `json:"enable_mqtt"`

	// EnableRedis 是否启用 Redis 发现
	EnableRedis bool `json:"enable_redis"`

	// EnableZooKeeper 是否启用 ZooKeeper 发现
	EnableZooKeeper bool `json:"enable_zookeeper"`

	// Multicast 组播配置
	Multicast MulticastConfig `json:"multicast,omitempty"`

	// MDNS mDNS 配置
	MDNS MDNSConfig `json:"mdns,omitempty"`

	// MQTT MQTT 配置
	MQTT MQTTConfig `json:"mqtt,omitempty"`

	// Redis Redis 配置
	Redis RedisConfig `json:"redis,omitempty"`

	// ZooKeeper ZooKeeper 配置
	ZooKeeper ZooKeeperConfig `json:"zookeeper,omitempty"`
}

// DefaultDiscoveryConfig 返回默认发现配置
//
// 默认仅启用组播，其余后端需要外部基础设施。
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		EnableMulticast: true,
		Multicast:       DefaultMulticastConfig(),
		MDNS:            DefaultMDNSConfig(),
		MQTT:            DefaultMQTTConfig(),
		Redis:           DefaultRedisConfig(),
		ZooKeeper:       DefaultZooKeeperConfig(),
	}
}

// Validate 验证发现配置（只验证启用的后端，聚合全部错误）
func (c *DiscoveryConfig) Validate() error {
	var errs error
	if c.EnableMulticast {
		errs = multierr.Append(errs, c.Multicast.Validate())
	}
	if c.EnableMDNS {
		errs = multierr.Append(errs, c.MDNS.Validate())
	}
	if c.EnableMQTT {
		errs = multierr.Append(errs, c.MQTT.Validate())
	}
	if c.EnableRedis {
		errs = multierr.Append(errs, c.Redis.Validate())
	}
	if c.EnableZooKeeper {
		errs = multierr.Append(errs, c.ZooKeeper.Validate())
	}
	return errs
}

// ============================================================================
//                              Multicast
// ============================================================================

// MulticastConfig 组播 UDP 发现配置
type MulticastConfig struct {
	// Group 组播组地址
	Group string `json:"group,omitempty"`

	// Port 组播端口
	Port int `json:"port,omitempty"`
}

// DefaultMulticastConfig 返回默认组播配置
func DefaultMulticastConfig() MulticastConfig {
	return MulticastConfig{
		Group: "239.0.0.1",
		Port:  42000,
	}
}

// Validate 验证组播配置
func (c *MulticastConfig) Validate() error {
	if c.Group == "" {
		return errors.New("multicast group is empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid multicast port: %d", c.Port)
	}
	return nil
}

// ============================================================================
//                              mDNS
// ============================================================================

// MDNSConfig mDNS 发现配置
type MDNSConfig struct {
	// ServiceType mDNS 服务类型
	ServiceType string `json:"service_type,omitempty"`

	// Domain mDNS 域
	Domain string `json:"domain,omitempty"`

	// TTL 服务记录存活时间
	TTL Duration `json:"ttl,omitempty"`
}

// DefaultMDNSConfig 返回默认 mDNS 配置
func DefaultMDNSConfig() MDNSConfig {
	return MDNSConfig{
		ServiceType: "_remotesvc._tcp",
		Domain:      "local.",
		TTL:         Duration(60 * time.Second),
	}
}

// Validate 验证 mDNS 配置
func (c *MDNSConfig) Validate() error {
	if c.ServiceType == "" {
		return errors.New("mdns service type is empty")
	}
	if c.TTL <= 0 {
		return errors.New("mdns ttl must be positive")
	}
	return nil
}

// ============================================================================
//                              MQTT
// ============================================================================

// MQTTConfig MQTT 发现配置
type MQTTConfig struct {
	// Broker MQTT broker 地址（如 "tcp://localhost:1883"）
	Broker string `json:"broker,omitempty"`

	// TopicPrefix 主题前缀
	TopicPrefix string `json:"topic_prefix,omitempty"`

	// PublishTimeout QoS-2 发布等待超时（超时退化为 fire-and-forget）
	PublishTimeout Duration `json:"publish_timeout,omitempty"`

	// RetryInterval 连接失败后的重试间隔
	RetryInterval Duration `json:"retry_interval,omitempty"`
}

// DefaultMQTTConfig 返回默认 MQTT 配置
func DefaultMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Broker:         "tcp://localhost:1883",
		TopicPrefix:    "remotesvc/discovery",
		PublishTimeout: Duration(5 * time.Second),
		RetryInterval:  Duration(10 * time.Second),
	}
}

// Validate 验证 MQTT 配置
func (c *MQTTConfig) Validate() error {
	if c.Broker == "" {
		return errors.New("mqtt broker is empty")
	}
	if c.TopicPrefix == "" {
		return errors.New("mqtt topic prefix is empty")
	}
	if c.PublishTimeout <= 0 {
		return errors.New("mqtt publish timeout must be positive")
	}
	if c.RetryInterval <= 0 {
		return errors.New("mqtt retry interval must be positive")
	}
	return nil
}

// ============================================================================
//                              Redis
// ============================================================================

// RedisConfig Redis 发现配置
type RedisConfig struct {
	// Addr Redis 服务器地址
	Addr string `json:"addr,omitempty"`

	// Password 密码（可为空）
	Password string `json:"password,omitempty"`

	// DB 数据库编号
	DB int `json:"db,omitempty"`

	// HeartbeatInterval 心跳刷新间隔（键 TTL = 1.2 × 间隔）
	HeartbeatInterval Duration `json:"heartbeat_interval,omitempty"`
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:              "localhost:6379",
		DB:                0,
		HeartbeatInterval: Duration(30 * time.Second),
	}
}

// Validate 验证 Redis 配置
func (c *RedisConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("redis addr is empty")
	}
	if c.HeartbeatInterval <= 0 {
		return errors.New("redis heartbeat interval must be positive")
	}
	return nil
}

// ============================================================================
//                              ZooKeeper
// ============================================================================

// ZooKeeperConfig ZooKeeper 发现配置
type ZooKeeperConfig struct {
	// Servers ZooKeeper 服务器地址列表
	Servers []string `json:"servers,omitempty"`

	// SessionTimeout 会话超时（临时节点随会话消失）
	SessionTimeout Duration `json:"session_timeout,omitempty"`
}

// DefaultZooKeeperConfig 返回默认 ZooKeeper 配置
func DefaultZooKeeperConfig() ZooKeeperConfig {
	return ZooKeeperConfig{
		Servers:        []string{"127.0.0.1:2181"},
		SessionTimeout: Duration(10 * time.Second),
	}
}

// Validate 验证 ZooKeeper 配置
func (c *ZooKeeperConfig) Validate() error {
	if len(c.Servers) == 0 {
		return errors.New("zookeeper servers list is empty")
	}
	if c.SessionTimeout <= 0 {
		return errors.New("zookeeper session timeout must be positive")
	}
	return nil
}
