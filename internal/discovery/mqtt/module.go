package mqtt

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-remotesvc/config"
	"github.com/dep2p/go-remotesvc/pkg/interfaces"
)

// Module 返回 Fx 模块
var Module = fx.Module("discovery/mqtt",
	fx.Provide(ProvideMQTT),
	fx.Invoke(registerLifecycle),
)

// ModuleInput Fx 输入参数
type ModuleInput struct {
	fx.In
	Dispatcher interfaces.Dispatcher
	Imports    interfaces.ImportRegistry
	UnifiedCfg *config.Config `optional:"true"`
}

// ConfigFromUnified 从统一配置创建 MQTT 配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil || !cfg.Discovery.EnableMQTT {
		return &Config{Enabled: false}
	}
	return &Config{
		Broker:         cfg.Discovery.MQTT.Broker,
		TopicPrefix:    cfg.Discovery.MQTT.TopicPrefix,
		PublishTimeout: cfg.Discovery.MQTT.PublishTimeout.Duration(),
		ConnectTimeout: DefaultConnectTimeout,
		RetryInterval:  cfg.Discovery.MQTT.RetryInterval.Duration(),
		Enabled:        true,
	}
}

// MQTTResult MQTT 服务结果
type MQTTResult struct {
	fx.Out
	MQTT *MQTT
}

// ProvideMQTT 提供 MQTT 发现服务
func ProvideMQTT(input ModuleInput) (MQTTResult, error) {
	cfg := ConfigFromUnified(input.UnifiedCfg)
	if !cfg.Enabled {
		return MQTTResult{}, nil
	}

	m, err := New(input.Dispatcher, input.Imports, cfg)
	if err != nil {
		return MQTTResult{}, err
	}
	return MQTTResult{MQTT: m}, nil
}

// lifecycleInput 生命周期注册输入
type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	MQTT    *MQTT `optional:"true"`
	Exports interfaces.ExportRegistry
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	m := input.MQTT
	if m == nil {
		return // MQTT 未启用
	}

	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := m.Start(ctx); err != nil {
				return err
			}
			input.Exports.AddListener(m)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			input.Exports.RemoveListener(m)
			return m.Stop(ctx)
		},
	})
}
