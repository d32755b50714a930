package mdns

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-remotesvc/config"
	"github.com/dep2p/go-remotesvc/pkg/interfaces"
)

// Module 返回 Fx 模块
var Module = fx.Module("discovery/mdns",
	fx.Provide(ProvideMDNS),
	fx.Invoke(registerLifecycle),
)

// ModuleInput Fx 输入参数
type ModuleInput struct {
	fx.In
	Dispatcher interfaces.Dispatcher
	Imports    interfaces.ImportRegistry
	Registrar  interfaces.HTTPRegistrar
	UnifiedCfg *config.Config `optional:"true"`
}

// ConfigFromUnified 从统一配置创建 mDNS 配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil || !cfg.Discovery.EnableMDNS {
		return &Config{Enabled: false}
	}
	return &Config{
		ServiceType: cfg.Discovery.MDNS.ServiceType,
		Domain:      cfg.Discovery.MDNS.Domain,
		TTL:         cfg.Discovery.MDNS.TTL.Duration(),
		Enabled:     true,
	}
}

// MDNSResult mDNS 服务结果
type MDNSResult struct {
	fx.Out
	MDNS *MDNS
}

// ProvideMDNS 提供 mDNS 发现服务
func ProvideMDNS(input ModuleInput) (MDNSResult, error) {
	cfg := ConfigFromUnified(input.UnifiedCfg)
	if !cfg.Enabled {
		return MDNSResult{}, nil
	}

	m, err := New(input.Dispatcher, input.Imports, input.Registrar, cfg)
	if err != nil {
		return MDNSResult{}, err
	}
	return MDNSResult{MDNS: m}, nil
}

// lifecycleInput 生命周期注册输入
type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	MDNS    *MDNS `optional:"true"`
	Exports interfaces.ExportRegistry
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	m := input.MDNS
	if m == nil {
		return // mDNS 未启用
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
