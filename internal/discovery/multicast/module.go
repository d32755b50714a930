package multicast

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-remotesvc/config"
	"github.com/dep2p/go-remotesvc/internal/core/dispatch"
	"github.com/dep2p/go-remotesvc/pkg/interfaces"
)

// Module 返回 Fx 模块
var Module = fx.Module("discovery/multicast",
	fx.Provide(ProvideMulticast),
	fx.Invoke(registerLifecycle),
)

// ModuleInput Fx 输入参数
type ModuleInput struct {
	fx.In
	Dispatcher interfaces.Dispatcher
	Imports    interfaces.ImportRegistry
	Registrar  interfaces.HTTPRegistrar
	Servlet    *dispatch.Servlet
	UnifiedCfg *config.Config `optional:"true"`
}

// ConfigFromUnified 从统一配置创建组播配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil || !cfg.Discovery.EnableMulticast {
		return &Config{Enabled: false}
	}
	return &Config{
		Group:        cfg.Discovery.Multicast.Group,
		Port:         cfg.Discovery.Multicast.Port,
		FetchTimeout: DefaultFetchTimeout,
		Enabled:      true,
	}
}

// MulticastResult 组播服务结果
type MulticastResult struct {
	fx.Out
	Multicast *Multicast
}

// ProvideMulticast 提供组播发现服务
//
// 未启用时返回空结果，生命周期注册随之跳过。
func ProvideMulticast(input ModuleInput) (MulticastResult, error) {
	cfg := ConfigFromUnified(input.UnifiedCfg)
	if !cfg.Enabled {
		return MulticastResult{}, nil
	}

	m, err := New(input.Dispatcher, input.Imports, input.Registrar, input.Servlet.Path(), cfg)
	if err != nil {
		return MulticastResult{}, err
	}
	return MulticastResult{Multicast: m}, nil
}

// lifecycleInput 生命周期注册输入
type lifecycleInput struct {
	fx.In
	LC        fx.Lifecycle
	Multicast *Multicast `optional:"true"`
	Exports   interfaces.ExportRegistry
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	m := input.Multicast
	if m == nil {
		return // 组播未启用
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
