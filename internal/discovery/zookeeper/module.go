package zookeeper

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-remotesvc/config"
	"github.com/dep2p/go-remotesvc/pkg/interfaces"
)

// Module 返回 Fx 模块
var Module = fx.Module("discovery/zookeeper",
	fx.Provide(ProvideZooKeeper),
	fx.Invoke(registerLifecycle),
)

// ModuleInput Fx 输入参数
type ModuleInput struct {
	fx.In
	Dispatcher interfaces.Dispatcher
	Imports    interfaces.ImportRegistry
	UnifiedCfg *config.Config `optional:"true"`
}

// ConfigFromUnified 从统一配置创建 ZooKeeper 配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil || !cfg.Discovery.EnableZooKeeper {
		return &Config{Enabled: false}
	}
	return &Config{
		Servers:        cfg.Discovery.ZooKeeper.Servers,
		SessionTimeout: cfg.Discovery.ZooKeeper.SessionTimeout.Duration(),
		Enabled:        true,
	}
}

// ZooKeeperResult ZooKeeper 服务结果
type ZooKeeperResult struct {
	fx.Out
	ZooKeeper *ZooKeeper
}

// ProvideZooKeeper 提供 ZooKeeper 发现服务
func ProvideZooKeeper(input ModuleInput) (ZooKeeperResult, error) {
	cfg := ConfigFromUnified(input.UnifiedCfg)
	if !cfg.Enabled {
		return ZooKeeperResult{}, nil
	}

	z, err := New(input.Dispatcher, input.Imports, cfg)
	if err != nil {
		return ZooKeeperResult{}, err
	}
	return ZooKeeperResult{ZooKeeper: z}, nil
}

// lifecycleInput 生命周期注册输入
type lifecycleInput struct {
	fx.In
	LC        fx.Lifecycle
	ZooKeeper *ZooKeeper `optional:"true"`
	Exports   interfaces.ExportRegistry
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	z := input.ZooKeeper
	if z == nil {
		return // ZooKeeper 未启用
	}

	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := z.Start(ctx); err != nil {
				return err
			}
			input.Exports.AddListener(z)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			input.Exports.RemoveListener(z)
			return z.Stop(ctx)
		},
	})
}
