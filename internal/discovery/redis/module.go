package redis

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-remotesvc/config"
	"github.com/dep2p/go-remotesvc/pkg/interfaces"
)

// Module 返回 Fx 模块
var Module = fx.Module("discovery/redis",
	fx.Provide(ProvideRedis),
	fx.Invoke(registerLifecycle),
)

// ModuleInput Fx 输入参数
type ModuleInput struct {
	fx.In
	Dispatcher interfaces.Dispatcher
	Imports    interfaces.ImportRegistry
	UnifiedCfg *config.Config `optional:"true"`
}

// ConfigFromUnified 从统一配置创建 Redis 配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil || !cfg.Discovery.EnableRedis {
		return &Config{Enabled: false}
	}
	return &Config{
		Addr:              cfg.Discovery.Redis.Addr,
		Password:          cfg.Discovery.Redis.Password,
		DB:                cfg.Discovery.Redis.DB,
		HeartbeatInterval: cfg.Discovery.Redis.HeartbeatInterval.Duration(),
		Enabled:           true,
	}
}

// RedisResult Redis 服务结果
type RedisResult struct {
	fx.Out
	Redis *Redis
}

// ProvideRedis 提供 Redis 发现服务
func ProvideRedis(input ModuleInput) (RedisResult, error) {
	cfg := ConfigFromUnified(input.UnifiedCfg)
	if !cfg.Enabled {
		return RedisResult{}, nil
	}

	r, err := New(input.Dispatcher, input.Imports, cfg)
	if err != nil {
		return RedisResult{}, err
	}
	return RedisResult{Redis: r}, nil
}

// lifecycleInput 生命周期注册输入
type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	Redis   *Redis `optional:"true"`
	Exports interfaces.ExportRegistry
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	r := input.Redis
	if r == nil {
		return // Redis 未启用
	}

	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := r.Start(ctx); err != nil {
				return err
			}
			input.Exports.AddListener(r)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			input.Exports.RemoveListener(r)
			return r.Stop(ctx)
		},
	})
}
