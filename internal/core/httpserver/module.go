package httpserver

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-remotesvc/config"
	"github.com/dep2p/go-remotesvc/pkg/interfaces"
)

// Module 返回 Fx 模块
var Module = fx.Module("core/httpserver",
	fx.Provide(ProvideServer),
	fx.Invoke(registerLifecycle),
)

// ModuleInput Fx 输入参数
type ModuleInput struct {
	fx.In
	UnifiedCfg *config.Config `optional:"true"`
}

// ServerResult HTTP 服务器结果
type ServerResult struct {
	fx.Out
	Server    *Server
	Registrar interfaces.HTTPRegistrar
}

// ProvideServer 提供 HTTP 服务器
func ProvideServer(input ModuleInput) ServerResult {
	port := 0
	if input.UnifiedCfg != nil {
		port = input.UnifiedCfg.Dispatch.HTTPPort
	}
	server := New(port)
	return ServerResult{
		Server:    server,
		Registrar: server,
	}
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, server *Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})
}
