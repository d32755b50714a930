package dispatch

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-remotesvc/config"
	"github.com/dep2p/go-remotesvc/pkg/interfaces"
)

// Module 返回 Fx 模块
var Module = fx.Module("core/dispatch",
	fx.Provide(ProvideResolver),
	fx.Provide(ProvideExporter),
	fx.Provide(ProvideServlet),
	fx.Invoke(registerExporter),
	fx.Invoke(registerServlet),
)

// ProvideResolver 提供方法解析器
func ProvideResolver() *Resolver {
	return NewResolver()
}

// exporterInput 导出器输入
type exporterInput struct {
	fx.In
	Resolver   *Resolver
	UnifiedCfg *config.Config `optional:"true"`
}

// ProvideExporter 提供本地服务导出器
func ProvideExporter(input exporterInput) *ServiceExporter {
	kinds := []string{"jsonrpc"}
	if input.UnifiedCfg != nil && len(input.UnifiedCfg.Dispatch.ExportKinds) > 0 {
		kinds = input.UnifiedCfg.Dispatch.ExportKinds
	}
	return NewServiceExporter(input.Resolver, kinds...)
}

// servletInput servlet 输入
type servletInput struct {
	fx.In
	Dispatcher interfaces.Dispatcher
	Imports    interfaces.ImportRegistry
	UnifiedCfg *config.Config `optional:"true"`
}

// ProvideServlet 提供调度器 servlet
func ProvideServlet(input servletInput) *Servlet {
	path := DefaultServletPath
	if input.UnifiedCfg != nil && input.UnifiedCfg.Dispatch.ServletPath != "" {
		path = input.UnifiedCfg.Dispatch.ServletPath
	}
	return NewServlet(path, input.Dispatcher, input.Imports)
}

// registerExporter 把导出器挂入导出注册表
func registerExporter(exports interfaces.ExportRegistry, exporter *ServiceExporter) {
	exports.RegisterExporter(exporter)
}

// registerServlet 把 servlet 挂到共享 HTTP 服务器
func registerServlet(registrar interfaces.HTTPRegistrar, servlet *Servlet) error {
	return registrar.RegisterHandler(servlet.Path(), servlet)
}
