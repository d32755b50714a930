package registry

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-remotesvc/pkg/interfaces"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

// Module 返回 Fx 模块
var Module = fx.Module("core/registry",
	fx.Provide(ProvideRegistries),
)

// ModuleInput Fx 输入参数
type ModuleInput struct {
	fx.In
	UID types.FrameworkUID
}

// RegistriesResult 注册表结果
type RegistriesResult struct {
	fx.Out
	Exports    interfaces.ExportRegistry
	Imports    interfaces.ImportRegistry
	Dispatcher interfaces.Dispatcher
}

// ProvideRegistries 提供导出/导入注册表
//
// 导出注册表同时充当发现后端的 Dispatcher 视图。
func ProvideRegistries(input ModuleInput) RegistriesResult {
	exports := NewExportRegistry(input.UID.String())
	imports := NewImportRegistry(input.UID.String())
	return RegistriesResult{
		Exports:    exports,
		Imports:    imports,
		Dispatcher: exports,
	}
}
