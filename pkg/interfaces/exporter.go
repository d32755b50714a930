package interfaces

import "github.com/dep2p/go-remotesvc/pkg/types"

// Remotable 可远程调用能力
//
// 被导出的服务对象在导出时提供方法表（name → callable），
// 取代调用时的动态属性查找。
type Remotable interface {
	// RemoteMethods 返回远程可调用方法表
	RemoteMethods() types.MethodMap
}

// Exporter 传输插件的导出侧
//
// 每个 Exporter 支持一组传输配置类型（如 "jsonrpc"）。
type Exporter interface {
	// Kinds 返回支持的配置类型集合
	Kinds() []string

	// ExportService 导出一个本地服务
	//
	// 返回 (nil, nil) 表示拒绝导出；名称冲突返回 ErrNameCollision。
	ExportService(ref *types.ServiceReference, name, fwUID string) (*types.ExportEndpoint, error)

	// UpdateExport 更新端点名称
	//
	// 新名称冲突时返回 ErrNameCollision，端点保持旧名称。
	UpdateExport(ep *types.ExportEndpoint, newName string, oldProperties map[string]any) error

	// UnexportService 撤销导出
	UnexportService(ep *types.ExportEndpoint)
}

// Importer 传输插件的导入侧
//
// 对感兴趣的导入端点创建本地调用代理。
type Importer interface {
	// EndpointAdded 新导入端点出现
	EndpointAdded(ep *types.ImportEndpoint)

	// EndpointUpdated 导入端点属性更新
	EndpointUpdated(ep *types.ImportEndpoint, oldProperties map[string]any)

	// EndpointRemoved 导入端点移除
	EndpointRemoved(ep *types.ImportEndpoint)
}
