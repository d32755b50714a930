package interfaces

import "github.com/dep2p/go-remotesvc/pkg/types"

// ExportListener 导出注册表监听器
//
// 通知在注册表锁外进行；单个监听器的失败被隔离，不影响其余监听器。
type ExportListener interface {
	// EndpointsAdded 一批新端点创建（同一服务的端点批量通知一次）
	EndpointsAdded(eps []*types.ExportEndpoint)

	// EndpointUpdated 端点属性/名称更新
	EndpointUpdated(ep *types.ExportEndpoint, oldProperties map[string]any)

	// EndpointRemoved 端点移除
	EndpointRemoved(ep *types.ExportEndpoint)
}

// ExportRegistry 导出注册表（调度器）
//
// 跟踪声明了导出意图的本地服务，驱动 Exporter 创建/撤销端点，
// 并向监听器扇出变更通知。
type ExportRegistry interface {
	// FrameworkUID 返回本进程框架标识
	FrameworkUID() string

	// GetEndpoints 枚举活跃导出端点（按配置类型过滤，空 = 全部）
	GetEndpoints(kinds ...string) []*types.ExportEndpoint

	// GetEndpoint 按 UID 查找端点，不存在返回 nil
	GetEndpoint(uid string) *types.ExportEndpoint

	// RegisterExporter 动态注册 Exporter（追溯导出所有匹配服务）
	RegisterExporter(exporter Exporter)

	// UnregisterExporter 注销 Exporter（撤销其全部端点）
	UnregisterExporter(exporter Exporter)

	// AddListener 添加监听器
	AddListener(listener ExportListener)

	// RemoveListener 移除监听器
	RemoveListener(listener ExportListener)

	// OnServiceEvent 生命周期框架的服务事件回调
	OnServiceEvent(event types.ServiceEvent)
}

// ImportRegistry 导入注册表
//
// 拥有从远端习得的全部导入端点；所有变更逐一通知注册的 Importer。
type ImportRegistry interface {
	// Add 添加端点；UID 已存在返回 false
	//
	// framework 等于本地框架 UID 的端点被拒绝（防自环）。
	Add(ep *types.ImportEndpoint) bool

	// Update 整体替换端点属性；UID 未知返回 false
	Update(uid string, newProperties map[string]any) bool

	// Remove 移除端点；UID 未知返回 false
	Remove(uid string) bool

	// Contains 判断 UID 是否已注册
	Contains(uid string) bool

	// GetEndpoint 按 UID 查找端点，不存在返回 nil
	GetEndpoint(uid string) *types.ImportEndpoint

	// GetEndpoints 枚举全部导入端点
	GetEndpoints() []*types.ImportEndpoint

	// LostFramework 移除某远端框架的全部端点（逐一通知），无匹配为空操作
	LostFramework(fwUID string)

	// AddListener 注册 Importer
	AddListener(importer Importer)

	// RemoveListener 注销 Importer
	RemoveListener(importer Importer)
}
