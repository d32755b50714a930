package interfaces

import (
	"context"

	"github.com/dep2p/go-remotesvc/pkg/types"
)

// DiscoveryProvider 可互换的发现后端
//
// 每个后端：
//   - 连接就绪后公告本地导出注册表的全部端点（AnnounceEndpoints）
//   - 作为 ExportListener 响应本地端点的增删改（新端点公告、撤销端点删除）
//   - 收到远端公告时解码并喂入导入注册表（跳过来自本地框架 UID 的自环）
//   - 显式或推断到远端丢失时调用 ImportRegistry.LostFramework
//
// 启动时必须先枚举并注册后端中已存在的远端端点（冷启动追赶），
// 再开始监听后续变更；停止时必须清理自身在后端的全部状态。
type DiscoveryProvider interface {
	ExportListener

	// Name 返回后端名称（如 "multicast"、"mqtt"）
	Name() string

	// Start 启动后端（连接、冷启动追赶、开始监听）
	Start(ctx context.Context) error

	// Stop 停止后端
	//
	// 设置停止标志、带超时等待后台协程退出、释放网络资源、
	// 删除/撤销自身在后端的状态（如发送 lost 消息、删除临时节点）。
	Stop(ctx context.Context) error
}

// Dispatcher 发现后端看到的本地导出视图
//
// 发现后端只需要枚举本地端点和本进程框架 UID。
type Dispatcher interface {
	// FrameworkUID 返回本进程框架标识
	FrameworkUID() string

	// GetEndpoints 枚举活跃导出端点
	GetEndpoints(kinds ...string) []*types.ExportEndpoint

	// GetEndpoint 按 UID 查找端点
	GetEndpoint(uid string) *types.ExportEndpoint
}
