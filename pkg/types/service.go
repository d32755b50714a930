package types

// ============================================================================
//                              服务引用与生命周期事件
// ============================================================================
//
// 组件生命周期框架是外部协作者：它通过三类事件回调驱动导出注册表。
// ServiceReference 是该框架中一个本地服务的显式句柄。

// ServiceReference 本地服务引用
type ServiceReference struct {
	// ServiceID 框架内唯一的服务 ID
	ServiceID int64

	// Properties 服务属性（含导出意图声明）
	Properties map[string]any

	// Instance 被导出的服务对象
	Instance any
}

// Property 读取服务属性
func (r *ServiceReference) Property(key string) any {
	if r == nil || r.Properties == nil {
		return nil
	}
	return r.Properties[key]
}

// ExportIntent 判断服务是否声明了导出意图
func (r *ServiceReference) ExportIntent() bool {
	return r != nil && r.Property(PropExportedInterfaces) != nil
}

// ServiceEventType 服务生命周期事件类型
type ServiceEventType int

const (
	// ServiceRegistered 服务注册
	ServiceRegistered ServiceEventType = iota

	// ServiceModified 服务属性变更
	ServiceModified

	// ServiceUnregistering 服务注销中
	ServiceUnregistering
)

// String 返回事件类型的字符串表示
func (t ServiceEventType) String() string {
	switch t {
	case ServiceRegistered:
		return "registered"
	case ServiceModified:
		return "modified"
	case ServiceUnregistering:
		return "unregistering"
	default:
		return "unknown"
	}
}

// ServiceEvent 服务生命周期事件
type ServiceEvent struct {
	// Type 事件类型
	Type ServiceEventType

	// Ref 涉及的服务引用
	Ref *ServiceReference

	// OldProperties 变更前的属性（仅 Modified 事件携带）
	OldProperties map[string]any
}

// ============================================================================
//                              RPC 方法表
// ============================================================================
//
// 远程方法在导出时注册为 name → callable 表，取代调用时的动态属性查找。

// MethodFunc 远程可调用方法
//
// 位置参数与关键字参数按调用方原样传入；返回的错误原样传播给传输层。
type MethodFunc func(args []any, kwargs map[string]any) (any, error)

// MethodMap RPC 方法表
type MethodMap map[string]MethodFunc
