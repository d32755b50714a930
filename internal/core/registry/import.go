package registry

import (
	"sync"

	"github.com/dep2p/go-remotesvc/pkg/interfaces"
	"github.com/dep2p/go-remotesvc/pkg/lib/log"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

var importLogger = log.Logger("core/registry/import")

// ImportRegistry 导入注册表
type ImportRegistry struct {
	frameworkUID string

	mu        sync.Mutex
	endpoints map[string]*types.ImportEndpoint
	listeners []interfaces.Importer
}

// 编译期接口断言
var _ interfaces.ImportRegistry = (*ImportRegistry)(nil)

// NewImportRegistry 创建导入注册表
//
// frameworkUID 为本进程框架标识，用于拒绝自环端点。
func NewImportRegistry(frameworkUID string) *ImportRegistry {
	return &ImportRegistry{
		frameworkUID: frameworkUID,
		endpoints:    make(map[string]*types.ImportEndpoint),
	}
}

// Add 添加端点
//
// UID 已存在或端点来自本地框架时返回 false。
func (r *ImportRegistry) Add(ep *types.ImportEndpoint) bool {
	if ep == nil || ep.UID == "" {
		return false
	}
	if ep.Framework != "" && ep.Framework == r.frameworkUID {
		importLogger.Debug("拒绝自环端点", "uid", ep.UID)
		return false
	}

	r.mu.Lock()
	if _, exists := r.endpoints[ep.UID]; exists {
		r.mu.Unlock()
		return false
	}
	r.endpoints[ep.UID] = ep
	listeners := r.snapshotLocked()
	r.mu.Unlock()

	importLogger.Info("导入端点已添加", "uid", ep.UID, "name", ep.Name, "framework", ep.Framework)
	for _, l := range listeners {
		notifyImporter(func() { l.EndpointAdded(ep) })
	}
	return true
}

// Update 整体替换端点属性
//
// UID 未知返回 false；旧属性拷贝随通知传出。
func (r *ImportRegistry) Update(uid string, newProperties map[string]any) bool {
	r.mu.Lock()
	ep, exists := r.endpoints[uid]
	if !exists {
		r.mu.Unlock()
		return false
	}
	oldProperties := ep.Properties
	ep.Properties = types.CopyProperties(newProperties)
	listeners := r.snapshotLocked()
	r.mu.Unlock()

	importLogger.Debug("导入端点已更新", "uid", uid)
	for _, l := range listeners {
		notifyImporter(func() { l.EndpointUpdated(ep, oldProperties) })
	}
	return true
}

// Remove 移除端点；UID 未知返回 false
func (r *ImportRegistry) Remove(uid string) bool {
	r.mu.Lock()
	ep, exists := r.endpoints[uid]
	if !exists {
		r.mu.Unlock()
		return false
	}
	delete(r.endpoints, uid)
	listeners := r.snapshotLocked()
	r.mu.Unlock()

	importLogger.Info("导入端点已移除", "uid", uid, "name", ep.Name)
	for _, l := range listeners {
		notifyImporter(func() { l.EndpointRemoved(ep) })
	}
	return true
}

// Contains 判断 UID 是否已注册
func (r *ImportRegistry) Contains(uid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.endpoints[uid]
	return exists
}

// GetEndpoint 按 UID 查找端点，不存在返回 nil
func (r *ImportRegistry) GetEndpoint(uid string) *types.ImportEndpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endpoints[uid]
}

// GetEndpoints 枚举全部导入端点
func (r *ImportRegistry) GetEndpoints() []*types.ImportEndpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*types.ImportEndpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		result = append(result, ep)
	}
	return result
}

// LostFramework 移除某远端框架的全部端点
//
// 每个移除逐一通知；无匹配为空操作。
func (r *ImportRegistry) LostFramework(fwUID string) {
	if fwUID == "" {
		return
	}

	r.mu.Lock()
	var lost []*types.ImportEndpoint
	for uid, ep := range r.endpoints {
		if ep.Framework == fwUID {
			lost = append(lost, ep)
			delete(r.endpoints, uid)
		}
	}
	listeners := r.snapshotLocked()
	r.mu.Unlock()

	if len(lost) == 0 {
		return
	}
	importLogger.Info("远端框架丢失", "framework", fwUID, "endpoints", len(lost))
	for _, ep := range lost {
		ep := ep
		for _, l := range listeners {
			notifyImporter(func() { l.EndpointRemoved(ep) })
		}
	}
}

// AddListener 注册 Importer
func (r *ImportRegistry) AddListener(importer interfaces.Importer) {
	if importer == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, importer)
}

// RemoveListener 注销 Importer
func (r *ImportRegistry) RemoveListener(importer interfaces.Importer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.listeners {
		if l == importer {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

// snapshotLocked 在锁内快照监听器列表
func (r *ImportRegistry) snapshotLocked() []interfaces.Importer {
	return append([]interfaces.Importer(nil), r.listeners...)
}

// notifyImporter 隔离单个监听器的 panic
func notifyImporter(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			importLogger.Error("监听器回调 panic", "panic", rec)
		}
	}()
	fn()
}
