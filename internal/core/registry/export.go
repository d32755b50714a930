package registry

import (
	"fmt"
	"sync"

	"github.com/dep2p/go-remotesvc/internal/core/match"
	"github.com/dep2p/go-remotesvc/pkg/interfaces"
	"github.com/dep2p/go-remotesvc/pkg/lib/log"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

var exportLogger = log.Logger("core/registry/export")

// ============================================================================
//                              导出规格计算
// ============================================================================

// ComputeSpecifications 按过滤规则计算服务的导出规格列表
//
// 规则（依次应用）：
//   - remote.export.none 为真 → 不导出任何接口
//   - service.exported.interfaces 含 "*" → 导出 objectClass 声明的全部接口
//   - remote.export.only → 仅保留列出的接口
//   - remote.export.reject → 剔除列出的接口
//
// 返回空列表表示该服务不可导出。
func ComputeSpecifications(props map[string]any) []string {
	if _, present := props[types.PropExportNone]; present && types.BoolProperty(props, types.PropExportNone) {
		return nil
	}

	advertised := types.StringSliceProperty(props, types.PropObjectClass)
	exported := types.StringSliceProperty(props, types.PropExportedInterfaces)

	var specs []string
	if containsString(exported, types.MatchAll) {
		specs = append(specs, advertised...)
	} else if len(advertised) > 0 {
		for _, spec := range exported {
			if containsString(advertised, spec) {
				specs = append(specs, spec)
			}
		}
	} else {
		specs = append(specs, exported...)
	}

	if only := types.StringSliceProperty(props, types.PropExportOnly); len(only) > 0 && !containsString(only, types.MatchAll) {
		var kept []string
		for _, spec := range specs {
			if containsString(only, spec) {
				kept = append(kept, spec)
			}
		}
		specs = kept
	}

	if reject := types.StringSliceProperty(props, types.PropExportReject); len(reject) > 0 {
		var kept []string
		for _, spec := range specs {
			if !containsString(reject, spec) {
				kept = append(kept, spec)
			}
		}
		specs = kept
	}

	return dedupeStrings(specs)
}

// ComputeName 计算服务的端点名称
//
// 取 endpoint.name 属性；缺省为 "service-<serviceID>"。
func ComputeName(ref *types.ServiceReference) string {
	if name, ok := ref.Property(types.PropEndpointName).(string); ok && name != "" {
		return name
	}
	return fmt.Sprintf("service-%d", ref.ServiceID)
}

// exporterPredicate 构造 Exporter 与服务导出配置的匹配谓词
//
// 服务未请求配置或请求 "*" 时匹配所有 Exporter，
// 否则要求请求的配置与 Exporter 支持集相交。
func exporterPredicate(exporter interfaces.Exporter) match.Predicate {
	preds := []match.Predicate{
		match.Not(match.Present(types.PropExportedConfigs)),
		match.Contains(types.PropExportedConfigs, types.MatchAll),
	}
	for _, kind := range exporter.Kinds() {
		preds = append(preds, match.Contains(types.PropExportedConfigs, kind))
	}
	return match.Or(preds...)
}

// ============================================================================
//                              导出注册表
// ============================================================================

// ExportRegistry 导出注册表（调度器）
type ExportRegistry struct {
	frameworkUID string

	mu        sync.Mutex
	endpoints map[string]*types.ExportEndpoint // uid → 端点
	owners    map[string]interfaces.Exporter   // uid → 所属 Exporter
	services  map[int64][]string               // serviceID → uid 列表
	refs      map[int64]*types.ServiceReference
	exporters []interfaces.Exporter
	listeners []interfaces.ExportListener
}

// 编译期接口断言
var (
	_ interfaces.ExportRegistry = (*ExportRegistry)(nil)
	_ interfaces.Dispatcher     = (*ExportRegistry)(nil)
)

// NewExportRegistry 创建导出注册表
func NewExportRegistry(frameworkUID string) *ExportRegistry {
	return &ExportRegistry{
		frameworkUID: frameworkUID,
		endpoints:    make(map[string]*types.ExportEndpoint),
		owners:       make(map[string]interfaces.Exporter),
		services:     make(map[int64][]string),
		refs:         make(map[int64]*types.ServiceReference),
	}
}

// FrameworkUID 返回本进程框架标识
func (r *ExportRegistry) FrameworkUID() string {
	return r.frameworkUID
}

// GetEndpoints 枚举活跃导出端点（按配置类型过滤，空 = 全部）
func (r *ExportRegistry) GetEndpoints(kinds ...string) []*types.ExportEndpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*types.ExportEndpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		if ep.Matches(kinds...) {
			result = append(result, ep)
		}
	}
	return result
}

// GetEndpoint 按 UID 查找端点，不存在返回 nil
func (r *ExportRegistry) GetEndpoint(uid string) *types.ExportEndpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endpoints[uid]
}

// AddListener 添加监听器
func (r *ExportRegistry) AddListener(listener interfaces.ExportListener) {
	if listener == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, listener)
}

// RemoveListener 移除监听器
func (r *ExportRegistry) RemoveListener(listener interfaces.ExportListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.listeners {
		if l == listener {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

// ============================================================================
//                              Exporter 动态注册
// ============================================================================

// RegisterExporter 动态注册 Exporter
//
// 追溯导出所有已跟踪且匹配的服务。
func (r *ExportRegistry) RegisterExporter(exporter interfaces.Exporter) {
	if exporter == nil {
		return
	}
	r.mu.Lock()
	r.exporters = append(r.exporters, exporter)
	refs := r.snapshotRefsLocked()
	r.mu.Unlock()

	exportLogger.Info("注册 Exporter", "kinds", exporter.Kinds())
	for _, ref := range refs {
		if !exporterPredicate(exporter).Matches(ref.Properties) {
			continue
		}
		added := r.exportThrough(ref, []interfaces.Exporter{exporter})
		if len(added) > 0 {
			r.notifyAdded(added)
		}
	}
}

// UnregisterExporter 注销 Exporter
//
// 撤销其拥有的全部端点并通知移除，与注册对称。
func (r *ExportRegistry) UnregisterExporter(exporter interfaces.Exporter) {
	r.mu.Lock()
	for i, e := range r.exporters {
		if e == exporter {
			r.exporters = append(r.exporters[:i], r.exporters[i+1:]...)
			break
		}
	}
	var owned []*types.ExportEndpoint
	for uid, owner := range r.owners {
		if owner == exporter {
			owned = append(owned, r.endpoints[uid])
		}
	}
	r.mu.Unlock()

	exportLogger.Info("注销 Exporter", "kinds", exporter.Kinds(), "endpoints", len(owned))
	for _, ep := range owned {
		r.removeEndpoint(ep, exporter)
	}
}

// ============================================================================
//                              服务生命周期事件
// ============================================================================

// OnServiceEvent 生命周期框架的服务事件回调
func (r *ExportRegistry) OnServiceEvent(event types.ServiceEvent) {
	switch event.Type {
	case types.ServiceRegistered:
		r.handleRegistered(event.Ref)
	case types.ServiceModified:
		r.handleModified(event.Ref, event.OldProperties)
	case types.ServiceUnregistering:
		r.handleUnregistering(event.Ref)
	}
}

// handleRegistered 处理服务注册
func (r *ExportRegistry) handleRegistered(ref *types.ServiceReference) {
	if ref == nil || !ref.ExportIntent() {
		return
	}

	// 计算后的规格列表为空：彻底忽略该服务，不跟踪也不通知
	if len(ComputeSpecifications(ref.Properties)) == 0 {
		exportLogger.Debug("服务无可导出规格，忽略", "service", ref.ServiceID)
		return
	}

	r.mu.Lock()
	r.refs[ref.ServiceID] = ref
	exporters := r.selectExportersLocked(ref)
	r.mu.Unlock()

	added := r.exportThrough(ref, exporters)
	if len(added) > 0 {
		r.notifyAdded(added)
	}
}

// handleModified 处理服务属性变更
func (r *ExportRegistry) handleModified(ref *types.ServiceReference, oldProperties map[string]any) {
	if ref == nil {
		return
	}

	r.mu.Lock()
	r.refs[ref.ServiceID] = ref
	eps := r.endpointsOfLocked(ref.ServiceID)
	r.mu.Unlock()

	// 尚无端点的服务可能刚获得导出意图
	if len(eps) == 0 {
		if ref.ExportIntent() {
			r.handleRegistered(ref)
		}
		return
	}

	newName := ComputeName(ref)
	for _, ep := range eps {
		r.mu.Lock()
		owner := r.owners[ep.UID]
		r.mu.Unlock()
		if owner == nil {
			continue
		}

		if ep.Name != newName {
			if err := owner.UpdateExport(ep, newName, oldProperties); err != nil {
				// 名称冲突：自动撤销该端点并尝试复用其释放的旧名称
				exportLogger.Warn("重命名冲突，撤销端点",
					"uid", ep.UID, "old", ep.Name, "new", newName, "error", err)
				freed := ep.Name
				r.removeEndpoint(ep, owner)
				r.retryPendingExports(freed)
				continue
			}
		}

		// 发布副本而非原地改写：持有旧指针的发现协程读到的是不可变快照
		updated := *ep
		updated.Name = newName
		updated.Properties = types.CopyProperties(ref.Properties)

		r.mu.Lock()
		r.endpoints[ep.UID] = &updated
		r.mu.Unlock()

		r.notifyUpdated(&updated, oldProperties)
	}
}

// handleUnregistering 处理服务注销
func (r *ExportRegistry) handleUnregistering(ref *types.ServiceReference) {
	if ref == nil {
		return
	}

	r.mu.Lock()
	delete(r.refs, ref.ServiceID)
	eps := r.endpointsOfLocked(ref.ServiceID)
	r.mu.Unlock()

	var freed []string
	for _, ep := range eps {
		r.mu.Lock()
		owner := r.owners[ep.UID]
		r.mu.Unlock()
		freed = append(freed, ep.Name)
		r.removeEndpoint(ep, owner)
	}

	// 名称释放后扫描等待复用的服务
	for _, name := range freed {
		r.retryPendingExports(name)
	}
}

// ============================================================================
//                              内部操作
// ============================================================================

// exportThrough 经给定 Exporter 导出服务
//
// Exporter 调用在锁外进行；nil 结果表示拒绝，错误（名称冲突）记录后跳过。
func (r *ExportRegistry) exportThrough(ref *types.ServiceReference, exporters []interfaces.Exporter) []*types.ExportEndpoint {
	name := ComputeName(ref)
	var added []*types.ExportEndpoint

	for _, exporter := range exporters {
		if r.hasEndpointFor(ref.ServiceID, exporter) {
			// (service, Exporter) 组合至多一个端点
			continue
		}

		ep, err := exporter.ExportService(ref, name, r.frameworkUID)
		if err != nil {
			exportLogger.Warn("导出失败", "service", ref.ServiceID, "name", name, "error", err)
			continue
		}
		if ep == nil {
			continue
		}

		r.mu.Lock()
		r.endpoints[ep.UID] = ep
		r.owners[ep.UID] = exporter
		r.services[ref.ServiceID] = append(r.services[ref.ServiceID], ep.UID)
		r.mu.Unlock()
		added = append(added, ep)
	}
	return added
}

// removeEndpoint 撤销单个端点并通知移除
func (r *ExportRegistry) removeEndpoint(ep *types.ExportEndpoint, owner interfaces.Exporter) {
	if owner != nil {
		owner.UnexportService(ep)
	}

	r.mu.Lock()
	delete(r.endpoints, ep.UID)
	delete(r.owners, ep.UID)
	if ep.Ref != nil {
		uids := r.services[ep.Ref.ServiceID]
		for i, uid := range uids {
			if uid == ep.UID {
				uids = append(uids[:i], uids[i+1:]...)
				break
			}
		}
		if len(uids) == 0 {
			delete(r.services, ep.Ref.ServiceID)
		} else {
			r.services[ep.Ref.ServiceID] = uids
		}
	}
	listeners := r.snapshotListenersLocked()
	r.mu.Unlock()

	exportLogger.Info("导出端点已移除", "uid", ep.UID, "name", ep.Name)
	for _, l := range listeners {
		notifyExportListener(func() { l.EndpointRemoved(ep) })
	}
}

// retryPendingExports 名称释放后重试等待该名称的服务
func (r *ExportRegistry) retryPendingExports(freedName string) {
	r.mu.Lock()
	refs := r.snapshotRefsLocked()
	r.mu.Unlock()

	for _, ref := range refs {
		if ComputeName(ref) != freedName {
			continue
		}
		r.mu.Lock()
		exporters := r.selectExportersLocked(ref)
		r.mu.Unlock()

		added := r.exportThrough(ref, exporters)
		if len(added) > 0 {
			exportLogger.Info("复用已释放名称导出成功", "name", freedName, "service", ref.ServiceID)
			r.notifyAdded(added)
		}
	}
}

// selectExportersLocked 选择与服务导出配置匹配的 Exporter
func (r *ExportRegistry) selectExportersLocked(ref *types.ServiceReference) []interfaces.Exporter {
	var selected []interfaces.Exporter
	for _, exporter := range r.exporters {
		if exporterPredicate(exporter).Matches(ref.Properties) {
			selected = append(selected, exporter)
		}
	}
	return selected
}

// endpointsOfLocked 返回服务当前的全部端点
func (r *ExportRegistry) endpointsOfLocked(serviceID int64) []*types.ExportEndpoint {
	var eps []*types.ExportEndpoint
	for _, uid := range r.services[serviceID] {
		if ep := r.endpoints[uid]; ep != nil {
			eps = append(eps, ep)
		}
	}
	return eps
}

// hasEndpointFor 判断 (service, Exporter) 组合是否已有端点
func (r *ExportRegistry) hasEndpointFor(serviceID int64, exporter interfaces.Exporter) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, uid := range r.services[serviceID] {
		if r.owners[uid] == exporter {
			return true
		}
	}
	return false
}

func (r *ExportRegistry) snapshotRefsLocked() []*types.ServiceReference {
	refs := make([]*types.ServiceReference, 0, len(r.refs))
	for _, ref := range r.refs {
		refs = append(refs, ref)
	}
	return refs
}

func (r *ExportRegistry) snapshotListenersLocked() []interfaces.ExportListener {
	return append([]interfaces.ExportListener(nil), r.listeners...)
}

// ============================================================================
//                              通知扇出
// ============================================================================

// notifyAdded 批量通知新增端点
func (r *ExportRegistry) notifyAdded(eps []*types.ExportEndpoint) {
	r.mu.Lock()
	listeners := r.snapshotListenersLocked()
	r.mu.Unlock()
	for _, l := range listeners {
		notifyExportListener(func() { l.EndpointsAdded(eps) })
	}
}

// notifyUpdated 通知端点更新
func (r *ExportRegistry) notifyUpdated(ep *types.ExportEndpoint, oldProperties map[string]any) {
	r.mu.Lock()
	listeners := r.snapshotListenersLocked()
	r.mu.Unlock()
	for _, l := range listeners {
		notifyExportListener(func() { l.EndpointUpdated(ep, oldProperties) })
	}
}

// notifyExportListener 隔离单个监听器的 panic
func notifyExportListener(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			exportLogger.Error("监听器回调 panic", "panic", rec)
		}
	}()
	fn()
}

// ============================================================================
//                              小工具
// ============================================================================

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

func dedupeStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var result []string
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}
