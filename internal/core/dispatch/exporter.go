package dispatch

import (
	"sync"

	"github.com/dep2p/go-remotesvc/internal/core/registry"
	"github.com/dep2p/go-remotesvc/pkg/interfaces"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

// ServiceExporter 各 RPC 传输共享的通用 Exporter
//
// 负责端点创建、同 Exporter 内名称唯一性与 Resolver 登记；
// 具体传输的线上报文语法在本子系统之外。
type ServiceExporter struct {
	kinds    []string
	resolver *Resolver

	mu        sync.Mutex
	names     map[string]string // 端点名 → uid
	endpoints map[string]*types.ExportEndpoint
}

// 编译期接口断言
var _ interfaces.Exporter = (*ServiceExporter)(nil)

// NewServiceExporter 创建通用 Exporter
//
// kinds 为该传输支持的配置类型集合。
func NewServiceExporter(resolver *Resolver, kinds ...string) *ServiceExporter {
	return &ServiceExporter{
		kinds:     kinds,
		resolver:  resolver,
		names:     make(map[string]string),
		endpoints: make(map[string]*types.ExportEndpoint),
	}
}

// Kinds 返回支持的配置类型集合
func (e *ServiceExporter) Kinds() []string {
	return append([]string(nil), e.kinds...)
}

// ExportService 导出一个本地服务
//
// 服务对象未提供方法表时拒绝（返回 nil, nil）；
// 端点名已被占用时返回 ErrNameCollision。
func (e *ServiceExporter) ExportService(ref *types.ServiceReference, name, fwUID string) (*types.ExportEndpoint, error) {
	remotable, ok := ref.Instance.(interfaces.Remotable)
	if !ok {
		logger.Debug("服务对象不可远程调用，拒绝导出", "service", ref.ServiceID)
		return nil, nil
	}

	specs := registry.ComputeSpecifications(ref.Properties)
	if len(specs) == 0 {
		return nil, nil
	}

	configurations := e.matchConfigurations(ref.Properties)
	if len(configurations) == 0 {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if uid, taken := e.names[name]; taken {
		logger.Warn("端点名已占用", "name", name, "holder", uid)
		return nil, registry.ErrNameCollision
	}

	ep, err := types.NewExportEndpoint(fwUID, ref, ref.Instance, configurations, specs, name)
	if err != nil {
		return nil, err
	}

	e.names[name] = ep.UID
	e.endpoints[ep.UID] = ep

	// 导出时构建 name → callable 表，取代调用时反射
	e.resolver.Register(ep, remotable.RemoteMethods())
	logger.Info("服务已导出", "name", name, "uid", ep.UID, "configurations", configurations)
	return ep, nil
}

// UpdateExport 更新端点名称
//
// 新名称被其他端点占用时返回 ErrNameCollision，端点保持旧名称。
func (e *ServiceExporter) UpdateExport(ep *types.ExportEndpoint, newName string, _ map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if holder, taken := e.names[newName]; taken && holder != ep.UID {
		return registry.ErrNameCollision
	}

	oldName := ep.Name
	delete(e.names, oldName)
	e.names[newName] = ep.UID
	e.resolver.Rename(oldName, newName)
	return nil
}

// UnexportService 撤销导出
func (e *ServiceExporter) UnexportService(ep *types.ExportEndpoint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if holder, ok := e.names[ep.Name]; ok && holder == ep.UID {
		delete(e.names, ep.Name)
	}
	delete(e.endpoints, ep.UID)
	e.resolver.Unregister(ep.Name)
	logger.Info("服务已撤销导出", "name", ep.Name, "uid", ep.UID)
}

// matchConfigurations 计算端点的配置类型
//
// 服务未请求或请求 "*" 时使用传输的全部类型，否则取交集。
func (e *ServiceExporter) matchConfigurations(props map[string]any) []string {
	requested := types.StringSliceProperty(props, types.PropExportedConfigs)
	if len(requested) == 0 {
		return e.Kinds()
	}
	for _, kind := range requested {
		if kind == types.MatchAll {
			return e.Kinds()
		}
	}
	var result []string
	for _, kind := range e.kinds {
		for _, req := range requested {
			if kind == req {
				result = append(result, kind)
				break
			}
		}
	}
	return result
}
