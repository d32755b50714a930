package types

import (
	"strings"

	"github.com/google/uuid"
)

// ============================================================================
//                              ExportEndpoint
// ============================================================================

// ExportEndpoint 本进程导出的服务端点
//
// 一个本地服务在一种传输配置组合下的导出实例。
// UID 生成后不可变；Name 可重命名，但在同一 Exporter 内必须唯一。
type ExportEndpoint struct {
	// UID 全局唯一 ID（生成后不可变）
	UID string

	// FrameworkUID 所属进程（框架）标识
	FrameworkUID string

	// Configurations 传输配置类型（非空有序集合，如 "jsonrpc"）
	Configurations []string

	// Name 端点名称（RPC 命名空间，可重命名）
	Name string

	// Specifications 导出接口列表（带语言前缀，非空）
	Specifications []string

	// Ref 底层服务引用
	Ref *ServiceReference

	// Instance 被导出的服务对象
	Instance any

	// Properties 附加元数据（如传输 URL）
	Properties map[string]any
}

// NewExportEndpoint 创建导出端点
//
// specifications 为调用方（导出注册表）按过滤规则计算出的接口列表；
// 为空时创建失败。UID 自动生成。
func NewExportEndpoint(fwUID string, ref *ServiceReference, instance any,
	configurations, specifications []string, name string) (*ExportEndpoint, error) {
	if ref == nil {
		return nil, ErrNilServiceReference
	}
	if len(configurations) == 0 {
		return nil, ErrNoConfigurations
	}
	if len(specifications) == 0 {
		return nil, ErrNoSpecifications
	}

	return &ExportEndpoint{
		UID:            uuid.New().String(),
		FrameworkUID:   fwUID,
		Configurations: append([]string(nil), configurations...),
		Name:           name,
		Specifications: FormatSpecifications(specifications),
		Ref:            ref,
		Instance:       instance,
		Properties:     CopyProperties(ref.Properties),
	}, nil
}

// Matches 判断端点是否匹配任一给定配置类型
//
// kinds 为空或含 "*" 时匹配所有端点。
func (e *ExportEndpoint) Matches(kinds ...string) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, kind := range kinds {
		if kind == MatchAll {
			return true
		}
		for _, cfg := range e.Configurations {
			if cfg == kind {
				return true
			}
		}
	}
	return false
}

// MakeImportProperties 生成导入侧属性
//
// 剥离导出侧专有键（service.exported.*、remote.export.*），
// 设置 service.imported 与 service.imported.configs。
func (e *ExportEndpoint) MakeImportProperties() map[string]any {
	props := make(map[string]any)
	if e.Ref != nil {
		for k, v := range e.Ref.Properties {
			if strings.HasPrefix(k, PropExportedPrefix) || strings.HasPrefix(k, PropExportPrefix) {
				continue
			}
			props[k] = v
		}
	}
	for k, v := range e.Properties {
		if strings.HasPrefix(k, PropExportedPrefix) || strings.HasPrefix(k, PropExportPrefix) {
			continue
		}
		props[k] = v
	}

	props[PropServiceImported] = true
	props[PropImportedConfigs] = append([]string(nil), e.Configurations...)
	props[PropEndpointName] = e.Name
	return props
}

// ============================================================================
//                              ImportEndpoint
// ============================================================================

// ImportEndpoint 远端服务在本进程的镜像端点
type ImportEndpoint struct {
	// UID 与导出方的 UID 相同
	UID string

	// Framework 远端进程标识（可能未知）
	Framework string

	// Configurations 传输配置类型
	Configurations []string

	// Name 端点名称
	Name string

	// Specifications 接口列表（本地语言前缀已剥离，外来语言原样保留）
	Specifications []string

	// Properties 属性（更新时整体替换）
	Properties map[string]any

	// Server 公告方地址（由发现层设置，不来自线上负载）
	Server string
}

// ============================================================================
//                              EndpointDescription
// ============================================================================

// EndpointDescription 传输无关的规范属性包（OSGi RSA 兼容）
//
// 必须包含 endpoint.id、service.imported.configs 与 objectClass；
// 绝不包含导出侧专有键（service.exported.*）。
type EndpointDescription struct {
	properties map[string]any
}

// NewEndpointDescription 从属性表创建端点描述
//
// 校验强制属性并拒绝导出侧专有键。
func NewEndpointDescription(props map[string]any) (*EndpointDescription, error) {
	if props[PropEndpointID] == nil {
		return nil, ErrMissingEndpointID
	}
	if props[PropImportedConfigs] == nil {
		return nil, ErrMissingConfigurations
	}
	if props[PropObjectClass] == nil {
		return nil, ErrMissingObjectClass
	}
	for k := range props {
		if strings.HasPrefix(k, PropExportedPrefix) {
			return nil, ErrExportedProperty
		}
	}

	// 规范化属性值，保证 EDEF 编解码往返后逐属性相等
	normalized := make(map[string]any, len(props))
	for k, v := range props {
		normalized[k] = NormalizeValue(v)
	}
	return &EndpointDescription{properties: normalized}, nil
}

// NormalizeValue 将属性值规范化为 EDEF 往返稳定的形式
//
// 切片统一为 List（Tuple/Set 保留原类型），整数统一为 int64，
// 浮点统一为 float64。
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case []string:
		list := make(List, len(val))
		for i, s := range val {
			list[i] = s
		}
		return list
	case []any:
		return NormalizeList(List(val))
	case List:
		return NormalizeList(val)
	case Tuple:
		return Tuple(NormalizeList(List(val)))
	case Set:
		return Set(NormalizeList(List(val)))
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}

// NormalizeList 逐元素规范化序列
func NormalizeList(items List) List {
	result := make(List, len(items))
	for i, item := range items {
		result[i] = NormalizeValue(item)
	}
	return result
}

// FromExport 由导出端点生成端点描述
func FromExport(e *ExportEndpoint) (*EndpointDescription, error) {
	props := e.MakeImportProperties()
	props[PropEndpointID] = e.UID
	props[PropEndpointFrameworkUUID] = e.FrameworkUID
	props[PropObjectClass] = append([]string(nil), e.Specifications...)
	if e.Ref != nil {
		props[PropEndpointServiceID] = e.Ref.ServiceID
	}
	return NewEndpointDescription(props)
}

// ID 返回 endpoint.id
func (d *EndpointDescription) ID() string {
	s, _ := d.properties[PropEndpointID].(string)
	return s
}

// FrameworkUUID 返回远端框架 UID（可能为空）
func (d *EndpointDescription) FrameworkUUID() string {
	s, _ := d.properties[PropEndpointFrameworkUUID].(string)
	return s
}

// Name 返回端点名称
func (d *EndpointDescription) Name() string {
	s, _ := d.properties[PropEndpointName].(string)
	return s
}

// ServiceID 返回原始服务 ID
func (d *EndpointDescription) ServiceID() int64 {
	switch v := d.properties[PropEndpointServiceID].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

// Configurations 返回导入配置类型列表
func (d *EndpointDescription) Configurations() []string {
	return StringSliceProperty(d.properties, PropImportedConfigs)
}

// Specifications 返回线上接口列表（带语言前缀）
func (d *EndpointDescription) Specifications() []string {
	return StringSliceProperty(d.properties, PropObjectClass)
}

// Get 读取任意属性
func (d *EndpointDescription) Get(key string) any {
	return d.properties[key]
}

// Properties 返回属性表拷贝
func (d *EndpointDescription) Properties() map[string]any {
	return CopyProperties(d.properties)
}

// ToImport 生成导入端点
//
// 本地语言的规格前缀被剥离；Server 字段留空，由发现层填写。
func (d *EndpointDescription) ToImport() *ImportEndpoint {
	return &ImportEndpoint{
		UID:            d.ID(),
		Framework:      d.FrameworkUUID(),
		Configurations: d.Configurations(),
		Name:           d.Name(),
		Specifications: ImportSpecifications(d.Specifications()),
		Properties:     d.Properties(),
	}
}
