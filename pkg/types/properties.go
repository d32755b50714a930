package types

import (
	"fmt"
	"strings"
)

// ============================================================================
//                              属性键常量
// ============================================================================

// OSGi RSA 标准属性键
const (
	// PropObjectClass 导出接口列表
	PropObjectClass = "objectClass"

	// PropEndpointID 端点全局唯一 ID
	PropEndpointID = "endpoint.id"

	// PropEndpointName 端点名称（RPC 命名空间）
	PropEndpointName = "endpoint.name"

	// PropEndpointFrameworkUUID 所属框架（进程）UID
	PropEndpointFrameworkUUID = "endpoint.framework.uuid"

	// PropEndpointServiceID 原始服务 ID
	PropEndpointServiceID = "endpoint.service.id"

	// PropServiceImported 标记服务为导入服务
	PropServiceImported = "service.imported"

	// PropImportedConfigs 导入侧配置类型列表
	PropImportedConfigs = "service.imported.configs"

	// PropExportedConfigs 请求的导出配置类型列表
	PropExportedConfigs = "service.exported.configs"

	// PropExportedInterfaces 请求导出的接口列表（"*" = 全部）
	PropExportedInterfaces = "service.exported.interfaces"

	// PropExportedPrefix 导出侧专有键前缀（转换为导入属性时整体剥离）
	PropExportedPrefix = "service.exported."
)

// 导出过滤属性键
const (
	// PropExportOnly 仅导出列出的接口
	PropExportOnly = "remote.export.only"

	// PropExportReject 拒绝导出列出的接口
	PropExportReject = "remote.export.reject"

	// PropExportNone 禁止导出任何接口
	PropExportNone = "remote.export.none"

	// PropExportPrefix 导出过滤键前缀（同样不进入导入属性）
	PropExportPrefix = "remote.export."
)

// MatchAll 通配符，表示"全部"
const MatchAll = "*"

// ============================================================================
//                              规格语言前缀
// ============================================================================

// LocalLanguage 本实现的规格语言标签
//
// 规格以 "lang:/name" 语法携带来源语言；导入时本地语言前缀被剥离，
// 外来语言的规格原样保留。
const LocalLanguage = "go"

// specSeparator 语言与规格名之间的分隔符
const specSeparator = ":/"

// FormatSpecification 为规格名附加本地语言前缀
//
// 已带语言前缀的规格原样返回。
func FormatSpecification(spec string) string {
	if strings.Contains(spec, specSeparator) {
		return spec
	}
	return LocalLanguage + specSeparator + spec
}

// FormatSpecifications 批量附加语言前缀
func FormatSpecifications(specs []string) []string {
	result := make([]string, 0, len(specs))
	for _, spec := range specs {
		if spec == "" {
			continue
		}
		result = append(result, FormatSpecification(spec))
	}
	return result
}

// ExtractSpecification 拆分规格的语言前缀
//
// 没有前缀时语言为空字符串。
func ExtractSpecification(spec string) (language, name string) {
	idx := strings.Index(spec, specSeparator)
	if idx < 0 {
		return "", spec
	}
	return spec[:idx], spec[idx+len(specSeparator):]
}

// ImportSpecifications 将线上规格转换为导入侧规格
//
// 本地语言前缀被剥离；外来语言规格原样保留。
func ImportSpecifications(specs []string) []string {
	result := make([]string, 0, len(specs))
	for _, spec := range specs {
		language, name := ExtractSpecification(spec)
		if language == "" || language == LocalLanguage {
			result = append(result, name)
		} else {
			result = append(result, spec)
		}
	}
	return result
}

// ============================================================================
//                              属性辅助函数
// ============================================================================

// CopyProperties 浅拷贝属性表
func CopyProperties(props map[string]any) map[string]any {
	result := make(map[string]any, len(props))
	for k, v := range props {
		result[k] = v
	}
	return result
}

// StringSliceProperty 读取字符串列表属性
//
// 单个字符串被提升为单元素列表；其他元素类型经 fmt 转换。
func StringSliceProperty(props map[string]any, key string) []string {
	return ToStringSlice(props[key])
}

// ToStringSlice 将任意属性值规整为字符串列表
func ToStringSlice(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			result = append(result, fmt.Sprintf("%v", item))
		}
		return result
	case Tuple:
		return ToStringSlice([]any(v))
	case List:
		return ToStringSlice([]any(v))
	case Set:
		return ToStringSlice([]any(v))
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}

// BoolProperty 读取布尔属性
//
// 字符串解析宽松：除 "false"/"0"（不区分大小写）外均为 true。
func BoolProperty(props map[string]any, key string) bool {
	switch v := props[key].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return ParseLenientBool(v)
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return false
	}
}

// ParseLenientBool 宽松解析布尔字符串
func ParseLenientBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "false", "0":
		return false
	default:
		return true
	}
}
