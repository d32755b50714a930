package types

import "errors"

// 预定义错误
var (
	// ErrNoSpecifications 计算后的导出规格列表为空
	ErrNoSpecifications = errors.New("types: no exportable specifications")

	// ErrNoConfigurations 配置类型列表为空
	ErrNoConfigurations = errors.New("types: no configurations")

	// ErrNilServiceReference 服务引用为 nil
	ErrNilServiceReference = errors.New("types: service reference is nil")

	// ErrMissingEndpointID 缺少 endpoint.id 属性
	ErrMissingEndpointID = errors.New("types: missing endpoint.id property")

	// ErrMissingConfigurations 缺少 service.imported.configs 属性
	ErrMissingConfigurations = errors.New("types: missing service.imported.configs property")

	// ErrMissingObjectClass 缺少 objectClass 属性
	ErrMissingObjectClass = errors.New("types: missing objectClass property")

	// ErrExportedProperty 描述中含有导出侧专有属性
	ErrExportedProperty = errors.New("types: export-side property in endpoint description")
)
