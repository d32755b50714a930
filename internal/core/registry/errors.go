package registry

import "errors"

// 预定义错误
var (
	// ErrNameCollision 端点名已被同一 Exporter 内的另一端点占用
	ErrNameCollision = errors.New("registry: endpoint name collision")

	// ErrSelfImport 导入端点来自本地框架（自环）
	ErrSelfImport = errors.New("registry: endpoint originates from local framework")

	// ErrUnknownEndpoint 端点 UID 未注册
	ErrUnknownEndpoint = errors.New("registry: unknown endpoint")
)
