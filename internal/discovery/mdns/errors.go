package mdns

import "errors"

// mDNS 发现错误定义
var (
	// ErrNilDispatcher 调度器视图为空
	ErrNilDispatcher = errors.New("mdns: dispatcher is nil")

	// ErrNilImports 导入注册表为空
	ErrNilImports = errors.New("mdns: import registry is nil")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("mdns: invalid config")

	// ErrAlreadyStarted 服务已启动
	ErrAlreadyStarted = errors.New("mdns: already started")

	// ErrAlreadyClosed 服务已关闭
	ErrAlreadyClosed = errors.New("mdns: already closed")

	// ErrMalformedRecord TXT 记录不完整或无法解析
	ErrMalformedRecord = errors.New("mdns: malformed txt record")
)
