package mqtt

import "errors"

// MQTT 发现错误定义
var (
	// ErrNilDispatcher 调度器视图为空
	ErrNilDispatcher = errors.New("mqtt: dispatcher is nil")

	// ErrNilImports 导入注册表为空
	ErrNilImports = errors.New("mqtt: import registry is nil")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("mqtt: invalid config")

	// ErrAlreadyStarted 服务已启动
	ErrAlreadyStarted = errors.New("mqtt: already started")

	// ErrAlreadyClosed 服务已关闭
	ErrAlreadyClosed = errors.New("mqtt: already closed")

	// ErrConnect 无法连接 broker
	ErrConnect = errors.New("mqtt: connect failed")
)
