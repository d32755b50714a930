package redis

import "errors"

// Redis 发现错误定义
var (
	// ErrNilDispatcher 调度器视图为空
	ErrNilDispatcher = errors.New("redis: dispatcher is nil")

	// ErrNilImports 导入注册表为空
	ErrNilImports = errors.New("redis: import registry is nil")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("redis: invalid config")

	// ErrAlreadyStarted 服务已启动
	ErrAlreadyStarted = errors.New("redis: already started")

	// ErrAlreadyClosed 服务已关闭
	ErrAlreadyClosed = errors.New("redis: already closed")

	// ErrConnect 无法连接 Redis 服务器
	ErrConnect = errors.New("redis: connect failed")
)
