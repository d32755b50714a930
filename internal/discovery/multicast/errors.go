package multicast

import "errors"

// 组播发现错误定义
var (
	// ErrNilDispatcher 调度器视图为空
	ErrNilDispatcher = errors.New("multicast: dispatcher is nil")

	// ErrNilImports 导入注册表为空
	ErrNilImports = errors.New("multicast: import registry is nil")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("multicast: invalid config")

	// ErrAlreadyStarted 服务已启动
	ErrAlreadyStarted = errors.New("multicast: already started")

	// ErrAlreadyClosed 服务已关闭
	ErrAlreadyClosed = errors.New("multicast: already closed")

	// ErrBadGroupAddress 组播组地址无法解析
	ErrBadGroupAddress = errors.New("multicast: bad group address")
)
