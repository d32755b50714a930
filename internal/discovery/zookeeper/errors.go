package zookeeper

import "errors"

// ZooKeeper 发现错误定义
var (
	// ErrNilDispatcher 调度器视图为空
	ErrNilDispatcher = errors.New("zookeeper: dispatcher is nil")

	// ErrNilImports 导入注册表为空
	ErrNilImports = errors.New("zookeeper: import registry is nil")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("zookeeper: invalid config")

	// ErrAlreadyStarted 服务已启动
	ErrAlreadyStarted = errors.New("zookeeper: already started")

	// ErrAlreadyClosed 服务已关闭
	ErrAlreadyClosed = errors.New("zookeeper: already closed")

	// ErrConnect 无法连接 ZooKeeper 集群
	ErrConnect = errors.New("zookeeper: connect failed")
)
