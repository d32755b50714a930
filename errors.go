package remotesvc

import "errors"

// 门面错误定义
var (
	// ErrFrameworkStarted 框架已启动
	ErrFrameworkStarted = errors.New("remotesvc: framework already started")

	// ErrFrameworkClosed 框架已关闭
	ErrFrameworkClosed = errors.New("remotesvc: framework closed")

	// ErrNilInstance 服务对象为空
	ErrNilInstance = errors.New("remotesvc: service instance is nil")

	// ErrUnknownService 服务未注册
	ErrUnknownService = errors.New("remotesvc: unknown service")
)
