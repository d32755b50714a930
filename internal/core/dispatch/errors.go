package dispatch

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrNoEndpoint 没有端点名能前缀匹配调用串
	ErrNoEndpoint = errors.New("dispatch: no endpoint found")

	// ErrUnknownMethod 端点的方法表中没有该方法
	ErrUnknownMethod = errors.New("dispatch: unknown method")

	// ErrNotRemotable 服务对象未提供远程方法表
	ErrNotRemotable = errors.New("dispatch: instance is not remotable")
)

// DispatchError 调度错误
//
// 作为调用失败返回给远端调用方，绝不导致进程崩溃。
type DispatchError struct {
	Method string // 原始调用串
	Err    error
}

// Error 实现 error 接口
func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch: %q: %v", e.Method, e.Err)
}

// Unwrap 支持 errors.Unwrap
func (e *DispatchError) Unwrap() error {
	return e.Err
}
