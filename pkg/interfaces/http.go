package interfaces

import "net/http"

// HTTPRegistrar 外部 HTTP 服务器的"注册路径 → 处理器"能力
//
// 调度器 servlet 与部分 RPC 传输通过它挂载到进程共享的 HTTP 服务器。
type HTTPRegistrar interface {
	// RegisterHandler 在指定路径前缀下挂载处理器
	RegisterHandler(path string, handler http.Handler) error

	// UnregisterHandler 卸载路径前缀
	UnregisterHandler(path string)

	// Port 返回 HTTP 服务器监听端口
	Port() int
}
