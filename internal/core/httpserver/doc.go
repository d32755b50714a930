// Package httpserver 提供进程共享的 HTTP 服务器
//
// 调度器 servlet 等组件通过 HTTPRegistrar 接口把处理器挂载到
// 路径前缀上；请求按最长前缀匹配路由。端口 0 表示随机端口，
// 实际端口在监听建立后可查。
package httpserver
