// Package types 定义远程服务分发的核心数据类型
//
// 三类端点构成一个闭合的转换三角（以 UID / endpoint.id 为连接键）：
//
//   - ExportEndpoint: 本进程导出的服务端点
//   - ImportEndpoint: 远端进程导出、本进程导入的服务端点
//   - EndpointDescription: 传输无关的规范属性包（OSGi RSA 兼容），
//     用于线上传输和两类端点之间的往返转换
//
// 转换关系：
//
//	ExportEndpoint --FromExport--> EndpointDescription --ToImport--> ImportEndpoint
//
// 此外提供：
//   - 服务生命周期事件类型（Registered / Modified / Unregistering）
//   - RPC 方法表类型（导出时注册 name → callable，替代运行时反射）
//   - EDEF 集合值类型（Tuple / List / Set / RawXML）
package types
