// Package dispatch 实现 RPC 调度解析与调度器 servlet
//
// # 方法解析
//
// 传输层收到的调用串形如 "<endpointName>.<methodName>"。Resolver 持有
// 某一 Exporter 的全部活跃端点名，按最长前缀规则选中端点
// （端点名 "a" 与 "a.b" 并存时，"a.b.method" 解析到 "a.b"），
// 再在导出时注册的方法表中查找方法并调用；被调用方法抛出的错误
// 原样传播给传输层。
//
// # 通用 Exporter
//
// ServiceExporter 是各 RPC 传输共享的导出实现：校验服务对象的
// Remotable 能力、强制同一 Exporter 内端点名唯一（冲突拒绝而非覆盖）、
// 在导出时把方法表登记进 Resolver。
//
// # 调度器 servlet
//
// 挂载在共享 HTTP 服务器上的发现辅助接口：
//
//	GET  <base>/framework       → 本地框架 UID（JSON 字符串）
//	GET  <base>/endpoints       → 端点字典数组
//	GET  <base>/endpoint/<uid>  → 单个端点字典，未知 UID 返回 404
//	POST <base>/endpoints       → 注册 JSON 数组中的每个端点为导入端点，恒返 200/OK
//
// 其余路径一律 404。端点字典与组播发现共用同一 JSON 形状：
// {sender, uid, configurations, name, specifications, properties}。
package dispatch
