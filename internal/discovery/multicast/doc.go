// Package multicast 实现组播 UDP 端点发现
//
// 尽力而为的 gossip 模型：结构化事件以 JSON 报文在组播组内广播，
// 端点描述本体不走组播，而是由接收方通过发送方的调度器 servlet
// 按 HTTP 拉取（报文只携带 access{port,path} 访问信息）。
//
// # 报文格式
//
//	{"sender": <fwUID>, "event": "add|update|remove|discover",
//	 "access": {"port": N, "path": "..."}}     // add / update
//	{"sender": <fwUID>, "event": "remove", "uids": [...]}
//
// 未知 event 记录日志后忽略。sender 等于本地框架 UID 的报文被跳过（防自环）。
//
// # 活性
//
// 无自动失活检测；依赖显式 remove 事件。启动时广播一次 discover
// 请求，对端以定向 add 应答完成冷启动追赶。
package multicast
