// Package mqtt 实现基于 MQTT broker 的端点发现
//
// # 主题布局（<prefix> 为配置的主题前缀）
//
//	<prefix>/add       端点创建，载荷为 EDEF XML
//	<prefix>/update    端点更新，载荷为 EDEF XML
//	<prefix>/remove    端点撤销，载荷为 EDEF XML
//	<prefix>/discover  冷启动探询，载荷为探询方框架 UID
//	<prefix>/lost      框架下线，载荷为框架 UID
//
// add/update/remove 按 QoS 2 发布并在限定时间内等待确认，
// 超时退化为 fire-and-forget 继续执行。
//
// # 活性
//
// 连接时设置遗嘱消息：broker 检测到非正常断连后代发 <prefix>/lost，
// 对端据此清理该框架的全部端点。正常停止时主动发布 lost。
// 客户端开启自动重连；重连成功后重新订阅并重新公告本地端点。
package mqtt
