// Package redis 实现基于 Redis 的端点发现
//
// # 键布局
//
//	pelix/remote/frameworks/<fw>      心跳键，值为主机名，TTL = 1.2 × 心跳间隔
//	pelix/remote/services/<fw>/<ep>   端点键，值为单端点 EDEF XML，无 TTL
//
// 心跳由专门的协程按间隔刷新；进程崩溃后心跳键到期，
// 对端收到 expired 通知即对该框架做 LostFramework 清理。
//
// 变更传播依赖 Redis 键空间通知（set/del/expired）；启动时
// 尝试打开 notify-keyspace-events，失败仅记日志（托管实例
// 可能禁止 CONFIG SET，此时需要服务端预先开启）。
// 冷启动通过 SCAN 枚举已有键完成追赶。
package redis
