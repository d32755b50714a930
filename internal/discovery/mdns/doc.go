// Package mdns 实现 mDNS/Zeroconf 端点发现
//
// 每个导出端点注册为一条 mDNS 服务记录（实例名 = 端点 UID），
// 端点描述序列化进 TXT 记录（属性 JSON 分片 base64 编码，
// 附带发送方框架 UID 与调度器访问信息）。
//
// 浏览侧按 TTL 周期重新浏览：每轮收到的记录刷新端点的存活时间，
// 超过 TTL 未刷新的端点视为失活移除；某框架的端点全部失活后
// 调用 ImportRegistry.LostFramework 清理。
package mdns
