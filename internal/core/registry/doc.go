// Package registry 实现导出/导入两张端点注册表
//
// # 导出注册表（调度器）
//
// 跟踪声明了导出意图的本地服务，响应三类生命周期事件
// （registered / modified / unregistering），驱动可插拔的 Exporter
// 创建与撤销 ExportEndpoint，并向监听器批量扇出变更通知。
//
// 保证：每个 (service, Exporter) 组合至多一个端点；同一 Exporter 内
// 端点名冲突被拒绝，绝不静默覆盖。名称被释放后，等待复用该名称的
// 服务被立即重试导出。
//
// # 导入注册表
//
// 拥有从远端习得的全部 ImportEndpoint。Add 幂等（重复 UID 返回 false）、
// Update 整体替换属性、LostFramework 批量移除某远端框架的端点。
// framework 等于本地框架 UID 的端点被拒绝（防自环）。
//
// # 并发
//
// 两张注册表各用一把互斥锁保护内部映射；监听器通知一律在锁外进行
// （锁内快照监听器列表，锁外逐一调用），避免与重入注册表的监听器死锁。
// 单个监听器的 panic 被捕获并记录，不影响其余监听器，也不破坏注册表状态。
package registry
