// Package interfaces 定义远程服务分发各组件间的契约
//
// 分层关系（叶子在前）：
//
//   - Exporter / Importer: 传输插件，负责创建导出端点与本地调用代理
//   - ExportRegistry: 导出注册表（调度器），驱动 Exporter 并拥有全部活跃导出端点
//   - ImportRegistry: 导入注册表，拥有从远端习得的全部导入端点
//   - DiscoveryProvider: 可互换的发现后端（组播 UDP / mDNS / MQTT / Redis / ZooKeeper），
//     公告本地端点、把发现的远端端点喂入导入注册表
//   - HTTPRegistrar: 外部 HTTP 服务器的"注册路径 → 处理器"能力
//
// 生命周期框架是外部协作者：组件只通过 Start/Stop 与服务事件回调被驱动。
package interfaces
