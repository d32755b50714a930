// Package zookeeper 实现基于 ZooKeeper 的端点发现
//
// # znode 布局
//
//	/frameworks/<fw>        临时节点，数据为主机名
//	/endpoints/<fw>         持久目录
//	/endpoints/<fw>/<ep>    临时节点，数据为单端点 EDEF XML
//
// 临时节点与会话绑定：进程崩溃或会话超时后节点自动消失，
// 对端通过 children watch 观察到后执行 LostFramework 清理。
//
// 客户端自动重连；会话重建（StateHasSession）后重新创建全部
// 临时节点。启动时先枚举存量 znode 完成冷启动追赶，再挂 watch。
package zookeeper
