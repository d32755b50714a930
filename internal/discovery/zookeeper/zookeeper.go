package zookeeper

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-zookeeper/zk"

	"github.com/dep2p/go-remotesvc/internal/core/edef"
	"github.com/dep2p/go-remotesvc/pkg/interfaces"
	"github.com/dep2p/go-remotesvc/pkg/lib/log"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

// ZooKeeper 模块 logger
var logger = log.Logger("discovery/zookeeper")

// ZooKeeper 基于 ZooKeeper 的发现服务
type ZooKeeper struct {
	ctx    context.Context
	cancel context.CancelFunc
	config *Config

	dispatcher interfaces.Dispatcher
	imports    interfaces.ImportRegistry

	mu        sync.Mutex
	conn      *zk.Conn
	watched   map[string]bool            // 正在 watch 端点目录的远端框架
	known     map[string]map[string]bool // 远端框架 → 已注册端点 UID 集合
	hostname  string

	started atomic.Bool
	closed  atomic.Bool
	wg      sync.WaitGroup
}

// New 创建 ZooKeeper 发现服务
func New(dispatcher interfaces.Dispatcher, imports interfaces.ImportRegistry, config *Config) (*ZooKeeper, error) {
	if dispatcher == nil {
		return nil, ErrNilDispatcher
	}
	if imports == nil {
		return nil, ErrNilImports
	}

	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &ZooKeeper{
		ctx:        ctx,
		cancel:     cancel,
		config:     config,
		dispatcher: dispatcher,
		imports:    imports,
		watched:    make(map[string]bool),
		known:      make(map[string]map[string]bool),
		hostname:   hostname,
	}, nil
}

// Name 返回后端名称
func (z *ZooKeeper) Name() string {
	return "zookeeper"
}

// Start 启动服务
//
// 连接集群；会话建立（含重建）时注册全部临时节点，
// 然后启动 frameworks/endpoints 两个 children watch 循环。
func (z *ZooKeeper) Start(_ context.Context) error {
	if z.closed.Load() {
		return ErrAlreadyClosed
	}

	if z.started.Swap(true) {
		return ErrAlreadyStarted
	}

	conn, events, err := zk.Connect(z.config.Servers, z.config.SessionTimeout,
		zk.WithLogInfo(false))
	if err != nil {
		z.started.Store(false)
		return fmt.Errorf("%w: %v", ErrConnect, err)
	}

	z.mu.Lock()
	z.conn = conn
	z.mu.Unlock()

	z.wg.Add(3)
	go z.sessionLoop(events)
	go z.watchFrameworks(conn)
	go z.watchEndpointRoots(conn)

	logger.Info("ZooKeeper 发现已启动",
		"servers", strings.Join(z.config.Servers, ","),
		"sessionTimeout", z.config.SessionTimeout)
	return nil
}

// Stop 停止服务
//
// 主动删除自身临时节点（不等会话超时），再关闭连接。
func (z *ZooKeeper) Stop(_ context.Context) error {
	if z.closed.Swap(true) {
		return nil
	}

	z.mu.Lock()
	conn := z.conn
	z.conn = nil
	z.mu.Unlock()

	if conn != nil {
		fwUID := z.frameworkUID()
		for _, ep := range z.dispatcher.GetEndpoints() {
			if err := conn.Delete(endpointPath(fwUID, ep.UID), -1); err != nil && err != zk.ErrNoNode {
				logger.Warn("端点节点删除失败", "uid", ep.UID, "error", err)
			}
		}
		if err := conn.Delete(frameworkPath(fwUID), -1); err != nil && err != zk.ErrNoNode {
			logger.Warn("框架节点删除失败", "error", err)
		}
	}

	z.cancel()
	if conn != nil {
		conn.Close()
	}

	done := make(chan struct{})
	go func() {
		z.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Debug("ZooKeeper 后台协程已退出")
	case <-time.After(2 * time.Second):
		logger.Debug("ZooKeeper 关闭超时，goroutine 将在后台继续清理")
	}

	return nil
}

// ===== 导出监听（ExportListener）=====

// EndpointsAdded 创建端点临时节点
func (z *ZooKeeper) EndpointsAdded(eps []*types.ExportEndpoint) {
	conn := z.currentConn()
	if conn == nil {
		return
	}
	for _, ep := range eps {
		z.createEndpoint(conn, ep)
	}
}

// EndpointUpdated 覆写端点节点数据
func (z *ZooKeeper) EndpointUpdated(ep *types.ExportEndpoint, _ map[string]any) {
	conn := z.currentConn()
	if conn == nil {
		return
	}

	payload, ok := z.encodeEndpoint(ep)
	if !ok {
		return
	}

	path := endpointPath(z.frameworkUID(), ep.UID)
	if _, err := conn.Set(path, payload, -1); err != nil {
		if err == zk.ErrNoNode {
			z.createEndpoint(conn, ep)
			return
		}
		logger.Warn("端点节点更新失败", "uid", ep.UID, "error", err)
	}
}

// EndpointRemoved 删除端点节点
func (z *ZooKeeper) EndpointRemoved(ep *types.ExportEndpoint) {
	conn := z.currentConn()
	if conn == nil {
		return
	}

	path := endpointPath(z.frameworkUID(), ep.UID)
	if err := conn.Delete(path, -1); err != nil && err != zk.ErrNoNode {
		logger.Warn("端点节点删除失败", "uid", ep.UID, "error", err)
	}
}

// ===== 注册 =====

// registerAll 会话建立后注册全部节点
func (z *ZooKeeper) registerAll(conn *zk.Conn) {
	fwUID := z.frameworkUID()

	z.ensurePath(conn, frameworksRoot)
	z.ensurePath(conn, endpointsRoot)
	z.ensurePath(conn, frameworkEndpointsPath(fwUID))

	// 框架临时节点（会话重建时旧节点已随旧会话消失）
	if _, err := conn.Create(frameworkPath(fwUID), []byte(z.hostname),
		zk.FlagEphemeral, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
		logger.Warn("框架节点创建失败", "error", err)
	}

	for _, ep := range z.dispatcher.GetEndpoints() {
		z.createEndpoint(conn, ep)
	}
}

// createEndpoint 创建端点临时节点
func (z *ZooKeeper) createEndpoint(conn *zk.Conn, ep *types.ExportEndpoint) {
	payload, ok := z.encodeEndpoint(ep)
	if !ok {
		return
	}

	fwUID := z.frameworkUID()
	z.ensurePath(conn, frameworkEndpointsPath(fwUID))

	path := endpointPath(fwUID, ep.UID)
	if _, err := conn.Create(path, payload, zk.FlagEphemeral, zk.WorldACL(zk.PermAll)); err != nil {
		if err == zk.ErrNodeExists {
			if _, err := conn.Set(path, payload, -1); err != nil {
				logger.Warn("端点节点覆写失败", "uid", ep.UID, "error", err)
			}
			return
		}
		logger.Warn("端点节点创建失败", "uid", ep.UID, "error", err)
	}
}

// encodeEndpoint 将端点序列化为 EDEF
func (z *ZooKeeper) encodeEndpoint(ep *types.ExportEndpoint) ([]byte, bool) {
	desc, err := types.FromExport(ep)
	if err != nil {
		logger.Warn("端点描述构建失败", "uid", ep.UID, "error", err)
		return nil, false
	}
	payload, err := edef.MarshalEndpoint(desc)
	if err != nil {
		logger.Warn("EDEF 编码失败", "uid", ep.UID, "error", err)
		return nil, false
	}
	return payload, true
}

// ensurePath 确保持久路径存在（逐段创建，已存在忽略）
func (z *ZooKeeper) ensurePath(conn *zk.Conn, path string) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	current := ""
	for _, segment := range segments {
		current += "/" + segment
		if _, err := conn.Create(current, nil, 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
			logger.Warn("路径创建失败", "path", current, "error", err)
			return
		}
	}
}

// ===== watch 循环 =====

// sessionLoop 会话事件循环
//
// 每次进入 StateHasSession（首连或会话重建）都重新注册临时节点。
func (z *ZooKeeper) sessionLoop(events <-chan zk.Event) {
	defer z.wg.Done()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.State == zk.StateHasSession {
				conn := z.currentConn()
				if conn == nil {
					return
				}
				logger.Info("ZooKeeper 会话就绪，注册临时节点")
				z.registerAll(conn)
			}
		case <-z.ctx.Done():
			return
		}
	}
}

// watchFrameworks 监听 /frameworks 的 children
//
// 节点消失（会话丢失或正常下线）即框架丢失。
func (z *ZooKeeper) watchFrameworks(conn *zk.Conn) {
	defer z.wg.Done()

	previous := make(map[string]bool)
	for {
		if z.ctx.Err() != nil {
			return
		}

		children, _, watch, err := conn.ChildrenW(frameworksRoot)
		if err != nil {
			if !z.waitRetry() {
				return
			}
			continue
		}

		current := make(map[string]bool, len(children))
		for _, fw := range children {
			current[fw] = true
		}

		for fw := range previous {
			if !current[fw] && fw != z.frameworkUID() {
				z.imports.LostFramework(fw)
				z.forgetFramework(fw)
				logger.Info("远端框架下线", "framework", fw)
			}
		}
		previous = current

		select {
		case <-watch:
		case <-z.ctx.Done():
			return
		}
	}
}

// watchEndpointRoots 监听 /endpoints 的 children
//
// 发现新的远端框架目录后为其启动端点 watch。
func (z *ZooKeeper) watchEndpointRoots(conn *zk.Conn) {
	defer z.wg.Done()

	for {
		if z.ctx.Err() != nil {
			return
		}

		children, _, watch, err := conn.ChildrenW(endpointsRoot)
		if err != nil {
			if !z.waitRetry() {
				return
			}
			continue
		}

		for _, fw := range children {
			if fw == z.frameworkUID() {
				continue
			}
			z.mu.Lock()
			already := z.watched[fw]
			if !already {
				z.watched[fw] = true
			}
			z.mu.Unlock()

			if !already {
				z.wg.Add(1)
				go z.watchFrameworkEndpoints(conn, fw)
			}
		}

		select {
		case <-watch:
		case <-z.ctx.Done():
			return
		}
	}
}

// watchFrameworkEndpoints 监听单个远端框架的端点目录
func (z *ZooKeeper) watchFrameworkEndpoints(conn *zk.Conn, fwUID string) {
	defer z.wg.Done()
	defer func() {
		z.mu.Lock()
		delete(z.watched, fwUID)
		z.mu.Unlock()
	}()

	for {
		if z.ctx.Err() != nil {
			return
		}

		children, _, watch, err := conn.ChildrenW(frameworkEndpointsPath(fwUID))
		if err != nil {
			if err == zk.ErrNoNode {
				// 目录已消失，框架丢失由 watchFrameworks 处理
				return
			}
			if !z.waitRetry() {
				return
			}
			continue
		}

		z.syncEndpoints(conn, fwUID, children)

		select {
		case <-watch:
		case <-z.ctx.Done():
			return
		}
	}
}

// syncEndpoints 将目录内容与导入注册表对齐
func (z *ZooKeeper) syncEndpoints(conn *zk.Conn, fwUID string, children []string) {
	current := make(map[string]bool, len(children))
	for _, uid := range children {
		current[uid] = true
	}

	z.mu.Lock()
	previous := z.known[fwUID]
	if previous == nil {
		previous = make(map[string]bool)
	}
	z.known[fwUID] = current
	z.mu.Unlock()

	for uid := range previous {
		if !current[uid] {
			if z.imports.Remove(uid) {
				logger.Debug("远端端点已移除", "uid", uid)
			}
		}
	}

	for _, uid := range children {
		data, _, err := conn.Get(endpointPath(fwUID, uid))
		if err != nil {
			if err != zk.ErrNoNode {
				logger.Warn("端点节点读取失败", "uid", uid, "error", err)
			}
			continue
		}

		desc, err := edef.ParseFirst(data)
		if err != nil {
			logger.Warn("端点 EDEF 解析失败", "uid", uid, "error", err)
			continue
		}

		// 防自环（目录名与描述不一致时以描述为准）
		if desc.FrameworkUUID() == z.frameworkUID() {
			continue
		}

		imported := desc.ToImport()
		if host, _, err := conn.Get(frameworkPath(fwUID)); err == nil {
			imported.Server = string(host)
		}

		if !z.imports.Add(imported) {
			z.imports.Update(imported.UID, imported.Properties)
		}
	}
}

// forgetFramework 丢弃某框架的本地跟踪状态
func (z *ZooKeeper) forgetFramework(fwUID string) {
	z.mu.Lock()
	delete(z.known, fwUID)
	z.mu.Unlock()
}

// waitRetry 出错后的退避等待；返回 false 表示已停止
func (z *ZooKeeper) waitRetry() bool {
	select {
	case <-time.After(time.Second):
		return true
	case <-z.ctx.Done():
		return false
	}
}

// ===== 辅助 =====

func (z *ZooKeeper) frameworkUID() string {
	return z.dispatcher.FrameworkUID()
}

func (z *ZooKeeper) currentConn() *zk.Conn {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.conn
}
