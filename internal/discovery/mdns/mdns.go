package mdns

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/dep2p/go-remotesvc/pkg/interfaces"
	"github.com/dep2p/go-remotesvc/pkg/lib/log"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

// mDNS 模块 logger
var logger = log.Logger("discovery/mdns")

// 注册记录时的占位端口（registrar 端口不可用时使用）
const placeholderPort = 4001

// MDNS mDNS/Zeroconf 发现服务
type MDNS struct {
	ctx    context.Context
	cancel context.CancelFunc
	config *Config

	dispatcher interfaces.Dispatcher
	imports    interfaces.ImportRegistry
	registrar  interfaces.HTTPRegistrar

	mu      sync.Mutex
	servers map[string]*zeroconf.Server // 本地端点 UID → 已注册记录
	seen    map[string]time.Time        // 远端端点 UID → 最近刷新时间
	owners  map[string]string           // 远端端点 UID → 框架 UID

	started atomic.Bool
	closed  atomic.Bool
	wg      sync.WaitGroup
}

// New 创建 mDNS 发现服务
func New(dispatcher interfaces.Dispatcher, imports interfaces.ImportRegistry, registrar interfaces.HTTPRegistrar, config *Config) (*MDNS, error) {
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

	ctx, cancel := context.WithCancel(context.Background())

	return &MDNS{
		ctx:        ctx,
		cancel:     cancel,
		config:     config,
		dispatcher: dispatcher,
		imports:    imports,
		registrar:  registrar,
		servers:    make(map[string]*zeroconf.Server),
		seen:       make(map[string]time.Time),
		owners:     make(map[string]string),
	}, nil
}

// Name 返回后端名称
func (m *MDNS) Name() string {
	return "mdns"
}

// Start 启动服务
//
// 先公告已有的本地端点，再进入浏览循环。
func (m *MDNS) Start(_ context.Context) error {
	if m.closed.Load() {
		return ErrAlreadyClosed
	}

	if m.started.Swap(true) {
		return ErrAlreadyStarted
	}

	for _, ep := range m.dispatcher.GetEndpoints() {
		m.registerEndpoint(ep)
	}

	m.wg.Add(1)
	go m.browseLoop()

	logger.Info("mDNS 发现已启动",
		"serviceType", m.config.ServiceType,
		"ttl", m.config.TTL)
	return nil
}

// Stop 停止服务
//
// 注销本地全部记录（对端收不到刷新后按 TTL 失活），等待浏览循环退出。
func (m *MDNS) Stop(_ context.Context) error {
	if m.closed.Swap(true) {
		return nil
	}

	m.cancel()

	m.mu.Lock()
	for uid, server := range m.servers {
		server.Shutdown()
		delete(m.servers, uid)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Debug("mDNS 浏览循环已退出")
	case <-time.After(2 * time.Second):
		logger.Debug("mDNS 关闭超时，goroutine 将在后台继续清理")
	}

	return nil
}

// ===== 导出监听（ExportListener）=====

// EndpointsAdded 为每个新端点注册一条服务记录
func (m *MDNS) EndpointsAdded(eps []*types.ExportEndpoint) {
	for _, ep := range eps {
		m.registerEndpoint(ep)
	}
}

// EndpointUpdated 重新注册记录以刷新 TXT
func (m *MDNS) EndpointUpdated(ep *types.ExportEndpoint, _ map[string]any) {
	m.unregisterEndpoint(ep.UID)
	m.registerEndpoint(ep)
}

// EndpointRemoved 注销端点的服务记录
func (m *MDNS) EndpointRemoved(ep *types.ExportEndpoint) {
	m.unregisterEndpoint(ep.UID)
}

// registerEndpoint 注册一条服务记录（实例名 = 端点 UID）
func (m *MDNS) registerEndpoint(ep *types.ExportEndpoint) {
	txt, err := encodeTXT(m.dispatcher.FrameworkUID(), ep.UID, ep.Name,
		ep.Configurations, ep.Specifications, ep.MakeImportProperties())
	if err != nil {
		logger.Warn("端点 TXT 编码失败", "uid", ep.UID, "error", err)
		return
	}

	port := placeholderPort
	if m.registrar != nil && m.registrar.Port() > 0 {
		port = m.registrar.Port()
	}

	server, err := zeroconf.Register(ep.UID, m.config.ServiceType, m.config.Domain, port, txt, nil)
	if err != nil {
		logger.Warn("mDNS 记录注册失败", "uid", ep.UID, "error", err)
		return
	}

	m.mu.Lock()
	if old, ok := m.servers[ep.UID]; ok {
		old.Shutdown()
	}
	m.servers[ep.UID] = server
	m.mu.Unlock()

	logger.Debug("mDNS 记录已注册", "uid", ep.UID, "name", ep.Name)
}

// unregisterEndpoint 注销端点的服务记录
func (m *MDNS) unregisterEndpoint(uid string) {
	m.mu.Lock()
	server, ok := m.servers[uid]
	if ok {
		delete(m.servers, uid)
	}
	m.mu.Unlock()

	if ok {
		server.Shutdown()
		logger.Debug("mDNS 记录已注销", "uid", uid)
	}
}

// ===== 浏览与失活 =====

// browseLoop 浏览循环
//
// 每轮浏览一个 TTL 周期后做一次失活清扫；整轮重建 resolver，
// 使存活记录在每个周期都被重新投递。
func (m *MDNS) browseLoop() {
	defer m.wg.Done()

	for {
		if m.ctx.Err() != nil {
			return
		}

		m.browseOnce()
		m.sweep()

		select {
		case <-m.ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

// browseOnce 执行一轮浏览（时长 = TTL）
func (m *MDNS) browseOnce() {
	ctx, cancel := context.WithTimeout(m.ctx, m.config.TTL)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		logger.Warn("mDNS 解析器创建失败", "error", err)
		return
	}

	entries := make(chan *zeroconf.ServiceEntry, 64)
	drained := make(chan struct{})

	go func() {
		defer close(drained)
		for entry := range entries {
			m.handleEntry(entry)
		}
	}()

	if err := resolver.Browse(ctx, m.config.ServiceType, m.config.Domain, entries); err != nil {
		logger.Debug("mDNS 浏览结束", "error", err)
	}

	<-ctx.Done()
	// entries 由 zeroconf 在 ctx 取消后关闭
	<-drained
}

// handleEntry 处理一条浏览结果
func (m *MDNS) handleEntry(entry *zeroconf.ServiceEntry) {
	server := entry.HostName
	if len(entry.AddrIPv4) > 0 {
		server = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		server = entry.AddrIPv6[0].String()
	}

	imported, err := decodeTXT(entry.Text, server)
	if err != nil {
		logger.Debug("mDNS 记录解析失败", "instance", entry.Instance, "error", err)
		return
	}

	// 防自环
	if imported.Framework == m.dispatcher.FrameworkUID() {
		return
	}

	m.mu.Lock()
	m.seen[imported.UID] = time.Now()
	m.owners[imported.UID] = imported.Framework
	m.mu.Unlock()

	if !m.imports.Add(imported) {
		m.imports.Update(imported.UID, imported.Properties)
	}
}

// sweep 失活清扫
//
// 超过 TTL 未刷新的端点移除；随后端点清零的框架按丢失处理。
func (m *MDNS) sweep() {
	now := time.Now()

	m.mu.Lock()
	var expired []string
	for uid, last := range m.seen {
		if now.Sub(last) > m.config.TTL {
			expired = append(expired, uid)
		}
	}

	lost := make(map[string]bool)
	for _, uid := range expired {
		lost[m.owners[uid]] = true
		delete(m.seen, uid)
		delete(m.owners, uid)
	}

	// 仍有存活端点的框架不算丢失
	for _, fw := range m.owners {
		delete(lost, fw)
	}
	m.mu.Unlock()

	for _, uid := range expired {
		if m.imports.Remove(uid) {
			logger.Debug("mDNS 端点失活", "uid", uid)
		}
	}
	for fw := range lost {
		m.imports.LostFramework(fw)
		logger.Info("mDNS 框架失活", "framework", fw)
	}
}
