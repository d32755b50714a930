package multicast

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-remotesvc/internal/core/dispatch"
	"github.com/dep2p/go-remotesvc/pkg/interfaces"
	"github.com/dep2p/go-remotesvc/pkg/lib/log"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

// 组播模块 logger
var logger = log.Logger("discovery/multicast")

// 组播 UDP 报文上限（IPv4 UDP 载荷极限）
const maxPacketSize = 65507

// 套接字重建的重试间隔
const rebuildDelay = time.Second

// Multicast 组播 UDP 发现服务
type Multicast struct {
	ctx    context.Context
	cancel context.CancelFunc
	config *Config

	dispatcher  interfaces.Dispatcher
	imports     interfaces.ImportRegistry
	registrar   interfaces.HTTPRegistrar
	servletPath string

	group  *net.UDPAddr
	conn   *net.UDPConn
	client *http.Client
	listen func(group *net.UDPAddr) (*net.UDPConn, error)

	started atomic.Bool
	closed  atomic.Bool
	mu      sync.Mutex
	wg      sync.WaitGroup
}

// New 创建组播发现服务
//
// registrar 与 servletPath 描述本进程的调度器 servlet 访问信息，
// 随 add/update 报文对外公告。
func New(dispatcher interfaces.Dispatcher, imports interfaces.ImportRegistry, registrar interfaces.HTTPRegistrar, servletPath string, config *Config) (*Multicast, error) {
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

	return &Multicast{
		ctx:         ctx,
		cancel:      cancel,
		config:      config,
		dispatcher:  dispatcher,
		imports:     imports,
		registrar:   registrar,
		servletPath: servletPath,
		client:      &http.Client{Timeout: config.FetchTimeout},
		listen: func(group *net.UDPAddr) (*net.UDPConn, error) {
			return net.ListenMulticastUDP("udp4", nil, group)
		},
	}, nil
}

// Name 返回后端名称
func (m *Multicast) Name() string {
	return "multicast"
}

// Start 启动服务
//
// 加入组播组、启动接收循环，并广播一次 discover 请求做冷启动追赶。
func (m *Multicast) Start(_ context.Context) error {
	if m.closed.Load() {
		return ErrAlreadyClosed
	}

	if m.started.Swap(true) {
		return ErrAlreadyStarted
	}

	ip := net.ParseIP(m.config.Group)
	if ip == nil || !ip.IsMulticast() {
		m.started.Store(false)
		return fmt.Errorf("%w: %q", ErrBadGroupAddress, m.config.Group)
	}
	group := &net.UDPAddr{IP: ip, Port: m.config.Port}

	conn, err := m.listen(group)
	if err != nil {
		m.started.Store(false)
		return err
	}
	_ = conn.SetReadBuffer(maxPacketSize)

	m.mu.Lock()
	m.group = group
	m.conn = conn
	m.mu.Unlock()

	m.wg.Add(1)
	go m.receiveLoop(conn)

	// 冷启动：请求在线对端定向应答 add
	m.sendTo(group, packet{
		Sender: m.dispatcher.FrameworkUID(),
		Event:  eventDiscover,
	})

	logger.Info("组播发现已启动",
		"group", m.config.Group,
		"port", m.config.Port)
	return nil
}

// Stop 停止服务
//
// 先广播 remove 撤销本地全部端点，再关闭套接字并等待接收循环退出。
func (m *Multicast) Stop(_ context.Context) error {
	if m.closed.Swap(true) {
		return nil
	}

	eps := m.dispatcher.GetEndpoints()
	if len(eps) > 0 {
		uids := make([]string, 0, len(eps))
		for _, ep := range eps {
			uids = append(uids, ep.UID)
		}
		m.broadcast(packet{
			Sender: m.dispatcher.FrameworkUID(),
			Event:  eventRemove,
			UIDs:   uids,
		})
	}

	m.cancel()

	m.mu.Lock()
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.mu.Unlock()

	// 带超时等待接收循环退出，避免阻塞整个关闭流程
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Debug("组播接收循环已退出")
	case <-time.After(2 * time.Second):
		logger.Debug("组播关闭超时，goroutine 将在后台继续清理")
	}

	return nil
}

// ===== 导出监听（ExportListener）=====

// EndpointsAdded 广播 add，通知对端来拉取
func (m *Multicast) EndpointsAdded(_ []*types.ExportEndpoint) {
	m.broadcastEvent(eventAdd)
}

// EndpointUpdated 广播 update
func (m *Multicast) EndpointUpdated(_ *types.ExportEndpoint, _ map[string]any) {
	m.broadcastEvent(eventUpdate)
}

// EndpointRemoved 广播 remove（携带被撤销端点的 UID）
func (m *Multicast) EndpointRemoved(ep *types.ExportEndpoint) {
	m.broadcast(packet{
		Sender: m.dispatcher.FrameworkUID(),
		Event:  eventRemove,
		UIDs:   []string{ep.UID},
	})
}

// ===== 报文收发 =====

// receiveLoop 接收循环
//
// 非关闭原因的读取失败不终止发现：重建套接字后继续收包。
func (m *Multicast) receiveLoop(conn *net.UDPConn) {
	defer m.wg.Done()

	buf := make([]byte, maxPacketSize)
	for {
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			if m.closed.Load() || m.ctx.Err() != nil {
				return
			}
			logger.Warn("组播读取失败，重建套接字", "error", err)
			if conn = m.rebuildConn(conn); conn == nil {
				return
			}
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		m.handlePacket(data, src)
	}
}

// rebuildConn 关闭故障套接字并重建，直到成功或进入关闭流程
func (m *Multicast) rebuildConn(old *net.UDPConn) *net.UDPConn {
	_ = old.Close()

	for {
		select {
		case <-m.ctx.Done():
			return nil
		case <-time.After(rebuildDelay):
		}

		m.mu.Lock()
		group := m.group
		m.mu.Unlock()

		conn, err := m.listen(group)
		if err != nil {
			logger.Warn("组播套接字重建失败", "error", err)
			continue
		}
		_ = conn.SetReadBuffer(maxPacketSize)

		m.mu.Lock()
		if m.closed.Load() {
			m.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		m.conn = conn
		m.mu.Unlock()

		logger.Info("组播套接字已重建")
		return conn
	}
}

// handlePacket 处理一个报文
func (m *Multicast) handlePacket(data []byte, src *net.UDPAddr) {
	pkt, err := decodePacket(data)
	if err != nil {
		logger.Debug("组播报文解析失败", "error", err, "src", src.String())
		return
	}

	// 防自环：跳过本框架发出的报文
	if pkt.Sender == m.dispatcher.FrameworkUID() {
		return
	}

	switch pkt.Event {
	case eventDiscover:
		// 定向应答 add，让对端来拉取本地端点
		m.sendTo(src, packet{
			Sender: m.dispatcher.FrameworkUID(),
			Event:  eventAdd,
			Access: m.localAccess(),
		})

	case eventAdd, eventUpdate:
		if pkt.Access == nil {
			logger.Debug("报文缺少 access 字段", "event", pkt.Event, "sender", pkt.Sender)
			return
		}
		m.pullEndpoints(src.IP.String(), pkt.Access)

	case eventRemove:
		for _, uid := range pkt.UIDs {
			if m.imports.Remove(uid) {
				logger.Debug("远端端点已移除", "uid", uid, "sender", pkt.Sender)
			}
		}

	default:
		logger.Debug("未知组播事件", "event", pkt.Event, "sender", pkt.Sender)
	}
}

// pullEndpoints 从对端调度器 servlet 拉取端点列表并注册
func (m *Multicast) pullEndpoints(host string, acc *access) {
	url := fmt.Sprintf("http://%s%s/endpoints",
		net.JoinHostPort(host, strconv.Itoa(acc.Port)), acc.Path)

	resp, err := m.client.Get(url)
	if err != nil {
		logger.Warn("拉取对端端点失败", "url", url, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("拉取对端端点响应异常", "url", url, "status", resp.StatusCode)
		return
	}

	var endpoints []dispatch.EndpointJSON
	if err := json.NewDecoder(resp.Body).Decode(&endpoints); err != nil {
		logger.Warn("对端端点列表解析失败", "url", url, "error", err)
		return
	}

	for _, j := range endpoints {
		imported := j.ToImport(host)
		if !m.imports.Add(imported) {
			m.imports.Update(imported.UID, imported.Properties)
		}
	}
}

// broadcastEvent 广播一个携带本地访问信息的事件
func (m *Multicast) broadcastEvent(event string) {
	m.broadcast(packet{
		Sender: m.dispatcher.FrameworkUID(),
		Event:  event,
		Access: m.localAccess(),
	})
}

// broadcast 向组播组发送报文
func (m *Multicast) broadcast(pkt packet) {
	m.mu.Lock()
	group := m.group
	m.mu.Unlock()

	if group == nil {
		return
	}
	m.sendTo(group, pkt)
}

// sendTo 向指定地址发送报文
func (m *Multicast) sendTo(addr *net.UDPAddr, pkt packet) {
	data, err := encodePacket(pkt)
	if err != nil {
		logger.Warn("组播报文编码失败", "error", err)
		return
	}

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		return
	}

	if _, err := conn.WriteToUDP(data, addr); err != nil {
		logger.Warn("组播报文发送失败", "addr", addr.String(), "error", err)
	}
}

// localAccess 本地调度器 servlet 的访问信息
func (m *Multicast) localAccess() *access {
	port := 0
	if m.registrar != nil {
		port = m.registrar.Port()
	}
	return &access{Port: port, Path: m.servletPath}
}
