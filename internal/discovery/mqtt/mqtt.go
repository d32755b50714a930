package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/dep2p/go-remotesvc/internal/core/edef"
	"github.com/dep2p/go-remotesvc/pkg/interfaces"
	"github.com/dep2p/go-remotesvc/pkg/lib/log"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

// MQTT 模块 logger
var logger = log.Logger("discovery/mqtt")

// 事件发布使用 QoS 2（恰好一次）
const eventQoS byte = 2

// MQTT 基于 broker 的发现服务
type MQTT struct {
	config *Config

	dispatcher interfaces.Dispatcher
	imports    interfaces.ImportRegistry

	mu     sync.Mutex
	client pahomqtt.Client

	started atomic.Bool
	closed  atomic.Bool
}

// New 创建 MQTT 发现服务
func New(dispatcher interfaces.Dispatcher, imports interfaces.ImportRegistry, config *Config) (*MQTT, error) {
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

	return &MQTT{
		config:     config,
		dispatcher: dispatcher,
		imports:    imports,
	}, nil
}

// Name 返回后端名称
func (m *MQTT) Name() string {
	return "mqtt"
}

// ===== 主题 =====

func (m *MQTT) topicAdd() string      { return m.config.TopicPrefix + "/add" }
func (m *MQTT) topicUpdate() string   { return m.config.TopicPrefix + "/update" }
func (m *MQTT) topicRemove() string   { return m.config.TopicPrefix + "/remove" }
func (m *MQTT) topicDiscover() string { return m.config.TopicPrefix + "/discover" }
func (m *MQTT) topicLost() string     { return m.config.TopicPrefix + "/lost" }

// ===== 生命周期 =====

// Start 启动服务
//
// 连接 broker 并设置遗嘱；订阅、探询与公告在 OnConnect 回调中执行，
// 重连成功后会再次触发。broker 暂不可达不算启动失败：
// 客户端按 RetryInterval 在后台持续重连。
func (m *MQTT) Start(_ context.Context) error {
	if m.closed.Load() {
		return ErrAlreadyClosed
	}

	if m.started.Swap(true) {
		return ErrAlreadyStarted
	}

	fwUID := m.dispatcher.FrameworkUID()

	opts := pahomqtt.NewClientOptions().
		AddBroker(m.config.Broker).
		SetClientID("remotesvc-" + fwUID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(m.config.RetryInterval).
		SetCleanSession(true).
		SetConnectTimeout(m.config.ConnectTimeout).
		SetBinaryWill(m.topicLost(), []byte(fwUID), eventQoS, false).
		SetOnConnectHandler(m.onConnect)

	client := pahomqtt.NewClient(opts)

	// 开启连接重试后 token 只在连上时完成；
	// 限时等待只为尽早暴露配置类错误，超时不视为失败
	token := client.Connect()
	if token.WaitTimeout(m.config.ConnectTimeout) {
		if err := token.Error(); err != nil {
			m.started.Store(false)
			return fmt.Errorf("%w: %v", ErrConnect, err)
		}
	} else {
		logger.Warn("broker 暂不可达，按间隔持续重连",
			"broker", m.config.Broker,
			"interval", m.config.RetryInterval)
	}

	m.mu.Lock()
	m.client = client
	m.mu.Unlock()

	logger.Info("MQTT 发现已启动",
		"broker", m.config.Broker,
		"prefix", m.config.TopicPrefix)
	return nil
}

// Stop 停止服务
//
// 主动发布 lost 通告下线（遗嘱只覆盖非正常断连），再断开连接。
func (m *MQTT) Stop(_ context.Context) error {
	if m.closed.Swap(true) {
		return nil
	}

	m.mu.Lock()
	client := m.client
	m.client = nil
	m.mu.Unlock()

	if client == nil {
		return nil
	}

	if client.IsConnected() {
		m.publishOn(client, m.topicLost(), []byte(m.dispatcher.FrameworkUID()))
	}
	client.Disconnect(250)

	logger.Info("MQTT 发现已停止")
	return nil
}

// onConnect 连接（含重连）成功回调
func (m *MQTT) onConnect(client pahomqtt.Client) {
	topics := map[string]byte{
		m.topicAdd():      eventQoS,
		m.topicUpdate():   eventQoS,
		m.topicRemove():   eventQoS,
		m.topicDiscover(): eventQoS,
		m.topicLost():     eventQoS,
	}
	token := client.SubscribeMultiple(topics, m.onMessage)
	if !token.WaitTimeout(m.config.PublishTimeout) || token.Error() != nil {
		logger.Warn("MQTT 订阅失败", "error", token.Error())
		return
	}

	// 冷启动追赶：探询在线框架，并重新公告本地端点
	m.publishOn(client, m.topicDiscover(), []byte(m.dispatcher.FrameworkUID()))
	if eps := m.dispatcher.GetEndpoints(); len(eps) > 0 {
		m.publishEndpointsOn(client, m.topicAdd(), eps)
	}

	logger.Debug("MQTT 已订阅发现主题", "count", len(topics))
}

// ===== 导出监听（ExportListener）=====

// EndpointsAdded 发布 add
func (m *MQTT) EndpointsAdded(eps []*types.ExportEndpoint) {
	m.publishEndpoints(m.topicAdd(), eps)
}

// EndpointUpdated 发布 update
func (m *MQTT) EndpointUpdated(ep *types.ExportEndpoint, _ map[string]any) {
	m.publishEndpoints(m.topicUpdate(), []*types.ExportEndpoint{ep})
}

// EndpointRemoved 发布 remove
func (m *MQTT) EndpointRemoved(ep *types.ExportEndpoint) {
	m.publishEndpoints(m.topicRemove(), []*types.ExportEndpoint{ep})
}

// ===== 消息处理 =====

// onMessage 统一消息入口
func (m *MQTT) onMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	payload := msg.Payload()

	switch msg.Topic() {
	case m.topicAdd(), m.topicUpdate():
		m.handleEndpoints(payload, false)

	case m.topicRemove():
		m.handleEndpoints(payload, true)

	case m.topicDiscover():
		m.handleDiscover(string(payload))

	case m.topicLost():
		m.handleLost(string(payload))

	default:
		logger.Debug("未知 MQTT 主题", "topic", msg.Topic())
	}
}

// handleEndpoints 处理 EDEF 载荷（add/update 注册，remove 移除）
func (m *MQTT) handleEndpoints(payload []byte, remove bool) {
	descs, err := edef.Parse(payload)
	if err != nil {
		logger.Warn("EDEF 载荷解析失败", "error", err)
		return
	}

	for _, desc := range descs {
		// 防自环
		if desc.FrameworkUUID() == m.dispatcher.FrameworkUID() {
			continue
		}

		if remove {
			if m.imports.Remove(desc.ID()) {
				logger.Debug("远端端点已移除", "uid", desc.ID())
			}
			continue
		}

		imported := desc.ToImport()
		if !m.imports.Add(imported) {
			m.imports.Update(imported.UID, imported.Properties)
		}
	}
}

// handleDiscover 应答探询：重新公告本地全部端点
func (m *MQTT) handleDiscover(sender string) {
	if sender == m.dispatcher.FrameworkUID() {
		return
	}

	eps := m.dispatcher.GetEndpoints()
	if len(eps) == 0 {
		return
	}
	m.publishEndpoints(m.topicAdd(), eps)
}

// handleLost 清理下线框架的全部端点
func (m *MQTT) handleLost(fwUID string) {
	if fwUID == "" || fwUID == m.dispatcher.FrameworkUID() {
		return
	}

	m.imports.LostFramework(fwUID)
	logger.Info("远端框架下线", "framework", fwUID)
}

// ===== 发布 =====

// publishEndpoints 将端点编码为 EDEF 并发布
func (m *MQTT) publishEndpoints(topic string, eps []*types.ExportEndpoint) {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()

	if client == nil {
		return
	}
	m.publishEndpointsOn(client, topic, eps)
}

func (m *MQTT) publishEndpointsOn(client pahomqtt.Client, topic string, eps []*types.ExportEndpoint) {
	descs := make([]*types.EndpointDescription, 0, len(eps))
	for _, ep := range eps {
		desc, err := types.FromExport(ep)
		if err != nil {
			logger.Warn("端点描述构建失败", "uid", ep.UID, "error", err)
			continue
		}
		descs = append(descs, desc)
	}
	if len(descs) == 0 {
		return
	}

	payload, err := edef.Marshal(descs)
	if err != nil {
		logger.Warn("EDEF 编码失败", "error", err)
		return
	}

	m.publishOn(client, topic, payload)
}

// publishOn 按 QoS 2 发布并限时等待确认
//
// 等待超时只记日志，消息仍在途（fire-and-forget 退化）。
func (m *MQTT) publishOn(client pahomqtt.Client, topic string, payload []byte) {
	token := client.Publish(topic, eventQoS, false, payload)
	if !token.WaitTimeout(m.config.PublishTimeout) {
		logger.Debug("MQTT 发布确认超时", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		logger.Warn("MQTT 发布失败", "topic", topic, "error", err)
	}
}
