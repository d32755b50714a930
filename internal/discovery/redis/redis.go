package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/dep2p/go-remotesvc/internal/core/edef"
	"github.com/dep2p/go-remotesvc/pkg/interfaces"
	"github.com/dep2p/go-remotesvc/pkg/lib/log"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

// Redis 模块 logger
var logger = log.Logger("discovery/redis")

// Redis 基于 Redis 的发现服务
type Redis struct {
	ctx    context.Context
	cancel context.CancelFunc
	config *Config

	dispatcher interfaces.Dispatcher
	imports    interfaces.ImportRegistry

	mu     sync.Mutex
	client *goredis.Client
	pubsub *goredis.PubSub

	hostname string

	started atomic.Bool
	closed  atomic.Bool
	wg      sync.WaitGroup
}

// New 创建 Redis 发现服务
func New(dispatcher interfaces.Dispatcher, imports interfaces.ImportRegistry, config *Config) (*Redis, error) {
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

	return &Redis{
		ctx:        ctx,
		cancel:     cancel,
		config:     config,
		dispatcher: dispatcher,
		imports:    imports,
		hostname:   hostname,
	}, nil
}

// Name 返回后端名称
func (r *Redis) Name() string {
	return "redis"
}

// Start 启动服务
//
// 连接、开启键空间通知、写心跳、公告本地端点、SCAN 追赶存量，
// 最后进入通知循环与心跳循环。
func (r *Redis) Start(ctx context.Context) error {
	if r.closed.Load() {
		return ErrAlreadyClosed
	}

	if r.started.Swap(true) {
		return ErrAlreadyStarted
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     r.config.Addr,
		Password: r.config.Password,
		DB:       r.config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		r.started.Store(false)
		_ = client.Close()
		return fmt.Errorf("%w: %v", ErrConnect, err)
	}

	// 托管实例可能禁止 CONFIG SET，失败仅记日志
	if err := client.ConfigSet(ctx, "notify-keyspace-events", "K$gxe").Err(); err != nil {
		logger.Warn("键空间通知开启失败，需服务端预先配置", "error", err)
	}

	// 先订阅再追赶，避免窗口内丢事件
	pubsub := client.PSubscribe(r.ctx, r.notifyPattern())

	r.mu.Lock()
	r.client = client
	r.pubsub = pubsub
	r.mu.Unlock()

	if err := client.Set(ctx, frameworkKey(r.frameworkUID()), r.hostname, r.config.TTL()).Err(); err != nil {
		logger.Warn("心跳键写入失败", "error", err)
	}

	for _, ep := range r.dispatcher.GetEndpoints() {
		r.setEndpoint(ctx, client, ep)
	}

	r.catchUp(ctx, client)

	r.wg.Add(2)
	go r.notificationLoop(pubsub)
	go r.heartbeatLoop(client)

	logger.Info("Redis 发现已启动",
		"addr", r.config.Addr,
		"heartbeat", r.config.HeartbeatInterval)
	return nil
}

// Stop 停止服务
//
// 删除自身的心跳键与端点键（触发对端的 del 通知），再释放连接。
func (r *Redis) Stop(_ context.Context) error {
	if r.closed.Swap(true) {
		return nil
	}

	r.mu.Lock()
	client := r.client
	pubsub := r.pubsub
	r.client = nil
	r.pubsub = nil
	r.mu.Unlock()

	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		keys := []string{frameworkKey(r.frameworkUID())}
		for _, ep := range r.dispatcher.GetEndpoints() {
			keys = append(keys, serviceKey(r.frameworkUID(), ep.UID))
		}
		if err := client.Del(ctx, keys...).Err(); err != nil {
			logger.Warn("清理自身键失败", "error", err)
		}
		cancel()
	}

	r.cancel()
	if pubsub != nil {
		_ = pubsub.Close()
	}
	if client != nil {
		_ = client.Close()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Debug("Redis 后台协程已退出")
	case <-time.After(2 * time.Second):
		logger.Debug("Redis 关闭超时，goroutine 将在后台继续清理")
	}

	return nil
}

// ===== 导出监听（ExportListener）=====

// EndpointsAdded 写入端点键
func (r *Redis) EndpointsAdded(eps []*types.ExportEndpoint) {
	client := r.currentClient()
	if client == nil {
		return
	}
	for _, ep := range eps {
		r.setEndpoint(r.ctx, client, ep)
	}
}

// EndpointUpdated 覆写端点键
func (r *Redis) EndpointUpdated(ep *types.ExportEndpoint, _ map[string]any) {
	client := r.currentClient()
	if client == nil {
		return
	}
	r.setEndpoint(r.ctx, client, ep)
}

// EndpointRemoved 删除端点键
func (r *Redis) EndpointRemoved(ep *types.ExportEndpoint) {
	client := r.currentClient()
	if client == nil {
		return
	}
	if err := client.Del(r.ctx, serviceKey(r.frameworkUID(), ep.UID)).Err(); err != nil {
		logger.Warn("端点键删除失败", "uid", ep.UID, "error", err)
	}
}

// setEndpoint 将端点序列化为 EDEF 写入端点键（无 TTL）
func (r *Redis) setEndpoint(ctx context.Context, client *goredis.Client, ep *types.ExportEndpoint) {
	desc, err := types.FromExport(ep)
	if err != nil {
		logger.Warn("端点描述构建失败", "uid", ep.UID, "error", err)
		return
	}
	payload, err := edef.MarshalEndpoint(desc)
	if err != nil {
		logger.Warn("EDEF 编码失败", "uid", ep.UID, "error", err)
		return
	}

	if err := client.Set(ctx, serviceKey(r.frameworkUID(), ep.UID), payload, 0).Err(); err != nil {
		logger.Warn("端点键写入失败", "uid", ep.UID, "error", err)
	}
}

// ===== 后台循环 =====

// heartbeatLoop 心跳刷新循环
func (r *Redis) heartbeatLoop(client *goredis.Client) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := client.Set(r.ctx, frameworkKey(r.frameworkUID()), r.hostname, r.config.TTL()).Err(); err != nil {
				if r.ctx.Err() != nil {
					return
				}
				logger.Warn("心跳刷新失败", "error", err)
			}
		case <-r.ctx.Done():
			return
		}
	}
}

// notificationLoop 键空间通知循环
func (r *Redis) notificationLoop(pubsub *goredis.PubSub) {
	defer r.wg.Done()

	for msg := range pubsub.Channel() {
		key, ok := strings.CutPrefix(msg.Channel, r.channelPrefix())
		if !ok {
			continue
		}
		r.handleNotification(key, msg.Payload)
	}
}

// handleNotification 处理一条键空间通知
//
// payload 为触发事件的命令名（set/del/expired/evicted）。
func (r *Redis) handleNotification(key, event string) {
	if fwUID, ok := parseFrameworkKey(key); ok {
		if fwUID == r.frameworkUID() {
			return
		}
		switch event {
		case "del", "expired", "evicted":
			r.imports.LostFramework(fwUID)
			r.purgeFrameworkKeys(fwUID)
			logger.Info("远端框架心跳丢失", "framework", fwUID, "event", event)
		}
		return
	}

	fwUID, uid, ok := parseServiceKey(key)
	if !ok || fwUID == r.frameworkUID() {
		return
	}

	switch event {
	case "set":
		client := r.currentClient()
		if client == nil {
			return
		}
		r.loadEndpoint(r.ctx, client, fwUID, uid)

	case "del", "expired", "evicted":
		if r.imports.Remove(uid) {
			logger.Debug("远端端点已移除", "uid", uid)
		}

	default:
		logger.Debug("忽略键空间事件", "key", key, "event", event)
	}
}

// catchUp 冷启动追赶：SCAN 枚举存量端点键
func (r *Redis) catchUp(ctx context.Context, client *goredis.Client) {
	iter := client.Scan(ctx, 0, serviceKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		fwUID, uid, ok := parseServiceKey(iter.Val())
		if !ok || fwUID == r.frameworkUID() {
			continue
		}
		r.loadEndpoint(ctx, client, fwUID, uid)
	}
	if err := iter.Err(); err != nil {
		logger.Warn("存量端点枚举失败", "error", err)
	}
}

// loadEndpoint 读取端点键并注册导入端点
//
// 端点键本身无 TTL：所属框架的心跳缺失说明宿主已非正常退出，
// 此时删除遗留键并跳过，不导入永远无人撤销的端点。
func (r *Redis) loadEndpoint(ctx context.Context, client *goredis.Client, fwUID, uid string) {
	// 心跳键同时承载存活判定与主机名
	host, err := client.Get(ctx, frameworkKey(fwUID)).Result()
	if err == goredis.Nil {
		logger.Info("所属框架心跳缺失，清理遗留端点键", "framework", fwUID, "uid", uid)
		if err := client.Del(ctx, serviceKey(fwUID, uid)).Err(); err != nil {
			logger.Warn("遗留端点键删除失败", "uid", uid, "error", err)
		}
		return
	}
	if err != nil {
		logger.Warn("心跳键读取失败", "framework", fwUID, "error", err)
		host = ""
	}

	payload, err := client.Get(ctx, serviceKey(fwUID, uid)).Result()
	if err != nil {
		if err != goredis.Nil {
			logger.Warn("端点键读取失败", "uid", uid, "error", err)
		}
		return
	}

	desc, err := edef.ParseFirst([]byte(payload))
	if err != nil {
		logger.Warn("端点 EDEF 解析失败", "uid", uid, "error", err)
		return
	}

	imported := desc.ToImport()
	imported.Server = host

	if !r.imports.Add(imported) {
		r.imports.Update(imported.UID, imported.Properties)
	}
}

// purgeFrameworkKeys 删除已死框架遗留的端点键
//
// 端点键由宿主负责删除；宿主异常退出时由观察到心跳丢失的存活方代劳。
func (r *Redis) purgeFrameworkKeys(fwUID string) {
	client := r.currentClient()
	if client == nil {
		return
	}

	iter := client.Scan(r.ctx, 0, serviceKeyPrefix+fwUID+"/*", 0).Iterator()
	var keys []string
	for iter.Next(r.ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warn("遗留端点键枚举失败", "framework", fwUID, "error", err)
	}
	if len(keys) == 0 {
		return
	}

	if err := client.Del(r.ctx, keys...).Err(); err != nil {
		logger.Warn("遗留端点键删除失败", "framework", fwUID, "error", err)
		return
	}
	logger.Debug("遗留端点键已清理", "framework", fwUID, "count", len(keys))
}

// ===== 辅助 =====

func (r *Redis) frameworkUID() string {
	return r.dispatcher.FrameworkUID()
}

// channelPrefix 键空间通知频道前缀
func (r *Redis) channelPrefix() string {
	return fmt.Sprintf("__keyspace@%d__:", r.config.DB)
}

// notifyPattern 订阅用的频道模式
func (r *Redis) notifyPattern() string {
	return r.channelPrefix() + keyPattern
}

func (r *Redis) currentClient() *goredis.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client
}
