// Package remotesvc 提供远程服务分发子系统的门面
//
// 一个 Framework 实例对应一个进程级框架：
//   - 持有框架 UID、导出/导入注册表、方法解析器与调度器 servlet
//   - 按配置启用组播 / mDNS / MQTT / Redis / ZooKeeper 发现后端
//   - 本地服务注册后由导出注册表驱动导出并经发现层公告
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	fw, err := remotesvc.New(cfg)
//	if err != nil { ... }
//	if err := fw.Start(ctx); err != nil { ... }
//	defer fw.Close()
//
//	ref, err := fw.RegisterService(myService, map[string]any{
//	    "objectClass":                 []string{"example.Echo"},
//	    "service.exported.interfaces": "*",
//	})
package remotesvc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-remotesvc/config"
	"github.com/dep2p/go-remotesvc/internal/core/dispatch"
	"github.com/dep2p/go-remotesvc/internal/core/httpserver"
	"github.com/dep2p/go-remotesvc/pkg/interfaces"
	"github.com/dep2p/go-remotesvc/pkg/lib/log"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

// Version 当前版本
const Version = "v0.1.0"

// 门面 logger
var logger = log.Logger("remotesvc")

// 默认启动/停止超时
const (
	defaultStartTimeout = 30 * time.Second
	defaultStopTimeout  = 15 * time.Second
)

// Framework 远程服务分发框架
type Framework struct {
	uid types.FrameworkUID
	cfg *config.Config
	app appRunner

	exports   interfaces.ExportRegistry
	imports   interfaces.ImportRegistry
	resolver  *dispatch.Resolver
	servlet   *dispatch.Servlet
	server    *httpserver.Server
	providers []interfaces.DiscoveryProvider

	mu            sync.Mutex
	nextServiceID int64
	services      map[int64]*types.ServiceReference

	started atomic.Bool
	closed  atomic.Bool
}

// New 创建框架实例
func New(cfg *config.Config, opts ...Option) (*Framework, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	f := &Framework{
		uid:      types.NewFrameworkUID(),
		cfg:      cfg,
		services: make(map[int64]*types.ServiceReference),
	}
	for _, opt := range opts {
		opt(f)
	}

	app, err := buildFxApp(f)
	if err != nil {
		return nil, err
	}
	f.app = app
	return f, nil
}

// Start 启动框架（HTTP 服务器、调度器、启用的发现后端）
func (f *Framework) Start(ctx context.Context) error {
	if f.closed.Load() {
		return ErrFrameworkClosed
	}
	if f.started.Swap(true) {
		return ErrFrameworkStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, defaultStartTimeout)
	defer cancel()

	if err := f.app.Start(startCtx); err != nil {
		f.started.Store(false)
		return fmt.Errorf("framework start failed: %w", err)
	}

	// 启动完成后做一次并行公告，缩短对端的冷启动收敛时间
	if err := f.Announce(ctx); err != nil {
		logger.Warn("启动公告部分失败", "error", err)
	}

	logger.Info("框架已启动",
		"uid", f.uid.String(),
		"httpPort", f.HTTPPort(),
		"providers", len(f.providers))
	return nil
}

// Stop 停止框架
func (f *Framework) Stop(ctx context.Context) error {
	if f.closed.Swap(true) {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, defaultStopTimeout)
	defer cancel()

	var errs error
	errs = multierr.Append(errs, f.app.Stop(stopCtx))

	logger.Info("框架已停止", "uid", f.uid.String())
	return errs
}

// Close 停止框架（便捷方法）
func (f *Framework) Close() error {
	return f.Stop(context.Background())
}

// Announce 让全部启用的发现后端并行重新公告本地端点
func (f *Framework) Announce(ctx context.Context) error {
	eps := f.exports.GetEndpoints()
	if len(eps) == 0 || len(f.providers) == 0 {
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	for _, provider := range f.providers {
		p := provider
		g.Go(func() error {
			p.EndpointsAdded(eps)
			return nil
		})
	}
	return g.Wait()
}

// ===== 服务注册 =====

// RegisterService 注册本地服务
//
// 属性中声明导出意图（service.exported.interfaces 等）的服务
// 会被导出注册表接手并经发现层公告。
func (f *Framework) RegisterService(instance any, properties map[string]any) (*types.ServiceReference, error) {
	if f.closed.Load() {
		return nil, ErrFrameworkClosed
	}
	if instance == nil {
		return nil, ErrNilInstance
	}

	f.mu.Lock()
	f.nextServiceID++
	ref := &types.ServiceReference{
		ServiceID:  f.nextServiceID,
		Properties: types.CopyProperties(properties),
		Instance:   instance,
	}
	f.services[ref.ServiceID] = ref
	f.mu.Unlock()

	f.exports.OnServiceEvent(types.ServiceEvent{
		Type: types.ServiceRegistered,
		Ref:  ref,
	})
	return ref, nil
}

// UpdateService 整体替换服务属性
func (f *Framework) UpdateService(ref *types.ServiceReference, newProperties map[string]any) error {
	if ref == nil {
		return types.ErrNilServiceReference
	}

	f.mu.Lock()
	if _, ok := f.services[ref.ServiceID]; !ok {
		f.mu.Unlock()
		return ErrUnknownService
	}
	oldProperties := ref.Properties
	ref.Properties = types.CopyProperties(newProperties)
	f.mu.Unlock()

	f.exports.OnServiceEvent(types.ServiceEvent{
		Type:          types.ServiceModified,
		Ref:           ref,
		OldProperties: oldProperties,
	})
	return nil
}

// UnregisterService 注销服务（撤销其全部端点）
func (f *Framework) UnregisterService(ref *types.ServiceReference) error {
	if ref == nil {
		return types.ErrNilServiceReference
	}

	f.mu.Lock()
	if _, ok := f.services[ref.ServiceID]; !ok {
		f.mu.Unlock()
		return ErrUnknownService
	}
	delete(f.services, ref.ServiceID)
	f.mu.Unlock()

	f.exports.OnServiceEvent(types.ServiceEvent{
		Type: types.ServiceUnregistering,
		Ref:  ref,
	})
	return nil
}

// Dispatch 调用本地导出服务的方法（"端点名.方法名"）
func (f *Framework) Dispatch(method string, args []any, kwargs map[string]any) (any, error) {
	return f.resolver.Dispatch(method, args, kwargs)
}

// ===== 访问器 =====

// FrameworkUID 返回框架标识
func (f *Framework) FrameworkUID() string {
	return f.uid.String()
}

// ExportRegistry 返回导出注册表
func (f *Framework) ExportRegistry() interfaces.ExportRegistry {
	return f.exports
}

// ImportRegistry 返回导入注册表
func (f *Framework) ImportRegistry() interfaces.ImportRegistry {
	return f.imports
}

// HTTPPort 返回共享 HTTP 服务器端口
func (f *Framework) HTTPPort() int {
	if f.server == nil {
		return 0
	}
	return f.server.Port()
}

// ServletPath 返回调度器 servlet 挂载路径
func (f *Framework) ServletPath() string {
	if f.servlet == nil {
		return dispatch.DefaultServletPath
	}
	return f.servlet.Path()
}

// appRunner fx.App 的最小抽象（便于测试替换）
type appRunner interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Option 框架选项
type Option func(*Framework)

// WithFrameworkUID 指定框架标识（默认随机生成）
func WithFrameworkUID(uid string) Option {
	return func(f *Framework) {
		if uid != "" {
			f.uid = types.FrameworkUID(uid)
		}
	}
}
