package remotesvc

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	// Core Layer
	"github.com/dep2p/go-remotesvc/internal/core/dispatch"
	"github.com/dep2p/go-remotesvc/internal/core/httpserver"
	"github.com/dep2p/go-remotesvc/internal/core/registry"

	// Discovery Layer
	"github.com/dep2p/go-remotesvc/internal/discovery/mdns"
	"github.com/dep2p/go-remotesvc/internal/discovery/mqtt"
	"github.com/dep2p/go-remotesvc/internal/discovery/multicast"
	rdiscovery "github.com/dep2p/go-remotesvc/internal/discovery/redis"
	"github.com/dep2p/go-remotesvc/internal/discovery/zookeeper"

	"github.com/dep2p/go-remotesvc/pkg/interfaces"
)

// populated 从容器取回门面持有的组件
type populated struct {
	fx.In
	Exports  interfaces.ExportRegistry
	Imports  interfaces.ImportRegistry
	Resolver *dispatch.Resolver
	Servlet  *dispatch.Servlet
	Server   *httpserver.Server

	Multicast *multicast.Multicast `optional:"true"`
	MDNS      *mdns.MDNS           `optional:"true"`
	MQTT      *mqtt.MQTT           `optional:"true"`
	Redis     *rdiscovery.Redis    `optional:"true"`
	ZooKeeper *zookeeper.ZooKeeper `optional:"true"`
}

// buildFxApp 构建 Fx 应用
//
// 组装内部模块，采用条件加载策略：
//   - 核心模块必须加载（注册表、HTTP 服务器、调度器）
//   - 发现后端按配置加载
//
// 加载顺序（按依赖）：
//  1. Core Layer: Registry → HTTPServer → Dispatch
//  2. Discovery Layer: Multicast / mDNS / MQTT / Redis / ZooKeeper
func buildFxApp(f *Framework) (*fx.App, error) {
	cfg := f.cfg

	modules := []fx.Option{
		// 配置与框架标识注入
		fx.Supply(cfg),
		fx.Supply(f.uid),

		// 核心模块（必须）
		registry.Module,
		httpserver.Module,
		dispatch.Module,
	}

	// 发现层（条件加载）
	if cfg.Discovery.EnableMulticast {
		modules = append(modules, multicast.Module)
	}
	if cfg.Discovery.EnableMDNS {
		modules = append(modules, mdns.Module)
	}
	if cfg.Discovery.EnableMQTT {
		modules = append(modules, mqtt.Module)
	}
	if cfg.Discovery.EnableRedis {
		modules = append(modules, rdiscovery.Module)
	}
	if cfg.Discovery.EnableZooKeeper {
		modules = append(modules, zookeeper.Module)
	}

	// 取回门面组件
	var out populated
	modules = append(modules,
		fx.Populate(&out),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}

	f.exports = out.Exports
	f.imports = out.Imports
	f.resolver = out.Resolver
	f.servlet = out.Servlet
	f.server = out.Server

	f.providers = f.providers[:0]
	if out.Multicast != nil {
		f.providers = append(f.providers, out.Multicast)
	}
	if out.MDNS != nil {
		f.providers = append(f.providers, out.MDNS)
	}
	if out.MQTT != nil {
		f.providers = append(f.providers, out.MQTT)
	}
	if out.Redis != nil {
		f.providers = append(f.providers, out.Redis)
	}
	if out.ZooKeeper != nil {
		f.providers = append(f.providers, out.ZooKeeper)
	}

	return app, nil
}
