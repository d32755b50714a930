package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-remotesvc/internal/core/edef"
	"github.com/dep2p/go-remotesvc/internal/core/registry"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

// fakeDispatcher 空导出视图
type fakeDispatcher struct{ uid string }

func (f fakeDispatcher) FrameworkUID() string { return f.uid }

func (f fakeDispatcher) GetEndpoints(...string) []*types.ExportEndpoint { return nil }

func (f fakeDispatcher) GetEndpoint(string) *types.ExportEndpoint { return nil }

// TestDefaultConfig 测试默认配置
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultHeartbeatInterval, cfg.HeartbeatInterval)
	assert.True(t, cfg.Enabled)
}

// TestConfig_Validate 测试配置校验
func TestConfig_Validate(t *testing.T) {
	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())

	cfg := DefaultConfig()
	cfg.Addr = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DB = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.HeartbeatInterval = 0
	assert.Error(t, cfg.Validate())
}

// TestConfig_TTL 测试心跳键存活时间
func TestConfig_TTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeartbeatInterval = 10 * time.Second
	assert.Equal(t, 12*time.Second, cfg.TTL())
}

// TestNew 测试创建与参数校验
func TestNew(t *testing.T) {
	imports := registry.NewImportRegistry("fw-local")

	r, err := New(fakeDispatcher{uid: "fw-local"}, imports, nil)
	require.NoError(t, err)
	assert.Equal(t, "redis", r.Name())

	_, err = New(nil, imports, nil)
	assert.ErrorIs(t, err, ErrNilDispatcher)

	_, err = New(fakeDispatcher{uid: "fw-local"}, nil, nil)
	assert.ErrorIs(t, err, ErrNilImports)

	bad := DefaultConfig()
	bad.Addr = ""
	_, err = New(fakeDispatcher{uid: "fw-local"}, imports, bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestRedis_StopWithoutStart 测试未启动即停止
func TestRedis_StopWithoutStart(t *testing.T) {
	imports := registry.NewImportRegistry("fw-local")
	r, err := New(fakeDispatcher{uid: "fw-local"}, imports, nil)
	require.NoError(t, err)

	assert.NoError(t, r.Stop(context.Background()))
	assert.NoError(t, r.Stop(context.Background()))
	assert.ErrorIs(t, r.Start(context.Background()), ErrAlreadyClosed)
}

// newTestRedis 构造指向内存 Redis 的服务
func newTestRedis(t *testing.T) (*Redis, *registry.ImportRegistry, *miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	imports := registry.NewImportRegistry("fw-local")

	cfg := DefaultConfig()
	cfg.Addr = mr.Addr()
	r, err := New(fakeDispatcher{uid: "fw-local"}, imports, cfg)
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r.mu.Lock()
	r.client = client
	r.mu.Unlock()
	return r, imports, mr, client
}

// edefPayload 构造一个远端端点的 EDEF 载荷
func edefPayload(t *testing.T, fwUID, uid, name string) string {
	t.Helper()

	desc, err := types.NewEndpointDescription(map[string]any{
		types.PropEndpointID:            uid,
		types.PropEndpointFrameworkUUID: fwUID,
		types.PropImportedConfigs:       []string{"jsonrpc"},
		types.PropObjectClass:           []string{"go:/example.Echo"},
		types.PropEndpointName:          name,
	})
	require.NoError(t, err)

	payload, err := edef.MarshalEndpoint(desc)
	require.NoError(t, err)
	return string(payload)
}

// TestRedis_CatchUp 测试冷启动追赶只导入心跳存活框架的端点
func TestRedis_CatchUp(t *testing.T) {
	r, imports, mr, client := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(frameworkKey("fw-alive"), "host-a"))
	require.NoError(t, mr.Set(serviceKey("fw-alive", "uid-alive"), edefPayload(t, "fw-alive", "uid-alive", "svc-a")))

	// 异常退出的框架：心跳已过期，端点键遗留
	require.NoError(t, mr.Set(serviceKey("fw-dead", "uid-dead"), edefPayload(t, "fw-dead", "uid-dead", "svc-d")))

	r.catchUp(ctx, client)

	ep := imports.GetEndpoint("uid-alive")
	require.NotNil(t, ep)
	assert.Equal(t, "host-a", ep.Server)
	assert.Equal(t, "svc-a", ep.Name)

	// 死框架的端点不导入，遗留键被顺手清理
	assert.False(t, imports.Contains("uid-dead"))
	assert.False(t, mr.Exists(serviceKey("fw-dead", "uid-dead")))
}

// TestRedis_FrameworkExpired 测试心跳丢失时清空导入并删除遗留端点键
func TestRedis_FrameworkExpired(t *testing.T) {
	r, imports, mr, client := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(frameworkKey("fw-remote"), "host-r"))
	require.NoError(t, mr.Set(serviceKey("fw-remote", "uid-1"), edefPayload(t, "fw-remote", "uid-1", "svc-1")))
	require.NoError(t, mr.Set(serviceKey("fw-remote", "uid-2"), edefPayload(t, "fw-remote", "uid-2", "svc-2")))

	r.catchUp(ctx, client)
	require.True(t, imports.Contains("uid-1"))
	require.True(t, imports.Contains("uid-2"))

	mr.Del(frameworkKey("fw-remote"))
	r.handleNotification(frameworkKey("fw-remote"), "expired")

	assert.False(t, imports.Contains("uid-1"))
	assert.False(t, imports.Contains("uid-2"))
	assert.False(t, mr.Exists(serviceKey("fw-remote", "uid-1")))
	assert.False(t, mr.Exists(serviceKey("fw-remote", "uid-2")))
}

// TestRedis_SetNotificationDeadFramework 测试 set 通知同样按心跳把关
func TestRedis_SetNotificationDeadFramework(t *testing.T) {
	r, imports, mr, _ := newTestRedis(t)

	require.NoError(t, mr.Set(serviceKey("fw-dead", "uid-d"), edefPayload(t, "fw-dead", "uid-d", "svc-d")))
	r.handleNotification(serviceKey("fw-dead", "uid-d"), "set")

	assert.False(t, imports.Contains("uid-d"))
	assert.False(t, mr.Exists(serviceKey("fw-dead", "uid-d")))
}

// TestRedis_StartStop 测试真实服务器收发
func TestRedis_StartStop(t *testing.T) {
	t.Skip("需要真实 Redis 服务器环境")
}
