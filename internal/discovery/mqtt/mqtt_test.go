package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	assert.Equal(t, DefaultBroker, cfg.Broker)
	assert.Equal(t, DefaultTopicPrefix, cfg.TopicPrefix)
	assert.Equal(t, DefaultRetryInterval, cfg.RetryInterval)
	assert.True(t, cfg.Enabled)
}

// TestConfig_Validate 测试配置校验
func TestConfig_Validate(t *testing.T) {
	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())

	cfg := DefaultConfig()
	cfg.Broker = ""
	assert.Error(t, cfg.Validate())

	// 前缀不允许以 "/" 结尾
	cfg = DefaultConfig()
	cfg.TopicPrefix = "remotesvc/discovery/"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.PublishTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RetryInterval = 0
	assert.Error(t, cfg.Validate())
}

// TestConfig_ApplyOptions 测试配置选项
func TestConfig_ApplyOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyOptions(
		WithBroker("tcp://broker:1883"),
		WithTopicPrefix("custom/prefix"),
		WithPublishTimeout(time.Second),
		WithRetryInterval(2*time.Second),
		WithEnabled(false),
	)

	assert.Equal(t, "tcp://broker:1883", cfg.Broker)
	assert.Equal(t, "custom/prefix", cfg.TopicPrefix)
	assert.Equal(t, time.Second, cfg.PublishTimeout)
	assert.Equal(t, 2*time.Second, cfg.RetryInterval)
	assert.False(t, cfg.Enabled)
}

// TestNew 测试创建与参数校验
func TestNew(t *testing.T) {
	imports := registry.NewImportRegistry("fw-local")

	m, err := New(fakeDispatcher{uid: "fw-local"}, imports, nil)
	require.NoError(t, err)
	assert.Equal(t, "mqtt", m.Name())

	_, err = New(nil, imports, nil)
	assert.ErrorIs(t, err, ErrNilDispatcher)

	_, err = New(fakeDispatcher{uid: "fw-local"}, nil, nil)
	assert.ErrorIs(t, err, ErrNilImports)

	bad := DefaultConfig()
	bad.Broker = ""
	_, err = New(fakeDispatcher{uid: "fw-local"}, imports, bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestMQTT_Topics 测试主题布局
func TestMQTT_Topics(t *testing.T) {
	imports := registry.NewImportRegistry("fw-local")
	m, err := New(fakeDispatcher{uid: "fw-local"}, imports, nil)
	require.NoError(t, err)

	assert.Equal(t, "remotesvc/discovery/add", m.topicAdd())
	assert.Equal(t, "remotesvc/discovery/update", m.topicUpdate())
	assert.Equal(t, "remotesvc/discovery/remove", m.topicRemove())
	assert.Equal(t, "remotesvc/discovery/discover", m.topicDiscover())
	assert.Equal(t, "remotesvc/discovery/lost", m.topicLost())
}

// TestMQTT_HandleLost 测试框架下线清理
func TestMQTT_HandleLost(t *testing.T) {
	imports := registry.NewImportRegistry("fw-local")
	m, err := New(fakeDispatcher{uid: "fw-local"}, imports, nil)
	require.NoError(t, err)

	require.True(t, imports.Add(&types.ImportEndpoint{UID: "uid-1", Framework: "fw-remote"}))

	// 本地框架与空 UID 被忽略
	m.handleLost("fw-local")
	m.handleLost("")
	assert.True(t, imports.Contains("uid-1"))

	m.handleLost("fw-remote")
	assert.False(t, imports.Contains("uid-1"))
}

// TestMQTT_StopWithoutStart 测试未启动即停止
func TestMQTT_StopWithoutStart(t *testing.T) {
	imports := registry.NewImportRegistry("fw-local")
	m, err := New(fakeDispatcher{uid: "fw-local"}, imports, nil)
	require.NoError(t, err)

	assert.NoError(t, m.Stop(context.Background()))
	// 停止后无法再启动
	assert.ErrorIs(t, m.Start(context.Background()), ErrAlreadyClosed)
}

// TestMQTT_ColdBroker 测试 broker 未就绪时启动仍成功并转入后台重连
func TestMQTT_ColdBroker(t *testing.T) {
	imports := registry.NewImportRegistry("fw-local")

	cfg := DefaultConfig()
	cfg.Broker = "tcp://127.0.0.1:1" // 无人监听的端口
	cfg.ConnectTimeout = 200 * time.Millisecond
	cfg.RetryInterval = 100 * time.Millisecond

	m, err := New(fakeDispatcher{uid: "fw-local"}, imports, cfg)
	require.NoError(t, err)

	require.NoError(t, m.Start(context.Background()))
	assert.ErrorIs(t, m.Start(context.Background()), ErrAlreadyStarted)
	assert.NoError(t, m.Stop(context.Background()))
}

// TestMQTT_StartStop 测试真实 broker 收发
func TestMQTT_StartStop(t *testing.T) {
	t.Skip("需要真实 MQTT broker 环境")
}
