package multicast

import (
	"context"
	"net"
	"net/http"
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

// fakeRegistrar 固定端口的 HTTP 注册器
type fakeRegistrar struct{ port int }

func (f fakeRegistrar) RegisterHandler(string, http.Handler) error { return nil }

func (f fakeRegistrar) UnregisterHandler(string) {}

func (f fakeRegistrar) Port() int { return f.port }

// TestDefaultConfig 测试默认配置
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultGroup, cfg.Group)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.True(t, cfg.Enabled)
}

// TestConfig_Validate 测试配置校验
func TestConfig_Validate(t *testing.T) {
	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())

	cfg := DefaultConfig()
	cfg.Group = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.FetchTimeout = 0
	assert.Error(t, cfg.Validate())
}

// TestNew 测试创建与参数校验
func TestNew(t *testing.T) {
	imports := registry.NewImportRegistry("fw-local")

	m, err := New(fakeDispatcher{uid: "fw-local"}, imports, fakeRegistrar{port: 8080}, "/remotesvc/dispatcher", nil)
	require.NoError(t, err)
	assert.Equal(t, "multicast", m.Name())

	_, err = New(nil, imports, nil, "", nil)
	assert.ErrorIs(t, err, ErrNilDispatcher)

	_, err = New(fakeDispatcher{uid: "fw-local"}, nil, nil, "", nil)
	assert.ErrorIs(t, err, ErrNilImports)

	bad := DefaultConfig()
	bad.Port = -1
	_, err = New(fakeDispatcher{uid: "fw-local"}, imports, nil, "", bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestMulticast_BadGroup 测试非组播地址被拒绝
func TestMulticast_BadGroup(t *testing.T) {
	imports := registry.NewImportRegistry("fw-local")
	cfg := DefaultConfig()
	cfg.Group = "192.0.2.1" // 单播地址

	m, err := New(fakeDispatcher{uid: "fw-local"}, imports, nil, "", cfg)
	require.NoError(t, err)

	err = m.Start(context.Background())
	assert.ErrorIs(t, err, ErrBadGroupAddress)
}

// TestMulticast_StopWithoutStart 测试未启动即停止
func TestMulticast_StopWithoutStart(t *testing.T) {
	imports := registry.NewImportRegistry("fw-local")
	m, err := New(fakeDispatcher{uid: "fw-local"}, imports, nil, "", nil)
	require.NoError(t, err)

	assert.NoError(t, m.Stop(context.Background()))
	assert.NoError(t, m.Stop(context.Background()))
	assert.ErrorIs(t, m.Start(context.Background()), ErrAlreadyClosed)
}

// TestMulticast_ReceiveLoopRecovers 测试读取失败后重建套接字、发现不中断
func TestMulticast_ReceiveLoopRecovers(t *testing.T) {
	imports := registry.NewImportRegistry("fw-local")
	require.True(t, imports.Add(&types.ImportEndpoint{UID: "uid-1", Framework: "fw-remote"}))

	m, err := New(fakeDispatcher{uid: "fw-local"}, imports, nil, "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Stop(context.Background()) })

	// 环回单播套接字替代组播，触发和恢复都在本机完成
	listenLoopback := func(*net.UDPAddr) (*net.UDPConn, error) {
		return net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	}
	m.listen = listenLoopback

	first, err := listenLoopback(nil)
	require.NoError(t, err)

	m.mu.Lock()
	m.group = first.LocalAddr().(*net.UDPAddr)
	m.conn = first
	m.mu.Unlock()
	m.started.Store(true)

	m.wg.Add(1)
	go m.receiveLoop(first)

	// 一次非关闭原因的读取失败
	require.NoError(t, first.Close())

	var rebuilt *net.UDPConn
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.conn != nil && m.conn != first {
			rebuilt = m.conn
			return true
		}
		return false
	}, 5*time.Second, 50*time.Millisecond)

	// 重建后的套接字仍在收包：remove 报文照常生效
	data, err := encodePacket(packet{Sender: "fw-remote", Event: eventRemove, UIDs: []string{"uid-1"}})
	require.NoError(t, err)
	sender, err := net.DialUDP("udp4", nil, rebuilt.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer sender.Close()

	require.Eventually(t, func() bool {
		_, _ = sender.Write(data)
		return !imports.Contains("uid-1")
	}, 5*time.Second, 100*time.Millisecond)
}

// TestMulticast_StartStop 测试真实组播收发
func TestMulticast_StartStop(t *testing.T) {
	t.Skip("需要真实网络环境")
}
