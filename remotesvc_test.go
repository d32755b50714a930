package remotesvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-remotesvc/config"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

// echoService 实现 Remotable 的测试服务
type echoService struct{}

func (echoService) RemoteMethods() types.MethodMap {
	return types.MethodMap{
		"echo": func(args []any, _ map[string]any) (any, error) {
			return args, nil
		},
	}
}

// newTestFramework 构造关闭全部发现后端的框架
func newTestFramework(t *testing.T) *Framework {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Discovery.EnableMulticast = false

	fw, err := New(cfg, WithFrameworkUID("fw-test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = fw.Close() })
	return fw
}

// exportProps 导出意图属性
func exportProps(name string) map[string]any {
	return map[string]any{
		types.PropObjectClass:        []string{"example.Echo"},
		types.PropExportedInterfaces: types.MatchAll,
		types.PropEndpointName:       name,
	}
}

// TestNew 测试创建与配置校验
func TestNew(t *testing.T) {
	fw := newTestFramework(t)
	assert.Equal(t, "fw-test", fw.FrameworkUID())
	assert.NotNil(t, fw.ExportRegistry())
	assert.NotNil(t, fw.ImportRegistry())
	assert.Equal(t, "/remotesvc/dispatcher", fw.ServletPath())

	// 非法配置被拒绝
	bad := config.NewConfig()
	bad.Dispatch.ServletPath = "no-slash"
	_, err := New(bad)
	assert.Error(t, err)
}

// TestFramework_RegisterService 测试注册即导出
func TestFramework_RegisterService(t *testing.T) {
	fw := newTestFramework(t)

	ref, err := fw.RegisterService(echoService{}, exportProps("echo"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), ref.ServiceID)

	eps := fw.ExportRegistry().GetEndpoints()
	require.Len(t, eps, 1)
	assert.Equal(t, "echo", eps[0].Name)
	assert.Equal(t, "fw-test", eps[0].FrameworkUID)
	assert.Equal(t, []string{"go:/example.Echo"}, eps[0].Specifications)

	// nil 实例被拒绝
	_, err = fw.RegisterService(nil, nil)
	assert.ErrorIs(t, err, ErrNilInstance)
}

// TestFramework_Dispatch 测试本地调度
func TestFramework_Dispatch(t *testing.T) {
	fw := newTestFramework(t)

	_, err := fw.RegisterService(echoService{}, exportProps("echo"))
	require.NoError(t, err)

	result, err := fw.Dispatch("echo.echo", []any{"hi"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"hi"}, result)

	_, err = fw.Dispatch("echo.missing", nil, nil)
	assert.Error(t, err)
}

// TestFramework_UpdateService 测试属性变更驱动重命名
func TestFramework_UpdateService(t *testing.T) {
	fw := newTestFramework(t)

	ref, err := fw.RegisterService(echoService{}, exportProps("old"))
	require.NoError(t, err)

	require.NoError(t, fw.UpdateService(ref, exportProps("new")))

	eps := fw.ExportRegistry().GetEndpoints()
	require.Len(t, eps, 1)
	assert.Equal(t, "new", eps[0].Name)

	// 调度跟随新名称
	_, err = fw.Dispatch("new.echo", nil, nil)
	assert.NoError(t, err)
	_, err = fw.Dispatch("old.echo", nil, nil)
	assert.Error(t, err)

	// 未知服务
	assert.ErrorIs(t, fw.UpdateService(&types.ServiceReference{ServiceID: 99}, nil), ErrUnknownService)
	assert.ErrorIs(t, fw.UpdateService(nil, nil), types.ErrNilServiceReference)
}

// TestFramework_UnregisterService 测试注销撤销端点
func TestFramework_UnregisterService(t *testing.T) {
	fw := newTestFramework(t)

	ref, err := fw.RegisterService(echoService{}, exportProps("echo"))
	require.NoError(t, err)
	require.Len(t, fw.ExportRegistry().GetEndpoints(), 1)

	require.NoError(t, fw.UnregisterService(ref))
	assert.Empty(t, fw.ExportRegistry().GetEndpoints())

	_, err = fw.Dispatch("echo.echo", nil, nil)
	assert.Error(t, err)

	// 重复注销
	assert.ErrorIs(t, fw.UnregisterService(ref), ErrUnknownService)
}

// TestFramework_NonExportedService 测试无导出意图的服务不产生端点
func TestFramework_NonExportedService(t *testing.T) {
	fw := newTestFramework(t)

	_, err := fw.RegisterService(echoService{}, map[string]any{
		types.PropObjectClass: []string{"example.Echo"},
	})
	require.NoError(t, err)
	assert.Empty(t, fw.ExportRegistry().GetEndpoints())
}

// TestFramework_Lifecycle 测试启动与停止
func TestFramework_Lifecycle(t *testing.T) {
	fw := newTestFramework(t)

	ctx := context.Background()
	require.NoError(t, fw.Start(ctx))

	// HTTP 服务器拿到随机端口
	assert.Greater(t, fw.HTTPPort(), 0)

	// 重复启动被拒绝
	assert.ErrorIs(t, fw.Start(ctx), ErrFrameworkStarted)

	require.NoError(t, fw.Close())
	// 停止是幂等的
	assert.NoError(t, fw.Close())

	// 关闭后无法注册
	_, err := fw.RegisterService(echoService{}, exportProps("late"))
	assert.ErrorIs(t, err, ErrFrameworkClosed)
	assert.ErrorIs(t, fw.Start(ctx), ErrFrameworkClosed)
}
