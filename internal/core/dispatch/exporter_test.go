package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-remotesvc/internal/core/registry"
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

// remotableRef 构造带导出意图的可远程调用服务引用
func remotableRef(id int64, extra map[string]any) *types.ServiceReference {
	props := map[string]any{
		types.PropObjectClass:        []string{"example.Echo"},
		types.PropExportedInterfaces: types.MatchAll,
	}
	for k, v := range extra {
		props[k] = v
	}
	return &types.ServiceReference{ServiceID: id, Properties: props, Instance: echoService{}}
}

// TestServiceExporter_Export 测试导出与 Resolver 登记
func TestServiceExporter_Export(t *testing.T) {
	resolver := NewResolver()
	exporter := NewServiceExporter(resolver, "jsonrpc")

	ep, err := exporter.ExportService(remotableRef(1, nil), "svc", "fw-1")
	require.NoError(t, err)
	require.NotNil(t, ep)

	assert.Equal(t, "svc", ep.Name)
	assert.Equal(t, []string{"jsonrpc"}, ep.Configurations)
	assert.Equal(t, []string{"go:/example.Echo"}, ep.Specifications)

	// 方法表已在导出时登记
	result, err := resolver.Dispatch("svc.echo", []any{"hi"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"hi"}, result)
}

// TestServiceExporter_Reject 测试拒绝导出的三种情形
func TestServiceExporter_Reject(t *testing.T) {
	exporter := NewServiceExporter(NewResolver(), "jsonrpc")

	// 服务对象不可远程调用
	ref := remotableRef(1, nil)
	ref.Instance = struct{}{}
	ep, err := exporter.ExportService(ref, "svc", "fw-1")
	assert.NoError(t, err)
	assert.Nil(t, ep)

	// 无可导出规格
	ep, err = exporter.ExportService(
		remotableRef(2, map[string]any{types.PropExportNone: "true"}), "svc2", "fw-1")
	assert.NoError(t, err)
	assert.Nil(t, ep)

	// 请求的配置类型与传输不相交
	ep, err = exporter.ExportService(
		remotableRef(3, map[string]any{types.PropExportedConfigs: []string{"xmlrpc"}}), "svc3", "fw-1")
	assert.NoError(t, err)
	assert.Nil(t, ep)
}

// TestServiceExporter_NameCollision 测试名称冲突
func TestServiceExporter_NameCollision(t *testing.T) {
	exporter := NewServiceExporter(NewResolver(), "jsonrpc")

	_, err := exporter.ExportService(remotableRef(1, nil), "svc", "fw-1")
	require.NoError(t, err)

	_, err = exporter.ExportService(remotableRef(2, nil), "svc", "fw-1")
	assert.ErrorIs(t, err, registry.ErrNameCollision)
}

// TestServiceExporter_UpdateExport 测试改名与冲突回退
func TestServiceExporter_UpdateExport(t *testing.T) {
	resolver := NewResolver()
	exporter := NewServiceExporter(resolver, "jsonrpc")

	epA, err := exporter.ExportService(remotableRef(1, nil), "alpha", "fw-1")
	require.NoError(t, err)
	_, err = exporter.ExportService(remotableRef(2, nil), "beta", "fw-1")
	require.NoError(t, err)

	// 改到已占用名称：失败、保持旧名
	err = exporter.UpdateExport(epA, "beta", nil)
	assert.ErrorIs(t, err, registry.ErrNameCollision)
	_, _, resolveErr := resolver.Resolve("alpha.echo")
	assert.NoError(t, resolveErr)

	// 改到空闲名称：Resolver 同步迁移
	require.NoError(t, exporter.UpdateExport(epA, "gamma", nil))
	_, _, resolveErr = resolver.Resolve("gamma.echo")
	assert.NoError(t, resolveErr)
	_, _, resolveErr = resolver.Resolve("alpha.echo")
	assert.ErrorIs(t, resolveErr, ErrNoEndpoint)

	// 改回自己的名称是空操作
	assert.NoError(t, exporter.UpdateExport(epA, "gamma", nil))
}

// TestServiceExporter_Unexport 测试撤销导出后名称释放
func TestServiceExporter_Unexport(t *testing.T) {
	resolver := NewResolver()
	exporter := NewServiceExporter(resolver, "jsonrpc")

	ep, err := exporter.ExportService(remotableRef(1, nil), "svc", "fw-1")
	require.NoError(t, err)

	exporter.UnexportService(ep)
	_, _, resolveErr := resolver.Resolve("svc.echo")
	assert.ErrorIs(t, resolveErr, ErrNoEndpoint)

	// 名称可复用
	_, err = exporter.ExportService(remotableRef(2, nil), "svc", "fw-1")
	assert.NoError(t, err)
}

// TestServiceExporter_MatchConfigurations 测试配置交集计算
func TestServiceExporter_MatchConfigurations(t *testing.T) {
	exporter := NewServiceExporter(NewResolver(), "cfgA", "cfgB")

	ep, err := exporter.ExportService(
		remotableRef(1, map[string]any{types.PropExportedConfigs: []string{"cfgB", "cfgX"}}),
		"svc", "fw-1")
	require.NoError(t, err)
	require.NotNil(t, ep)
	assert.Equal(t, []string{"cfgB"}, ep.Configurations)

	// "*" 使用传输的全部类型
	ep, err = exporter.ExportService(
		remotableRef(2, map[string]any{types.PropExportedConfigs: types.MatchAll}),
		"svc2", "fw-1")
	require.NoError(t, err)
	require.NotNil(t, ep)
	assert.Equal(t, []string{"cfgA", "cfgB"}, ep.Configurations)
}
