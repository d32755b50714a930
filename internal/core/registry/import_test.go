package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-remotesvc/pkg/interfaces"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

// recordingImporter 记录收到的导入事件
type recordingImporter struct {
	added   []*types.ImportEndpoint
	updated []*types.ImportEndpoint
	removed []*types.ImportEndpoint
}

var _ interfaces.Importer = (*recordingImporter)(nil)

func (i *recordingImporter) EndpointAdded(ep *types.ImportEndpoint) {
	i.added = append(i.added, ep)
}

func (i *recordingImporter) EndpointUpdated(ep *types.ImportEndpoint, _ map[string]any) {
	i.updated = append(i.updated, ep)
}

func (i *recordingImporter) EndpointRemoved(ep *types.ImportEndpoint) {
	i.removed = append(i.removed, ep)
}

// importEP 构造导入端点
func importEP(uid, fw string) *types.ImportEndpoint {
	return &types.ImportEndpoint{
		UID:            uid,
		Framework:      fw,
		Name:           "svc-" + uid,
		Configurations: []string{"jsonrpc"},
		Specifications: []string{"example.Echo"},
		Properties:     map[string]any{"k": "v"},
	}
}

// TestImportRegistry_Add 测试添加与去重
func TestImportRegistry_Add(t *testing.T) {
	reg := NewImportRegistry("fw-local")
	importer := &recordingImporter{}
	reg.AddListener(importer)

	ep := importEP("uid-1", "fw-remote")
	assert.True(t, reg.Add(ep))
	assert.True(t, reg.Contains("uid-1"))
	assert.Same(t, ep, reg.GetEndpoint("uid-1"))
	assert.Len(t, importer.added, 1)

	// 重复 UID 被拒绝且不再通知
	assert.False(t, reg.Add(importEP("uid-1", "fw-remote")))
	assert.Len(t, importer.added, 1)

	// 非法端点
	assert.False(t, reg.Add(nil))
	assert.False(t, reg.Add(&types.ImportEndpoint{}))
}

// TestImportRegistry_RejectSelf 测试自环端点被拒绝
func TestImportRegistry_RejectSelf(t *testing.T) {
	reg := NewImportRegistry("fw-local")
	importer := &recordingImporter{}
	reg.AddListener(importer)

	assert.False(t, reg.Add(importEP("uid-1", "fw-local")))
	assert.False(t, reg.Contains("uid-1"))
	assert.Empty(t, importer.added)
}

// TestImportRegistry_Update 测试属性整体替换
func TestImportRegistry_Update(t *testing.T) {
	reg := NewImportRegistry("fw-local")
	importer := &recordingImporter{}
	reg.AddListener(importer)

	// 未知 UID
	assert.False(t, reg.Update("missing", map[string]any{}))

	require.True(t, reg.Add(importEP("uid-1", "fw-remote")))
	assert.True(t, reg.Update("uid-1", map[string]any{"k": "v2"}))
	assert.Equal(t, "v2", reg.GetEndpoint("uid-1").Properties["k"])
	assert.Len(t, importer.updated, 1)
}

// TestImportRegistry_Remove 测试移除
func TestImportRegistry_Remove(t *testing.T) {
	reg := NewImportRegistry("fw-local")
	importer := &recordingImporter{}
	reg.AddListener(importer)

	require.True(t, reg.Add(importEP("uid-1", "fw-remote")))
	assert.True(t, reg.Remove("uid-1"))
	assert.False(t, reg.Contains("uid-1"))
	assert.Len(t, importer.removed, 1)

	// 再次移除返回 false
	assert.False(t, reg.Remove("uid-1"))
	assert.Len(t, importer.removed, 1)
}

// TestImportRegistry_LostFramework 测试按框架批量移除
func TestImportRegistry_LostFramework(t *testing.T) {
	reg := NewImportRegistry("fw-local")
	importer := &recordingImporter{}
	reg.AddListener(importer)

	require.True(t, reg.Add(importEP("uid-1", "fw-a")))
	require.True(t, reg.Add(importEP("uid-2", "fw-a")))
	require.True(t, reg.Add(importEP("uid-3", "fw-b")))

	reg.LostFramework("fw-a")

	assert.Len(t, reg.GetEndpoints(), 1)
	assert.True(t, reg.Contains("uid-3"))
	assert.Len(t, importer.removed, 2)

	// 框架丢失后单个移除返回 false
	assert.False(t, reg.Remove("uid-1"))

	// 无匹配为空操作
	reg.LostFramework("fw-missing")
	reg.LostFramework("")
	assert.Len(t, importer.removed, 2)
}

// TestImportRegistry_RemoveListener 测试注销监听器后不再通知
func TestImportRegistry_RemoveListener(t *testing.T) {
	reg := NewImportRegistry("fw-local")
	importer := &recordingImporter{}
	reg.AddListener(importer)
	reg.RemoveListener(importer)

	require.True(t, reg.Add(importEP("uid-1", "fw-remote")))
	assert.Empty(t, importer.added)
}
