package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// textHandler 返回固定文本的处理器
func textHandler(text string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(text))
	})
}

// TestServer_RegisterHandler 测试路径挂载规则
func TestServer_RegisterHandler(t *testing.T) {
	s := New(0)

	require.NoError(t, s.RegisterHandler("/a", textHandler("a")))

	// 重复挂载
	assert.ErrorIs(t, s.RegisterHandler("/a", textHandler("dup")), ErrPathTaken)

	// 非法路径
	assert.ErrorIs(t, s.RegisterHandler("", textHandler("x")), ErrEmptyPath)
	assert.ErrorIs(t, s.RegisterHandler("no-slash", textHandler("x")), ErrEmptyPath)

	// 卸载后可重新挂载
	s.UnregisterHandler("/a")
	assert.NoError(t, s.RegisterHandler("/a", textHandler("a2")))
}

// TestServer_Routing 测试最长前缀路由
func TestServer_Routing(t *testing.T) {
	s := New(0)
	require.NoError(t, s.RegisterHandler("/a", textHandler("short")))
	require.NoError(t, s.RegisterHandler("/a/b", textHandler("long")))

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, "short", get("/a").Body.String())
	assert.Equal(t, "short", get("/a/x").Body.String())
	assert.Equal(t, "long", get("/a/b").Body.String())
	assert.Equal(t, "long", get("/a/b/c").Body.String())

	// 前缀按路径段对齐："/ab" 不落在 "/a" 下
	assert.Equal(t, http.StatusNotFound, get("/ab").Code)
	assert.Equal(t, http.StatusNotFound, get("/other").Code)
}

// TestServer_Port 测试端口报告
func TestServer_Port(t *testing.T) {
	s := New(8080)
	// 未启动时返回配置端口
	assert.Equal(t, 8080, s.Port())
}

// TestServer_StartStop 测试监听、随机端口与停止
func TestServer_StartStop(t *testing.T) {
	s := New(0)
	require.NoError(t, s.RegisterHandler("/ping", textHandler("pong")))

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Stop(ctx) }()

	// 随机端口已分配
	port := s.Port()
	assert.Greater(t, port, 0)

	// 重复启动被拒绝
	assert.ErrorIs(t, s.Start(ctx), ErrAlreadyStarted)

	require.NoError(t, s.Stop(ctx))
	// 停止是幂等的
	assert.NoError(t, s.Stop(ctx))

	// 停止后无法再启动
	assert.ErrorIs(t, s.Start(ctx), ErrAlreadyClosed)
}
