package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-remotesvc/pkg/types"
)

// namedEndpoint 构造只带名字的端点
func namedEndpoint(name string) *types.ExportEndpoint {
	return &types.ExportEndpoint{UID: "uid-" + name, Name: name}
}

// TestResolver_Resolve 测试最长前缀解析
func TestResolver_Resolve(t *testing.T) {
	r := NewResolver()
	r.Register(namedEndpoint("a"), types.MethodMap{
		"method": func([]any, map[string]any) (any, error) { return "short", nil },
	})
	r.Register(namedEndpoint("a.b"), types.MethodMap{
		"method": func([]any, map[string]any) (any, error) { return "long", nil },
	})

	// "a.b.method" 命中更长的 "a.b"
	ep, fn, err := r.Resolve("a.b.method")
	require.NoError(t, err)
	assert.Equal(t, "a.b", ep.Name)
	result, err := fn(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "long", result)

	// "a.method" 命中 "a"
	ep, _, err = r.Resolve("a.method")
	require.NoError(t, err)
	assert.Equal(t, "a", ep.Name)
}

// TestResolver_Resolve_Errors 测试解析失败场景
func TestResolver_Resolve_Errors(t *testing.T) {
	r := NewResolver()
	r.Register(namedEndpoint("svc"), types.MethodMap{
		"echo": func([]any, map[string]any) (any, error) { return nil, nil },
	})

	// 无端点命中
	_, _, err := r.Resolve("other.echo")
	assert.ErrorIs(t, err, ErrNoEndpoint)

	// 端点命中但方法未知
	_, _, err = r.Resolve("svc.missing")
	assert.ErrorIs(t, err, ErrUnknownMethod)

	// 调用串即端点名本身（无方法段）
	_, _, err = r.Resolve("svc")
	assert.ErrorIs(t, err, ErrNoEndpoint)

	var dispatchErr *DispatchError
	require.True(t, errors.As(err, &dispatchErr))
	assert.Equal(t, "svc", dispatchErr.Method)
}

// TestResolver_Dispatch 测试参数传递与错误传播
func TestResolver_Dispatch(t *testing.T) {
	r := NewResolver()
	callErr := errors.New("remote failure")
	r.Register(namedEndpoint("svc"), types.MethodMap{
		"join": func(args []any, kwargs map[string]any) (any, error) {
			return []any{args, kwargs}, nil
		},
		"fail": func([]any, map[string]any) (any, error) {
			return nil, callErr
		},
	})

	result, err := r.Dispatch("svc.join", []any{1, "x"}, map[string]any{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{1, "x"}, map[string]any{"k": "v"}}, result)

	// 方法错误原样传播
	_, err = r.Dispatch("svc.fail", nil, nil)
	assert.ErrorIs(t, err, callErr)
}

// TestResolver_Lifecycle 测试登记、改名与注销
func TestResolver_Lifecycle(t *testing.T) {
	r := NewResolver()
	r.Register(namedEndpoint("old"), types.MethodMap{
		"m": func([]any, map[string]any) (any, error) { return "ok", nil },
	})
	assert.Equal(t, []string{"old"}, r.Names())

	r.Rename("old", "new")
	_, _, err := r.Resolve("old.m")
	assert.ErrorIs(t, err, ErrNoEndpoint)
	_, _, err = r.Resolve("new.m")
	assert.NoError(t, err)

	r.Unregister("new")
	assert.Empty(t, r.Names())
}
