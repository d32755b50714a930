package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseLevel 测试级别名称解析
func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))

	// 未知名称回落到 Info
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}

// TestLogger_Component 测试组件名随日志输出
func TestLogger_Component(t *testing.T) {
	old := Default()
	defer SetDefault(old)

	var buf bytes.Buffer
	SetDefault(New(&buf, &slog.HandlerOptions{Level: LevelDebug}))

	l := Logger("core/registry")
	l.Info("endpoint added", "name", "echo")

	out := buf.String()
	assert.Contains(t, out, "component=core/registry")
	assert.Contains(t, out, "endpoint added")
	assert.Contains(t, out, "name=echo")
}

// TestLogger_FollowsDefault 测试懒加载跟随默认 logger 切换
func TestLogger_FollowsDefault(t *testing.T) {
	old := Default()
	defer SetDefault(old)

	l := Logger("discovery/mdns")

	var first, second bytes.Buffer
	SetDefault(New(&first, nil))
	l.Info("one")
	SetDefault(New(&second, nil))
	l.Info("two")

	assert.Contains(t, first.String(), "one")
	assert.NotContains(t, first.String(), "two")
	assert.Contains(t, second.String(), "two")
}

// TestNewJSON 测试 JSON 格式输出
func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSON(&buf, nil)
	l.Info("hello", "k", "v")

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "{"))
	assert.Contains(t, line, `"msg":"hello"`)
	assert.Contains(t, line, `"k":"v"`)
}
