package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEquals 测试键值相等谓词
func TestEquals(t *testing.T) {
	props := map[string]any{
		"kind":  "jsonrpc",
		"multi": []string{"a", "b"},
		"num":   42,
	}

	assert.True(t, Equals("kind", "jsonrpc").Matches(props))
	assert.False(t, Equals("kind", "xmlrpc").Matches(props))
	assert.False(t, Equals("missing", "x").Matches(props))

	// 多值属性任一元素命中即匹配
	assert.True(t, Equals("multi", "b").Matches(props))
	assert.False(t, Equals("multi", "c").Matches(props))

	// 非字符串值经格式化比较
	assert.True(t, Equals("num", 42).Matches(props))

	// "*" 退化为存在性判断
	assert.True(t, Equals("kind", "*").Matches(props))
	assert.False(t, Equals("missing", "*").Matches(props))
}

// TestContains 测试字面值成员谓词
func TestContains(t *testing.T) {
	props := map[string]any{
		"configs": []string{"jsonrpc", "*"},
		"kind":    "jsonrpc",
	}

	assert.True(t, Contains("configs", "jsonrpc").Matches(props))
	assert.False(t, Contains("configs", "xmlrpc").Matches(props))
	assert.False(t, Contains("missing", "x").Matches(props))

	// "*" 不作通配处理，按字面值比较
	assert.True(t, Contains("configs", "*").Matches(props))
	assert.False(t, Contains("kind", "*").Matches(props))
}

// TestPresent 测试存在性谓词
func TestPresent(t *testing.T) {
	props := map[string]any{"key": "value"}

	assert.True(t, Present("key").Matches(props))
	assert.False(t, Present("missing").Matches(props))
	assert.False(t, Present("key").Matches(map[string]any{"key": nil}))
}

// TestAnd_Or_Not 测试组合节点
func TestAnd_Or_Not(t *testing.T) {
	props := map[string]any{"a": "1", "b": "2"}

	assert.True(t, And(Equals("a", "1"), Equals("b", "2")).Matches(props))
	assert.False(t, And(Equals("a", "1"), Equals("b", "9")).Matches(props))
	// 空合取恒真
	assert.True(t, And().Matches(props))

	assert.True(t, Or(Equals("a", "9"), Equals("b", "2")).Matches(props))
	assert.False(t, Or(Equals("a", "9"), Equals("b", "9")).Matches(props))
	// 空析取恒假
	assert.False(t, Or().Matches(props))

	assert.True(t, Not(Equals("a", "9")).Matches(props))
	assert.False(t, Not(Equals("a", "1")).Matches(props))

	// 嵌套组合
	pred := And(Present("a"), Or(Equals("b", "2"), Equals("b", "3")))
	assert.True(t, pred.Matches(props))
}
