package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFormatSpecification 测试规格名格式化
func TestFormatSpecification(t *testing.T) {
	assert.Equal(t, "go:/example.Echo", FormatSpecification("example.Echo"))

	// 已带语言前缀的保持不变
	assert.Equal(t, "python:/tests.Svc", FormatSpecification("python:/tests.Svc"))
	assert.Equal(t, "go:/example.Echo", FormatSpecification("go:/example.Echo"))
}

// TestExtractSpecification 测试规格名拆分
func TestExtractSpecification(t *testing.T) {
	lang, name := ExtractSpecification("python:/tests.Svc")
	assert.Equal(t, "python", lang)
	assert.Equal(t, "tests.Svc", name)

	// 无前缀时语言为空
	lang, name = ExtractSpecification("example.Echo")
	assert.Equal(t, "", lang)
	assert.Equal(t, "example.Echo", name)
}

// TestImportSpecifications 测试导入侧语言前缀处理
func TestImportSpecifications(t *testing.T) {
	specs := ImportSpecifications([]string{
		"go:/example.Echo",    // 本地语言：剥掉前缀
		"python:/tests.Svc",   // 外语：原样保留
		"example.Plain",       // 无前缀：原样保留
	})
	assert.Equal(t, []string{"example.Echo", "python:/tests.Svc", "example.Plain"}, specs)
}

// TestToStringSlice 测试多形态属性到字符串列表的转换
func TestToStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a"}, ToStringSlice("a"))
	assert.Equal(t, []string{"a", "b"}, ToStringSlice([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, ToStringSlice([]any{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, ToStringSlice(Tuple{"a", "b"}))
	assert.Equal(t, []string{"a"}, ToStringSlice(List{"a"}))
	assert.Nil(t, ToStringSlice(nil))
	assert.Nil(t, ToStringSlice(""))

	// 标量经 fmt 转换
	assert.Equal(t, []string{"42"}, ToStringSlice(42))
}

// TestParseLenientBool 测试宽松布尔解析
func TestParseLenientBool(t *testing.T) {
	// 只有 "false" 与 "0" 为假，其余一律为真
	assert.False(t, ParseLenientBool("false"))
	assert.False(t, ParseLenientBool("False"))
	assert.False(t, ParseLenientBool("0"))

	assert.True(t, ParseLenientBool("true"))
	assert.True(t, ParseLenientBool("yes"))
	assert.True(t, ParseLenientBool("no"))
	assert.True(t, ParseLenientBool(""))
	assert.True(t, ParseLenientBool("whatever"))
}

// TestCopyProperties 测试属性浅拷贝独立性
func TestCopyProperties(t *testing.T) {
	src := map[string]any{"a": 1, "b": "x"}
	dst := CopyProperties(src)

	dst["a"] = 2
	assert.Equal(t, 1, src["a"])
	assert.Equal(t, 2, dst["a"])

	assert.NotNil(t, CopyProperties(nil))
}
