package mdns

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTXT_RoundTrip 测试 TXT 编解码往返
func TestTXT_RoundTrip(t *testing.T) {
	props := map[string]any{
		"endpoint.name": "svc",
		"count":         float64(3), // JSON 数字还原为 float64
	}

	txt, err := encodeTXT("fw-1", "uid-1", "svc",
		[]string{"jsonrpc"}, []string{"go:/example.Echo"}, props)
	require.NoError(t, err)

	ep, err := decodeTXT(txt, "192.0.2.7")
	require.NoError(t, err)

	assert.Equal(t, "uid-1", ep.UID)
	assert.Equal(t, "fw-1", ep.Framework)
	assert.Equal(t, "svc", ep.Name)
	assert.Equal(t, []string{"jsonrpc"}, ep.Configurations)
	// 本地语言前缀被剥离
	assert.Equal(t, []string{"example.Echo"}, ep.Specifications)
	assert.Equal(t, props, ep.Properties)
	assert.Equal(t, "192.0.2.7", ep.Server)
}

// TestTXT_ChunkedProps 测试大属性表的分片与重组
func TestTXT_ChunkedProps(t *testing.T) {
	props := map[string]any{
		"payload": strings.Repeat("x", 1000),
	}

	txt, err := encodeTXT("fw-1", "uid-1", "svc", nil, nil, props)
	require.NoError(t, err)

	// 属性被拆成多条 props.N 记录，每条不超过分片上限
	var chunks int
	for _, record := range txt {
		if strings.HasPrefix(record, txtKeyProps+".") {
			chunks++
			_, value, _ := strings.Cut(record, "=")
			assert.LessOrEqual(t, len(value), txtChunkSize)
		}
	}
	assert.Greater(t, chunks, 1)

	ep, err := decodeTXT(txt, "")
	require.NoError(t, err)
	assert.Equal(t, props, ep.Properties)
}

// TestDecodeTXT_Malformed 测试残缺记录
func TestDecodeTXT_Malformed(t *testing.T) {
	// 缺 uid
	_, err := decodeTXT([]string{"sender=fw-1"}, "")
	assert.ErrorIs(t, err, ErrMalformedRecord)

	// 缺 sender
	_, err = decodeTXT([]string{"uid=uid-1"}, "")
	assert.ErrorIs(t, err, ErrMalformedRecord)

	// 属性分片不是合法 base64
	_, err = decodeTXT([]string{"uid=uid-1", "sender=fw-1", "props.0=!!!"}, "")
	assert.ErrorIs(t, err, ErrMalformedRecord)

	// 无法解析的记录被跳过而非报错
	ep, err := decodeTXT([]string{"uid=uid-1", "sender=fw-1", "garbage", "props.x=skip"}, "")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", ep.UID)
	assert.Empty(t, ep.Properties)
}
