package multicast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPacket_RoundTrip 测试报文编解码往返
func TestPacket_RoundTrip(t *testing.T) {
	original := packet{
		Sender: "fw-1",
		Event:  eventAdd,
		Access: &access{Port: 8080, Path: "/remotesvc/dispatcher"},
	}

	data, err := encodePacket(original)
	require.NoError(t, err)

	decoded, err := decodePacket(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

// TestPacket_Remove 测试 remove 报文携带 uids
func TestPacket_Remove(t *testing.T) {
	original := packet{
		Sender: "fw-1",
		Event:  eventRemove,
		UIDs:   []string{"uid-1", "uid-2"},
	}

	data, err := encodePacket(original)
	require.NoError(t, err)

	// access 省略、uids 保留
	assert.NotContains(t, string(data), "access")
	assert.Contains(t, string(data), "uid-1")

	decoded, err := decodePacket(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

// TestPacket_Discover 测试 discover 报文最小形态
func TestPacket_Discover(t *testing.T) {
	data, err := encodePacket(packet{Sender: "fw-1", Event: eventDiscover})
	require.NoError(t, err)

	assert.JSONEq(t, `{"sender":"fw-1","event":"discover"}`, string(data))
}

// TestDecodePacket_Invalid 测试非法报文
func TestDecodePacket_Invalid(t *testing.T) {
	_, err := decodePacket([]byte("not json"))
	assert.Error(t, err)
}
