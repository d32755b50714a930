package zookeeper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPaths 测试 znode 路径布局
func TestPaths(t *testing.T) {
	assert.Equal(t, "/frameworks/fw-1", frameworkPath("fw-1"))
	assert.Equal(t, "/endpoints/fw-1", frameworkEndpointsPath("fw-1"))
	assert.Equal(t, "/endpoints/fw-1/uid-1", endpointPath("fw-1", "uid-1"))
}
