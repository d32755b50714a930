package config

import "fmt"

// DispatchConfig 调度配置
//
// 调度器 servlet 挂载在进程共享的 HTTP 服务器上，
// 组播发现的对端通过它拉取端点描述。
type DispatchConfig struct {
	// HTTPPort 共享 HTTP 服务器监听端口（0 = 随机端口）
	HTTPPort int `json:"http_port"`

	// ServletPath 调度器 servlet 挂载路径
	ServletPath string `json:"servlet_path"`

	// ExportKinds 本地导出器支持的传输配置类型
	ExportKinds []string `json:"export_kinds"`
}

// DefaultDispatchConfig 返回默认调度配置
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		HTTPPort:    0,
		ServletPath: "/remotesvc/dispatcher",
		ExportKinds: []string{"jsonrpc"},
	}
}

// Validate 验证调度配置
func (c *DispatchConfig) Validate() error {
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.HTTPPort)
	}
	if c.ServletPath == "" || c.ServletPath[0] != '/' {
		return fmt.Errorf("servlet path must start with '/': %q", c.ServletPath)
	}
	if len(c.ExportKinds) == 0 {
		return fmt.Errorf("export kinds list is empty")
	}
	return nil
}
