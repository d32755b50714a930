package edef

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrMalformedXML XML 文档无法解析
	ErrMalformedXML = errors.New("edef: malformed xml document")

	// ErrInvalidDescription 端点描述缺少强制属性
	ErrInvalidDescription = errors.New("edef: invalid endpoint description")

	// ErrUnsupportedValue 值类型无法编码
	ErrUnsupportedValue = errors.New("edef: unsupported property value")
)

// CodecError 编解码错误
//
// 携带错误报文的上下文；调用方丢弃该报文并记录日志，绝不传播到注册表。
type CodecError struct {
	Op  string // 操作名称
	Err error  // 原始错误
}

// Error 实现 error 接口
func (e *CodecError) Error() string {
	return fmt.Sprintf("edef: %s: %v", e.Op, e.Err)
}

// Unwrap 支持 errors.Unwrap
func (e *CodecError) Unwrap() error {
	return e.Err
}
