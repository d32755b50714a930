package httpserver

import "errors"

// HTTP 服务器错误定义
var (
	// ErrAlreadyStarted 服务器已启动
	ErrAlreadyStarted = errors.New("httpserver: already started")

	// ErrAlreadyClosed 服务器已关闭
	ErrAlreadyClosed = errors.New("httpserver: already closed")

	// ErrPathTaken 路径前缀已被占用
	ErrPathTaken = errors.New("httpserver: path already registered")

	// ErrEmptyPath 路径前缀为空或不以 '/' 开头
	ErrEmptyPath = errors.New("httpserver: invalid path")
)
