package httpserver

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-remotesvc/pkg/lib/log"
)

// HTTP 服务器 logger
var logger = log.Logger("core/httpserver")

// Server 进程共享的 HTTP 服务器
//
// 实现 interfaces.HTTPRegistrar。
type Server struct {
	configuredPort int

	mu       sync.RWMutex
	handlers map[string]http.Handler // 路径前缀 → 处理器
	srv      *http.Server
	listener net.Listener
	port     int

	started atomic.Bool
	closed  atomic.Bool
}

// New 创建 HTTP 服务器（port 为 0 时随机选择端口）
func New(port int) *Server {
	return &Server{
		configuredPort: port,
		handlers:       make(map[string]http.Handler),
	}
}

// Start 建立监听并开始服务
func (s *Server) Start(_ context.Context) error {
	if s.closed.Load() {
		return ErrAlreadyClosed
	}

	if s.started.Swap(true) {
		return ErrAlreadyStarted
	}

	listener, err := net.Listen("tcp", ":"+strconv.Itoa(s.configuredPort))
	if err != nil {
		s.started.Store(false)
		return err
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.srv = srv
	s.port = listener.Addr().(*net.TCPAddr).Port
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Warn("HTTP 服务器退出", "error", err)
		}
	}()

	logger.Info("HTTP 服务器已启动", "port", s.Port())
	return nil
}

// Stop 停止服务器
func (s *Server) Stop(ctx context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}

	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.listener = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Port 返回实际监听端口（未启动时返回配置端口）
func (s *Server) Port() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.port > 0 {
		return s.port
	}
	return s.configuredPort
}

// RegisterHandler 在路径前缀下挂载处理器
func (s *Server) RegisterHandler(path string, handler http.Handler) error {
	if path == "" || !strings.HasPrefix(path, "/") {
		return ErrEmptyPath
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.handlers[path]; exists {
		return ErrPathTaken
	}
	s.handlers[path] = handler
	return nil
}

// UnregisterHandler 卸载路径前缀
func (s *Server) UnregisterHandler(path string) {
	s.mu.Lock()
	delete(s.handlers, path)
	s.mu.Unlock()
}

// ServeHTTP 按最长前缀匹配路由请求
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	var handler http.Handler
	best := -1
	for prefix, h := range s.handlers {
		if len(prefix) > best && matchesPrefix(r.URL.Path, prefix) {
			best = len(prefix)
			handler = h
		}
	}
	s.mu.RUnlock()

	if handler == nil {
		http.NotFound(w, r)
		return
	}
	handler.ServeHTTP(w, r)
}

// matchesPrefix 判断请求路径是否落在前缀下（按路径段对齐）
func matchesPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) {
		return true
	}
	return path[len(prefix)] == '/' || strings.HasSuffix(prefix, "/")
}
