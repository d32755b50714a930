package dispatch

import (
	"strings"
	"sync"

	"github.com/dep2p/go-remotesvc/pkg/lib/log"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

var logger = log.Logger("core/dispatch")

// Resolver RPC 调度解析器
//
// 持有一个 Exporter 的活跃端点名与导出时注册的方法表。
type Resolver struct {
	mu      sync.RWMutex
	entries map[string]*resolverEntry // 端点名 → 条目
}

// resolverEntry 端点名下的调度信息
type resolverEntry struct {
	endpoint *types.ExportEndpoint
	methods  types.MethodMap
}

// NewResolver 创建解析器
func NewResolver() *Resolver {
	return &Resolver{entries: make(map[string]*resolverEntry)}
}

// Register 登记端点及其方法表
//
// 同名登记覆盖旧条目（纯防御：注册表已禁止同名冲突，
// 此处保留"最后注册者生效"语义）。
func (r *Resolver) Register(ep *types.ExportEndpoint, methods types.MethodMap) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[ep.Name] = &resolverEntry{endpoint: ep, methods: methods}
}

// Unregister 注销端点名
func (r *Resolver) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Rename 迁移端点名下的条目
func (r *Resolver) Rename(oldName, newName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[oldName]; ok {
		delete(r.entries, oldName)
		r.entries[newName] = entry
	}
}

// Names 返回当前登记的全部端点名
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// Resolve 解析调用串
//
// 选取满足 method 以 "name." 开头的最长端点名；长度严格排序，
// 不存在并列。返回选中的端点与剥离前缀后的方法名。
func (r *Resolver) Resolve(method string) (*types.ExportEndpoint, types.MethodFunc, error) {
	r.mu.RLock()
	var best string
	var bestEntry *resolverEntry
	for name, entry := range r.entries {
		if strings.HasPrefix(method, name+".") && len(name) > len(best) {
			best = name
			bestEntry = entry
		}
	}
	r.mu.RUnlock()

	if bestEntry == nil {
		return nil, nil, &DispatchError{Method: method, Err: ErrNoEndpoint}
	}

	methodName := method[len(best)+1:]
	fn, ok := bestEntry.methods[methodName]
	if !ok {
		return nil, nil, &DispatchError{Method: method, Err: ErrUnknownMethod}
	}
	return bestEntry.endpoint, fn, nil
}

// Dispatch 解析并调用
//
// 位置参数与关键字参数按调用方原样传入；被调方法返回的错误
// 原样传播给传输层。
func (r *Resolver) Dispatch(method string, args []any, kwargs map[string]any) (any, error) {
	ep, fn, err := r.Resolve(method)
	if err != nil {
		logger.Debug("调度失败", "method", method, "error", err)
		return nil, err
	}
	logger.Debug("调度", "method", method, "endpoint", ep.Name)
	return fn(args, kwargs)
}
