package dispatch

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dep2p/go-remotesvc/pkg/interfaces"
	"github.com/dep2p/go-remotesvc/pkg/types"
)

// DefaultServletPath 调度器 servlet 的默认挂载路径
const DefaultServletPath = "/remotesvc/dispatcher"

// ============================================================================
//                              端点 JSON 形状
// ============================================================================

// EndpointJSON 端点的 JSON 线格式
//
// 与 EDEF 同字段、JSON 形状；组播发现与 servlet 共用。
type EndpointJSON struct {
	Sender         string         `json:"sender"`
	UID            string         `json:"uid"`
	Configurations []string       `json:"configurations"`
	Name           string         `json:"name"`
	Specifications []string       `json:"specifications"`
	Properties     map[string]any `json:"properties"`
}

// ExportToJSON 由导出端点生成 JSON 形状
func ExportToJSON(fwUID string, ep *types.ExportEndpoint) EndpointJSON {
	return EndpointJSON{
		Sender:         fwUID,
		UID:            ep.UID,
		Configurations: append([]string(nil), ep.Configurations...),
		Name:           ep.Name,
		Specifications: append([]string(nil), ep.Specifications...),
		Properties:     ep.MakeImportProperties(),
	}
}

// ToImport 生成导入端点
//
// server 为公告方地址，由接收侧的发现层提供。
func (j EndpointJSON) ToImport(server string) *types.ImportEndpoint {
	return &types.ImportEndpoint{
		UID:            j.UID,
		Framework:      j.Sender,
		Configurations: j.Configurations,
		Name:           j.Name,
		Specifications: types.ImportSpecifications(j.Specifications),
		Properties:     types.CopyProperties(j.Properties),
		Server:         server,
	}
}

// ============================================================================
//                              调度器 servlet
// ============================================================================

// Servlet 调度器 HTTP 接口
type Servlet struct {
	path       string
	dispatcher interfaces.Dispatcher
	imports    interfaces.ImportRegistry
	router     *mux.Router
}

// NewServlet 创建调度器 servlet
func NewServlet(path string, dispatcher interfaces.Dispatcher, imports interfaces.ImportRegistry) *Servlet {
	if path == "" {
		path = DefaultServletPath
	}
	s := &Servlet{
		path:       path,
		dispatcher: dispatcher,
		imports:    imports,
	}

	router := mux.NewRouter()
	sub := router.PathPrefix(path).Subrouter()
	sub.HandleFunc("/framework", s.handleFramework).Methods(http.MethodGet)
	sub.HandleFunc("/endpoints", s.handleEndpoints).Methods(http.MethodGet)
	sub.HandleFunc("/endpoints", s.handleRegister).Methods(http.MethodPost)
	sub.HandleFunc("/endpoint/{uid}", s.handleEndpoint).Methods(http.MethodGet)
	s.router = router
	return s
}

// Path 返回挂载路径
func (s *Servlet) Path() string {
	return s.path
}

// ServeHTTP 实现 http.Handler（其余路径一律 404）
func (s *Servlet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleFramework GET <base>/framework
func (s *Servlet) handleFramework(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.dispatcher.FrameworkUID())
}

// handleEndpoints GET <base>/endpoints
func (s *Servlet) handleEndpoints(w http.ResponseWriter, _ *http.Request) {
	eps := s.dispatcher.GetEndpoints()
	result := make([]EndpointJSON, 0, len(eps))
	for _, ep := range eps {
		result = append(result, ExportToJSON(s.dispatcher.FrameworkUID(), ep))
	}
	writeJSON(w, result)
}

// handleEndpoint GET <base>/endpoint/<uid>
func (s *Servlet) handleEndpoint(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]
	ep := s.dispatcher.GetEndpoint(uid)
	if ep == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, ExportToJSON(s.dispatcher.FrameworkUID(), ep))
}

// handleRegister POST <base>/endpoints
//
// 请求体为端点 JSON 数组；逐个注册为导入端点，恒返 200/OK。
func (s *Servlet) handleRegister(w http.ResponseWriter, r *http.Request) {
	var endpoints []EndpointJSON
	if err := json.NewDecoder(r.Body).Decode(&endpoints); err != nil {
		logger.Warn("端点注册请求体解析失败", "error", err)
	} else {
		server := requestHost(r)
		for _, j := range endpoints {
			imported := j.ToImport(server)
			if !s.imports.Add(imported) {
				// UID 已知：按更新处理
				s.imports.Update(imported.UID, imported.Properties)
			}
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// requestHost 提取请求方主机地址
func requestHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeJSON 输出 JSON 响应
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("JSON 响应编码失败", "error", err)
	}
}
