package multicast

import "encoding/json"

// 组播事件类型
const (
	eventAdd      = "add"
	eventUpdate   = "update"
	eventRemove   = "remove"
	eventDiscover = "discover"
)

// access 发送方调度器 servlet 的访问信息
//
// 接收方用源 IP + 这里的端口和路径拼出拉取 URL。
type access struct {
	Port int    `json:"port"`
	Path string `json:"path"`
}

// packet 组播报文
//
// add/update 携带 access；remove 携带 uids；discover 两者皆无。
type packet struct {
	Sender string   `json:"sender"`
	Event  string   `json:"event"`
	Access *access  `json:"access,omitempty"`
	UIDs   []string `json:"uids,omitempty"`
}

// encodePacket 编码报文
func encodePacket(p packet) ([]byte, error) {
	return json.Marshal(p)
}

// decodePacket 解码报文
func decodePacket(data []byte) (packet, error) {
	var p packet
	err := json.Unmarshal(data, &p)
	return p, err
}
