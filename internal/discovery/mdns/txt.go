package mdns

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dep2p/go-remotesvc/pkg/types"
)

// TXT 记录键
//
// 属性 JSON 先 base64 再按 props.0、props.1 … 分片，
// 绕开单条 TXT 字符串 255 字节的上限。
const (
	txtKeyUID     = "uid"
	txtKeySender  = "sender"
	txtKeyName    = "name"
	txtKeyConfigs = "cfgs"
	txtKeySpecs   = "specs"
	txtKeyProps   = "props"

	// 分片长度留出 "props.NN=" 前缀的余量
	txtChunkSize = 200
)

// encodeTXT 将端点序列化为 TXT 记录
func encodeTXT(fwUID string, uid, name string, configurations, specifications []string, properties map[string]any) ([]string, error) {
	propsJSON, err := json.Marshal(properties)
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(propsJSON)

	txt := []string{
		txtKeyUID + "=" + uid,
		txtKeySender + "=" + fwUID,
		txtKeyName + "=" + name,
		txtKeyConfigs + "=" + strings.Join(configurations, ","),
		txtKeySpecs + "=" + strings.Join(specifications, ","),
	}

	for i := 0; len(encoded) > 0; i++ {
		n := txtChunkSize
		if n > len(encoded) {
			n = len(encoded)
		}
		txt = append(txt, fmt.Sprintf("%s.%d=%s", txtKeyProps, i, encoded[:n]))
		encoded = encoded[n:]
	}

	return txt, nil
}

// decodeTXT 从 TXT 记录还原导入端点
//
// server 为记录来源地址，由浏览侧填入。
func decodeTXT(txt []string, server string) (*types.ImportEndpoint, error) {
	fields := make(map[string]string)
	chunks := make(map[int]string)

	for _, record := range txt {
		key, value, ok := strings.Cut(record, "=")
		if !ok {
			continue
		}
		if suffix, found := strings.CutPrefix(key, txtKeyProps+"."); found {
			idx, err := strconv.Atoi(suffix)
			if err != nil {
				continue
			}
			chunks[idx] = value
			continue
		}
		fields[key] = value
	}

	uid := fields[txtKeyUID]
	sender := fields[txtKeySender]
	if uid == "" || sender == "" {
		return nil, ErrMalformedRecord
	}

	// 按序拼回属性 JSON
	indexes := make([]int, 0, len(chunks))
	for idx := range chunks {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	var encoded strings.Builder
	for _, idx := range indexes {
		encoded.WriteString(chunks[idx])
	}

	properties := make(map[string]any)
	if encoded.Len() > 0 {
		propsJSON, err := base64.StdEncoding.DecodeString(encoded.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		if err := json.Unmarshal(propsJSON, &properties); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
	}

	return &types.ImportEndpoint{
		UID:            uid,
		Framework:      sender,
		Configurations: splitCSV(fields[txtKeyConfigs]),
		Name:           fields[txtKeyName],
		Specifications: types.ImportSpecifications(splitCSV(fields[txtKeySpecs])),
		Properties:     properties,
		Server:         server,
	}, nil
}

// splitCSV 拆分逗号分隔列表（空串返回 nil）
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
