package edef

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dep2p/go-remotesvc/pkg/types"
)

// Namespace EDEF XML 命名空间
const Namespace = "http://www.osgi.org/xmlns/rsa/v1.0.0"

// value-type 取值
const (
	typeString  = "String"
	typeLong    = "long"
	typeDouble  = "double"
	typeBoolean = "boolean"
)

// forcedTypes 已知键的强制类型
var forcedTypes = map[string]string{
	types.PropEndpointFrameworkUUID: typeString,
	types.PropEndpointServiceID:     typeLong,
	types.PropServiceImported:       typeBoolean,
}

// ============================================================================
//                              XML 结构
// ============================================================================

type xmlDocument struct {
	XMLName   xml.Name      `xml:"endpoint-descriptions"`
	Xmlns     string        `xml:"xmlns,attr"`
	Endpoints []xmlEndpoint `xml:"endpoint-description"`
}

type xmlEndpoint struct {
	Properties []xmlProperty `xml:"property"`
}

type xmlProperty struct {
	Name      string         `xml:"name,attr"`
	ValueType string         `xml:"value-type,attr,omitempty"`
	Value     *string        `xml:"value,attr,omitempty"`
	Array     *xmlCollection `xml:"array,omitempty"`
	List      *xmlCollection `xml:"list,omitempty"`
	Set       *xmlCollection `xml:"set,omitempty"`
	Inner     string         `xml:",innerxml"`
}

type xmlCollection struct {
	Values []string `xml:"value"`
}

// ============================================================================
//                              编码
// ============================================================================

// Marshal 将端点描述列表编码为一个 EDEF XML 文档
func Marshal(descs []*types.EndpointDescription) ([]byte, error) {
	doc := xmlDocument{Xmlns: Namespace}

	for _, desc := range descs {
		props := desc.Properties()

		// 键排序，保证输出确定性
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		ep := xmlEndpoint{}
		for _, key := range keys {
			prop, err := encodeProperty(key, props[key])
			if err != nil {
				return nil, &CodecError{Op: "marshal", Err: err}
			}
			ep.Properties = append(ep.Properties, prop)
		}
		doc.Endpoints = append(doc.Endpoints, ep)
	}

	data, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, &CodecError{Op: "marshal", Err: err}
	}
	return append([]byte(xml.Header), data...), nil
}

// MarshalEndpoint 编码单个端点描述
func MarshalEndpoint(desc *types.EndpointDescription) ([]byte, error) {
	return Marshal([]*types.EndpointDescription{desc})
}

// encodeProperty 编码单条属性
func encodeProperty(key string, value any) (xmlProperty, error) {
	prop := xmlProperty{Name: key}

	// 原样嵌入的 XML 片段：无 value-type 属性
	if raw, ok := value.(types.RawXML); ok {
		prop.Inner = string(raw)
		return prop, nil
	}

	switch v := value.(type) {
	case types.Tuple:
		coll, elemType := encodeCollection(v)
		prop.Array = coll
		prop.ValueType = elemType
	case types.List:
		coll, elemType := encodeCollection(v)
		prop.List = coll
		prop.ValueType = elemType
	case types.Set:
		coll, elemType := encodeCollection(v)
		prop.Set = coll
		prop.ValueType = elemType
	default:
		text := encodeScalar(value)
		prop.Value = &text
		if forced, ok := forcedTypes[key]; ok {
			prop.ValueType = forced
		} else {
			prop.ValueType = scalarType(value)
		}
	}
	return prop, nil
}

// encodeCollection 编码集合元素，元素类型取自首元素
func encodeCollection(items []any) (*xmlCollection, string) {
	coll := &xmlCollection{Values: make([]string, 0, len(items))}
	elemType := typeString
	if len(items) > 0 {
		elemType = scalarType(items[0])
	}
	for _, item := range items {
		coll.Values = append(coll.Values, encodeScalar(item))
	}
	return coll, elemType
}

// scalarType 由运行时类型推断 value-type
func scalarType(v any) string {
	switch v.(type) {
	case int, int32, int64:
		return typeLong
	case float32, float64:
		return typeDouble
	case bool:
		return typeBoolean
	default:
		return typeString
	}
}

// encodeScalar 编码标量值
func encodeScalar(v any) string {
	switch val := v.(type) {
	case bool:
		if val {
			return "true"
		}
		return "false"
	case string:
		return val
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ============================================================================
//                              解码
// ============================================================================

// Parse 解析 EDEF XML 文档
//
// 文档无法解析或任一端点缺少强制属性时整体失败；
// 调用方丢弃该报文并记录日志。
func Parse(data []byte) ([]*types.EndpointDescription, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &CodecError{Op: "parse", Err: fmt.Errorf("%w: %v", ErrMalformedXML, err)}
	}

	descs := make([]*types.EndpointDescription, 0, len(doc.Endpoints))
	for _, ep := range doc.Endpoints {
		props := make(map[string]any, len(ep.Properties))
		for _, prop := range ep.Properties {
			value, err := decodeProperty(prop)
			if err != nil {
				return nil, &CodecError{Op: "parse", Err: err}
			}
			props[prop.Name] = value
		}

		desc, err := types.NewEndpointDescription(props)
		if err != nil {
			return nil, &CodecError{Op: "parse", Err: fmt.Errorf("%w: %v", ErrInvalidDescription, err)}
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

// ParseFirst 解析文档并返回第一个端点描述
func ParseFirst(data []byte) (*types.EndpointDescription, error) {
	descs, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if len(descs) == 0 {
		return nil, &CodecError{Op: "parse", Err: ErrInvalidDescription}
	}
	return descs[0], nil
}

// decodeProperty 解码单条属性
func decodeProperty(prop xmlProperty) (any, error) {
	switch {
	case prop.Array != nil:
		items, err := decodeValues(prop.Array.Values, prop.ValueType)
		if err != nil {
			return nil, err
		}
		return types.Tuple(items), nil

	case prop.List != nil:
		items, err := decodeValues(prop.List.Values, prop.ValueType)
		if err != nil {
			return nil, err
		}
		return types.List(items), nil

	case prop.Set != nil:
		items, err := decodeValues(prop.Set.Values, prop.ValueType)
		if err != nil {
			return nil, err
		}
		return types.Set(items), nil

	case prop.Value != nil:
		return decodeScalar(*prop.Value, prop.ValueType)

	default:
		// 无 value 属性也无集合子元素：元素体即原样嵌入的 XML
		if inner := strings.TrimSpace(prop.Inner); inner != "" {
			return types.RawXML(inner), nil
		}
		return decodeScalar("", prop.ValueType)
	}
}

// decodeValues 按 value-type 解码集合元素
func decodeValues(texts []string, valueType string) ([]any, error) {
	items := make([]any, 0, len(texts))
	for _, text := range texts {
		v, err := decodeScalar(strings.TrimSpace(text), valueType)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

// decodeScalar 按 value-type 解码标量
//
// 无类型属性默认 String；boolean 宽松解析。
func decodeScalar(text, valueType string) (any, error) {
	switch valueType {
	case "", typeString:
		return text, nil
	case typeLong, "int", "Integer", "Long", "short", "Short", "byte", "Byte":
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q", valueType, text)
		}
		return n, nil
	case typeDouble, "float", "Float", "Double":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q", valueType, text)
		}
		return f, nil
	case typeBoolean, "Boolean":
		return types.ParseLenientBool(text), nil
	default:
		// 未知类型按 String 处理
		return text, nil
	}
}
