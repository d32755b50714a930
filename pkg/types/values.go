package types

// ============================================================================
//                              EDEF 集合值类型
// ============================================================================
//
// EDEF 的 array / list / set 三种集合在 Go 中没有天然的区分，
// 这里用独立的命名类型承载，保证编解码往返后类型不丢失。

// Tuple EDEF array 值：定长有序序列
type Tuple []any

// List EDEF list 值：有序序列
type List []any

// Set EDEF set 值：无序集合
//
// 底层用切片承载以保持元素类型；语义上无序，比较时应忽略顺序。
type Set []any

// RawXML 原样嵌入的 XML 片段
//
// 编码时不带 value-type 属性，内容逐字节写入 <property> 元素体。
type RawXML string

// Contains 判断集合是否包含某元素
func (s Set) Contains(v any) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}
