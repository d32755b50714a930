// Package edef 实现 OSGi EDEF XML 的编解码
//
// EDEF (Endpoint Description Extender Format) 是端点描述的规范线格式，
// 命名空间 http://www.osgi.org/xmlns/rsa/v1.0.0。
// MQTT / Redis / ZooKeeper 三种发现后端用它交换端点描述。
//
// # 编码
//
// 一个 XML 文档携带若干 <endpoint-description>，每条属性一个
// <property name=... value-type=...>：
//
//   - 已知键强制类型：endpoint.framework.uuid → String、
//     endpoint.service.id → long、service.imported → boolean
//   - 未知键按值的运行时类型推断：Tuple → array、List → list、
//     Set → set（子 <value> 元素）；int64 → long；float64 → double；
//     bool → boolean；其余 → String
//   - RawXML 值原样嵌入，不带 value-type 属性
//
// # 解码
//
// array → 定长有序序列（Tuple）、list → 有序序列（List）、
// set → 无序集合（Set）；标量按 value-type 解析（boolean 宽松：
// 除 "false"/"0" 外均为 true）；无类型属性默认 String。
//
// # 往返契约
//
// 对任意合法的 EndpointDescription d：
//
//	Parse(Marshal([d])) == [d]   （逐属性相等，而非 XML 文本相等）
package edef
