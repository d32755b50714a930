// Package match 提供服务属性匹配的谓词组合子
//
// 以 AND / OR / NOT / 比较节点组合，对普通属性表求值，
// 通配符 "*" 表示"任意值"。多值属性与标量比较时任一元素命中即匹配。
package match

import (
	"fmt"

	"github.com/dep2p/go-remotesvc/pkg/types"
)

// Predicate 属性谓词
type Predicate interface {
	// Matches 对属性表求值
	Matches(props map[string]any) bool
}

// ============================================================================
//                              比较节点
// ============================================================================

type equals struct {
	key   string
	value string
}

// Equals 键值相等谓词
//
// value 为 "*" 时退化为存在性判断；属性为列表时任一元素相等即匹配。
func Equals(key string, value any) Predicate {
	return equals{key: key, value: fmt.Sprintf("%v", value)}
}

// Present 键存在性谓词
func Present(key string) Predicate {
	return equals{key: key, value: types.MatchAll}
}

type contains struct {
	key   string
	value string
}

// Contains 字面值成员谓词
//
// 与 Equals 不同，"*" 不退化为存在性判断，始终按字面值比较，
// 适用于值本身可能就是 "*" 的属性。
func Contains(key string, value any) Predicate {
	return contains{key: key, value: fmt.Sprintf("%v", value)}
}

func (c contains) Matches(props map[string]any) bool {
	raw, ok := props[c.key]
	if !ok || raw == nil {
		return false
	}
	for _, item := range types.ToStringSlice(raw) {
		if item == c.value {
			return true
		}
	}
	return false
}

func (e equals) Matches(props map[string]any) bool {
	raw, ok := props[e.key]
	if !ok || raw == nil {
		return false
	}
	if e.value == types.MatchAll {
		return true
	}
	for _, item := range types.ToStringSlice(raw) {
		if item == e.value {
			return true
		}
	}
	return false
}

// ============================================================================
//                              组合节点
// ============================================================================

type and []Predicate

// And 合取谓词（空合取恒真）
func And(preds ...Predicate) Predicate { return and(preds) }

func (a and) Matches(props map[string]any) bool {
	for _, p := range a {
		if !p.Matches(props) {
			return false
		}
	}
	return true
}

type or []Predicate

// Or 析取谓词（空析取恒假）
func Or(preds ...Predicate) Predicate { return or(preds) }

func (o or) Matches(props map[string]any) bool {
	for _, p := range o {
		if p.Matches(props) {
			return true
		}
	}
	return false
}

type not struct{ inner Predicate }

// Not 取反谓词
func Not(p Predicate) Predicate { return not{inner: p} }

func (n not) Matches(props map[string]any) bool {
	return !n.inner.Matches(props)
}
