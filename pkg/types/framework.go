package types

import "github.com/google/uuid"

// FrameworkUID 本进程的框架标识
//
// 独立类型便于依赖注入时与普通字符串区分。
type FrameworkUID string

// NewFrameworkUID 生成新的框架标识
func NewFrameworkUID() FrameworkUID {
	return FrameworkUID(uuid.New().String())
}

// String 返回字符串表示
func (u FrameworkUID) String() string {
	return string(u)
}
