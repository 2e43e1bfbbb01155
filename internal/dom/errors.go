package dom

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompatibleElement 表示元素类型与访问器期望的类型不一致。
	ErrIncompatibleElement = errors.New("dom: incompatible element")
	// ErrNoPresentableName 表示该描述不提供展示名称。
	ErrNoPresentableName = errors.New("dom: description has no common presentable name")
	// ErrDuplicateDescription 表示 schema 中重复注册了同名描述。
	ErrDuplicateDescription = errors.New("dom: duplicate description")
)

// InvocationError 包装访问器调用期间产生的任何失败。
type InvocationError struct {
	Attribute string
	Accessor  string
	Err       error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("dom: get attribute %q via %s: %v", e.Attribute, e.Accessor, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
