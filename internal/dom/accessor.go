package dom

import (
	"fmt"
	"reflect"
)

// Accessor 从元素中取出某个属性值，在 schema 注册时一次性绑定。
// 两个 Accessor 的身份由所属类型与方法名决定。
type Accessor struct {
	owner  string
	method string
	get    func(Element) (*AttributeValue, error)
}

// NewAccessor 使用类型化的取值函数构造 Accessor，通常传入方法表达式，
// 例如 NewAccessor("Name", (*SdkElement).Name)。
func NewAccessor[E Element](method string, fn func(E) *AttributeValue) Accessor {
	owner := ownerName[E]()
	return Accessor{
		owner:  owner,
		method: method,
		get: func(el Element) (*AttributeValue, error) {
			typed, ok := el.(E)
			if !ok {
				return nil, fmt.Errorf("%w: %T is not %s", ErrIncompatibleElement, el, owner)
			}
			return fn(typed), nil
		},
	}
}

// NewAccessorFunc 构造可能失败的 Accessor。
func NewAccessorFunc[E Element](method string, fn func(E) (*AttributeValue, error)) Accessor {
	owner := ownerName[E]()
	return Accessor{
		owner:  owner,
		method: method,
		get: func(el Element) (*AttributeValue, error) {
			typed, ok := el.(E)
			if !ok {
				return nil, fmt.Errorf("%w: %T is not %s", ErrIncompatibleElement, el, owner)
			}
			return fn(typed)
		},
	}
}

// ownerName 返回 E 的静态类型名，E 为接口类型时同样可区分。
func ownerName[E Element]() string {
	return reflect.TypeFor[E]().String()
}

// Owner 返回访问器所属的元素类型名。
func (a Accessor) Owner() string { return a.owner }

// Method 返回访问器方法名。
func (a Accessor) Method() string { return a.method }

// String 返回 owner.method 形式的标识。
func (a Accessor) String() string {
	return a.owner + "." + a.method
}

// Equal 比较两个访问器的身份。
func (a Accessor) Equal(other Accessor) bool {
	return a.owner == other.owner && a.method == other.method
}

func (a Accessor) invoke(el Element) (val *AttributeValue, err error) {
	if a.get == nil {
		return nil, fmt.Errorf("accessor %s is not bound", a)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("accessor %s panicked: %v", a, r)
		}
	}()
	return a.get(el)
}
