package dom

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ChildDescription 描述元素下的一类子值（属性或子元素集合）。
type ChildDescription interface {
	XMLName() string
	Values(parent Element) ([]Element, error)
}

// PresentableNamer 是可选能力，只有能给出统一展示名的描述才实现它。
type PresentableNamer interface {
	CommonPresentableName(strategy NameStrategy) string
}

// CommonPresentableName 返回描述的展示名，描述不具备该能力时返回 ErrNoPresentableName。
func CommonPresentableName(desc ChildDescription, strategy NameStrategy) (string, error) {
	namer, ok := desc.(PresentableNamer)
	if !ok {
		return "", fmt.Errorf("%w: %s (%T)", ErrNoPresentableName, desc.XMLName(), desc)
	}
	return namer.CommonPresentableName(strategy), nil
}

// AttributeDescription 是 (属性名, 访问器) 的不可变组合。
type AttributeDescription struct {
	name   string
	getter Accessor
}

// Attribute 创建属性描述。
func Attribute(name string, getter Accessor) *AttributeDescription {
	return &AttributeDescription{name: name, getter: getter}
}

// XMLName 返回属性名。
func (d *AttributeDescription) XMLName() string { return d.name }

// Getter 返回绑定的访问器。
func (d *AttributeDescription) Getter() Accessor { return d.getter }

// AttributeValue 在 parent 上调用访问器并返回属性值。
func (d *AttributeDescription) AttributeValue(parent Element) (*AttributeValue, error) {
	val, err := d.getter.invoke(parent)
	if err != nil {
		return nil, &InvocationError{Attribute: d.name, Accessor: d.getter.String(), Err: err}
	}
	if val == nil {
		return nil, &InvocationError{Attribute: d.name, Accessor: d.getter.String(), Err: fmt.Errorf("accessor returned no value")}
	}
	return val, nil
}

// Values 返回只包含一个元素的切片，即 AttributeValue 的结果。
func (d *AttributeDescription) Values(parent Element) ([]Element, error) {
	val, err := d.AttributeValue(parent)
	if err != nil {
		return nil, err
	}
	return []Element{val}, nil
}

// Equal 当属性名与访问器身份都相同时返回 true。
func (d *AttributeDescription) Equal(other *AttributeDescription) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil {
		return false
	}
	return d.name == other.name && d.getter.Equal(other.getter)
}

// CollectionDescription 描述同名的重复子元素。
type CollectionDescription struct {
	name     string
	property string
}

// Collection 创建子元素集合描述，property 是 Go 侧的属性名，用于生成展示名。
func Collection(name, property string) *CollectionDescription {
	return &CollectionDescription{name: name, property: property}
}

// XMLName 返回子元素标签名。
func (d *CollectionDescription) XMLName() string { return d.name }

// Values 返回 parent 下所有匹配的子元素。
func (d *CollectionDescription) Values(parent Element) ([]Element, error) {
	tag, ok := parent.(interface{ Children(string) []*Tag })
	if !ok {
		return nil, fmt.Errorf("%w: %T has no children", ErrIncompatibleElement, parent)
	}
	children := tag.Children(d.name)
	out := make([]Element, 0, len(children))
	for _, c := range children {
		out = append(out, c)
	}
	return out, nil
}

// CommonPresentableName 将属性名拆分为单词，首字母大写并复数化最后一个词。
func (d *CollectionDescription) CommonPresentableName(strategy NameStrategy) string {
	words := strategy.SplitIntoWords(strategy.ConvertName(d.property))
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	if n := len(words); n > 0 && !strings.HasSuffix(words[n-1], "s") {
		words[n-1] += "s"
	}
	return strings.Join(words, " ")
}
