// Package dom 将 XML 元素与属性映射为带类型访问器的领域对象。
package dom

import (
	"github.com/beevik/etree"
)

// Element 是可以由 XML 元素名识别的领域对象。
type Element interface {
	XMLElementName() string
}

// Tag 包装一个 etree 元素。
type Tag struct {
	el *etree.Element
}

// Wrap 将 etree 元素包装为 Tag，el 为 nil 时返回 nil。
func Wrap(el *etree.Element) *Tag {
	if el == nil {
		return nil
	}
	return &Tag{el: el}
}

// XMLElementName 返回元素标签名。
func (t *Tag) XMLElementName() string {
	return t.el.Tag
}

// Raw 返回底层 etree 元素。
func (t *Tag) Raw() *etree.Element {
	return t.el
}

// Attribute 返回指定属性的句柄，属性不存在时仍返回可写的句柄。
func (t *Tag) Attribute(name string) *AttributeValue {
	return &AttributeValue{owner: t.el, name: name}
}

// Children 返回指定标签名的直接子元素。
func (t *Tag) Children(tag string) []*Tag {
	children := t.el.SelectElements(tag)
	out := make([]*Tag, 0, len(children))
	for _, child := range children {
		out = append(out, &Tag{el: child})
	}
	return out
}

// AddChild 追加一个子元素。
func (t *Tag) AddChild(tag string) *Tag {
	return &Tag{el: t.el.CreateElement(tag)}
}

// RemoveChildren 删除所有指定标签名的子元素。
func (t *Tag) RemoveChildren(tag string) {
	for _, child := range t.el.SelectElements(tag) {
		t.el.RemoveChild(child)
	}
}

// AttributeValue 指向某个元素上的单个 XML 属性。
type AttributeValue struct {
	owner *etree.Element
	name  string
}

// XMLElementName 返回属性名，使属性值可以作为子元素值返回。
func (v *AttributeValue) XMLElementName() string {
	return v.name
}

// Name 返回属性名。
func (v *AttributeValue) Name() string {
	return v.name
}

// IsSet 报告属性是否出现在 XML 中。
func (v *AttributeValue) IsSet() bool {
	return v.owner.SelectAttr(v.name) != nil
}

// StringValue 返回属性文本，不存在时为空串。
func (v *AttributeValue) StringValue() string {
	return v.owner.SelectAttrValue(v.name, "")
}

// SetStringValue 写入属性；空串表示删除该属性。
func (v *AttributeValue) SetStringValue(value string) {
	if value == "" {
		v.owner.RemoveAttr(v.name)
		return
	}
	v.owner.CreateAttr(v.name, value)
}
