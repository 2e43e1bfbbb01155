package dom

import (
	"fmt"
)

// Schema 是某个元素标签下注册的子描述集合，保持注册顺序。
type Schema struct {
	tag         string
	attributes  []*AttributeDescription
	collections []*CollectionDescription
	names       map[string]struct{}
}

// NewSchema 创建指定标签的 schema。
func NewSchema(tag string) *Schema {
	return &Schema{tag: tag, names: map[string]struct{}{}}
}

// Tag 返回元素标签名。
func (s *Schema) Tag() string { return s.tag }

// AddAttribute 注册属性描述。
func (s *Schema) AddAttribute(desc *AttributeDescription) error {
	if err := s.reserve(desc.XMLName()); err != nil {
		return err
	}
	s.attributes = append(s.attributes, desc)
	return nil
}

// AddCollection 注册子元素集合描述。
func (s *Schema) AddCollection(desc *CollectionDescription) error {
	if err := s.reserve(desc.XMLName()); err != nil {
		return err
	}
	s.collections = append(s.collections, desc)
	return nil
}

// MustAttribute 注册属性描述，重复时 panic，仅用于包级初始化。
func (s *Schema) MustAttribute(name string, getter Accessor) *AttributeDescription {
	desc := Attribute(name, getter)
	if err := s.AddAttribute(desc); err != nil {
		panic(err)
	}
	return desc
}

// MustCollection 注册子元素集合描述，重复时 panic。
func (s *Schema) MustCollection(name, property string) *CollectionDescription {
	desc := Collection(name, property)
	if err := s.AddCollection(desc); err != nil {
		panic(err)
	}
	return desc
}

// Attributes 返回已注册的属性描述。
func (s *Schema) Attributes() []*AttributeDescription {
	return append([]*AttributeDescription(nil), s.attributes...)
}

// Attribute 按名称查找属性描述。
func (s *Schema) Attribute(name string) (*AttributeDescription, bool) {
	for _, d := range s.attributes {
		if d.XMLName() == name {
			return d, true
		}
	}
	return nil, false
}

// Children 返回所有子描述，属性在前。
func (s *Schema) Children() []ChildDescription {
	out := make([]ChildDescription, 0, len(s.attributes)+len(s.collections))
	for _, d := range s.attributes {
		out = append(out, d)
	}
	for _, d := range s.collections {
		out = append(out, d)
	}
	return out
}

// ReadAttributes 通过已注册的访问器读取元素上的全部属性值。
func (s *Schema) ReadAttributes(el Element) (map[string]string, error) {
	values := make(map[string]string, len(s.attributes))
	for _, d := range s.attributes {
		v, err := d.AttributeValue(el)
		if err != nil {
			return nil, err
		}
		values[d.XMLName()] = v.StringValue()
	}
	return values, nil
}

func (s *Schema) reserve(name string) error {
	if _, ok := s.names[name]; ok {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateDescription, s.tag, name)
	}
	s.names[name] = struct{}{}
	return nil
}
