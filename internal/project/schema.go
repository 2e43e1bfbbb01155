package project

import (
	"github.com/liangyou/gosdk/internal/dom"
	"github.com/liangyou/gosdk/pkg/models"
)

const (
	rootTag = "sdks"
	sdkTag  = "sdk"
	rootDir = "root"
)

// sdkElement 是 <sdk> 元素的类型化视图。
type sdkElement struct {
	*dom.Tag
}

func (e *sdkElement) Name() *dom.AttributeValue    { return e.Attribute("name") }
func (e *sdkElement) Type() *dom.AttributeValue    { return e.Attribute("type") }
func (e *sdkElement) Version() *dom.AttributeValue { return e.Attribute("version") }
func (e *sdkElement) Home() *dom.AttributeValue    { return e.Attribute("home") }
func (e *sdkElement) Stub() *dom.AttributeValue    { return e.Attribute("stub") }

// rootElement 是 <root path="..."/> 元素。
type rootElement struct {
	*dom.Tag
}

func (e *rootElement) Path() *dom.AttributeValue { return e.Attribute("path") }

var (
	sdkSchema   = dom.NewSchema(sdkTag)
	nameAttr    = sdkSchema.MustAttribute("name", dom.NewAccessor("Name", (*sdkElement).Name))
	typeAttr    = sdkSchema.MustAttribute("type", dom.NewAccessor("Type", (*sdkElement).Type))
	versionAttr = sdkSchema.MustAttribute("version", dom.NewAccessor("Version", (*sdkElement).Version))
	homeAttr    = sdkSchema.MustAttribute("home", dom.NewAccessor("Home", (*sdkElement).Home))
	stubAttr    = sdkSchema.MustAttribute("stub", dom.NewAccessor("Stub", (*sdkElement).Stub))
	rootsDesc   = sdkSchema.MustCollection(rootDir, "Root")

	rootPathAttr = dom.Attribute("path", dom.NewAccessor("Path", (*rootElement).Path))
)

// decodeSDK 通过 schema 中注册的描述读取一个 <sdk> 元素。
func decodeSDK(el *sdkElement) (models.SDK, error) {
	values, err := sdkSchema.ReadAttributes(el)
	if err != nil {
		return models.SDK{}, err
	}
	sdk := models.SDK{
		Name:          values[nameAttr.XMLName()],
		Type:          values[typeAttr.XMLName()],
		VersionString: values[versionAttr.XMLName()],
		HomePath:      values[homeAttr.XMLName()],
		Stub:          values[stubAttr.XMLName()] == "true",
	}

	children, err := rootsDesc.Values(el)
	if err != nil {
		return models.SDK{}, err
	}
	for _, child := range children {
		tag, ok := child.(*dom.Tag)
		if !ok {
			continue
		}
		path, err := rootPathAttr.AttributeValue(&rootElement{Tag: tag})
		if err != nil {
			return models.SDK{}, err
		}
		if p := path.StringValue(); p != "" {
			sdk.Roots = append(sdk.Roots, p)
		}
	}
	return sdk, nil
}

// encodeSDK 将 SDK 写入一个 <sdk> 元素。
func encodeSDK(el *sdkElement, sdk models.SDK) error {
	set := func(desc *dom.AttributeDescription, value string) error {
		v, err := desc.AttributeValue(el)
		if err != nil {
			return err
		}
		v.SetStringValue(value)
		return nil
	}

	stub := ""
	if sdk.Stub {
		stub = "true"
	}
	for _, pair := range []struct {
		desc  *dom.AttributeDescription
		value string
	}{
		{nameAttr, sdk.Name},
		{typeAttr, sdk.Type},
		{versionAttr, sdk.VersionString},
		{homeAttr, sdk.HomePath},
		{stubAttr, stub},
	} {
		if err := set(pair.desc, pair.value); err != nil {
			return err
		}
	}

	el.RemoveChildren(rootsDesc.XMLName())
	for _, root := range sdk.Roots {
		child := &rootElement{Tag: el.AddChild(rootsDesc.XMLName())}
		if err := setRootPath(child, root); err != nil {
			return err
		}
	}
	return nil
}

func setRootPath(el *rootElement, path string) error {
	v, err := rootPathAttr.AttributeValue(el)
	if err != nil {
		return err
	}
	v.SetStringValue(path)
	return nil
}
