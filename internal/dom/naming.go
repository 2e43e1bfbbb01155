package dom

import (
	"strings"

	"github.com/fatih/camelcase"
)

// NameStrategy 在 Go 属性名与 XML 名称之间转换。
type NameStrategy interface {
	ConvertName(property string) string
	SplitIntoWords(xmlName string) []string
}

// HyphenStrategy 生成 source-root 形式的名称。
type HyphenStrategy struct{}

func (HyphenStrategy) ConvertName(property string) string {
	return strings.Join(lowerWords(camelcase.Split(property)), "-")
}

func (HyphenStrategy) SplitIntoWords(xmlName string) []string {
	return strings.FieldsFunc(xmlName, func(r rune) bool { return r == '-' })
}

// JavaStrategy 生成 sourceRoot 形式的名称。
type JavaStrategy struct{}

func (JavaStrategy) ConvertName(property string) string {
	if property == "" {
		return ""
	}
	words := camelcase.Split(property)
	words[0] = strings.ToLower(words[0])
	return strings.Join(words, "")
}

func (JavaStrategy) SplitIntoWords(xmlName string) []string {
	return lowerWords(camelcase.Split(xmlName))
}

func lowerWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w) == "" || w == "_" || w == "-" {
			continue
		}
		out = append(out, strings.ToLower(w))
	}
	return out
}
