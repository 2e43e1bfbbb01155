package remote

import (
	"fmt"
	"strconv"
	"strings"
)

var prereleaseRank = map[string]int{
	"":     3,
	"rc":   2,
	"beta": 1,
}

type versionParts struct {
	major         int
	minor         int
	patch         int
	prerelease    string
	prereleaseNum int
}

// CompareVersions 比较两个 Go 版本号（可带 go 前缀），返回 1 表示 a>b。
func CompareVersions(a, b string) int {
	pa := parseVersion(a)
	pb := parseVersion(b)

	if pa.major != pb.major {
		return cmpInt(pa.major, pb.major)
	}
	if pa.minor != pb.minor {
		return cmpInt(pa.minor, pb.minor)
	}
	if pa.patch != pb.patch {
		return cmpInt(pa.patch, pb.patch)
	}
	if pa.prerelease == pb.prerelease {
		return cmpInt(pa.prereleaseNum, pb.prereleaseNum)
	}
	return cmpInt(prereleaseRank[pa.prerelease], prereleaseRank[pb.prerelease])
}

// Line 返回 major.minor 形式的版本线，例如 go1.21.3 与 1.21rc1 都属于 1.21。
func Line(v string) string {
	p := parseVersion(v)
	return fmt.Sprintf("%d.%d", p.major, p.minor)
}

// IsStable 报告版本是否为正式发布版。
func IsStable(v string) bool {
	return parseVersion(v).prerelease == ""
}

// Normalize 去掉空白与 go 前缀。
func Normalize(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "go")
}

func cmpInt(a, b int) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

func parseVersion(v string) versionParts {
	parts := strings.Split(Normalize(v), ".")
	result := versionParts{}

	if len(parts) > 0 {
		result.major = parseInt(parts[0])
	}
	if len(parts) > 1 {
		minor, suffix := parseNumericPrefix(parts[1])
		result.minor = minor
		if suffix != "" {
			setPrerelease(&result, suffix)
			return result
		}
	}
	if len(parts) > 2 {
		patch, suffix := parseNumericPrefix(parts[2])
		result.patch = patch
		if suffix != "" {
			setPrerelease(&result, suffix)
		}
	}
	return result
}

func parseInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func parseNumericPrefix(input string) (int, string) {
	idx := 0
	for idx < len(input) && input[idx] >= '0' && input[idx] <= '9' {
		idx++
	}
	if idx == 0 {
		return 0, input
	}
	return parseInt(input[:idx]), input[idx:]
}

func setPrerelease(parts *versionParts, suffix string) {
	idx := 0
	for idx < len(suffix) && (suffix[idx] < '0' || suffix[idx] > '9') {
		idx++
	}
	parts.prerelease = suffix[:idx]
	if idx < len(suffix) {
		parts.prereleaseNum = parseInt(suffix[idx:])
	}
}
