// Package binding 把标题文本中的 ${path} 占位符替换为绑定数据中的值。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ${user.name} 或 ${user.name | 朋友}，竖线后为缺省值。
var placeholder = regexp.MustCompile(`\$\{([^}|]*)(?:\|([^}]*))?\}`)

// Result 记录一次插值的结果与未能解析的路径。
type Result struct {
	Text    string
	Missing []string
}

// Interpolate 替换所有占位符。路径不存在且无缺省值时保留原占位符。
func Interpolate(text string, data any) string {
	return Resolve(text, data).Text
}

// Resolve 与 Interpolate 相同，但额外报告缺失的路径，供调用方记录警告。
func Resolve(text string, data any) Result {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(text, func(match string) string {
		groups := placeholder.FindStringSubmatch(match)
		path := strings.TrimSpace(groups[1])
		fallback, hasFallback := strings.TrimSpace(groups[2]), strings.Contains(match, "|")
		if path == "" {
			return match
		}
		if val, ok := Lookup(data, path); ok && val != nil {
			return format(val)
		}
		if hasFallback {
			return fallback
		}
		missing = append(missing, path)
		return match
	})
	return Result{Text: out, Missing: missing}
}

// Lookup 按 a.b[0].c 形式的路径在 JSON 风格数据（map/slice）中取值。
func Lookup(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	current := data
	for _, part := range strings.Split(path, ".") {
		name, indexes, ok := splitIndexes(part)
		if !ok {
			return nil, false
		}
		if name != "" {
			m, isMap := current.(map[string]any)
			if !isMap {
				return nil, false
			}
			if current, ok = m[name]; !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			arr, isArr := current.([]any)
			if !isArr || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
		}
	}
	return current, true
}

// splitIndexes 拆分 "items[1][2]" → ("items", [1 2])。
func splitIndexes(part string) (string, []int, bool) {
	open := strings.IndexByte(part, '[')
	if open == -1 {
		return part, nil, true
	}
	name, rest := part[:open], part[open:]
	var indexes []int
	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end == -1 {
			return "", nil, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(rest[1:end]))
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, n)
		rest = rest[end+1:]
	}
	return name, indexes, true
}

// format 让 JSON 数字里的整数不带小数点。
func format(v any) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprint(v)
}
