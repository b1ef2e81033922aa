package utils

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	reSlugSpace = regexp.MustCompile(`\s+`)
	reSlugChar  = regexp.MustCompile(`[^\w\-]`)
)

// SlugTitle 把电影标题转成海报文件名用的 slug
// 空白压缩成下划线，除字母数字下划线连字符以外的字符全部去掉
func SlugTitle(title string) string {
	slug := reSlugSpace.ReplaceAllString(strings.TrimSpace(title), "_")
	return reSlugChar.ReplaceAllString(slug, "")
}

// PosterPath 按标题和年份推导海报路径
func PosterPath(title string, year int) string {
	return "/posters/" + SlugTitle(title) + "_" + strconv.Itoa(year) + ".jpg"
}

// NormalizeStringList 把来源不一的列表字段统一成 []string
// 兼容三种历史编码：原生数组、逗号拼接字符串（或 JSON 字符串）、数字键对象
// 只在持久层边界调用一次，业务逻辑不再关心编码差异
func NormalizeStringList(input interface{}) []string {
	switch v := input.(type) {
	case nil:
		return []string{}
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := stringify(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return []string{}
		}
		// 先尝试 JSON 数组，失败再按逗号切分
		var parsed []interface{}
		if err := json.Unmarshal([]byte(v), &parsed); err == nil {
			return NormalizeStringList(parsed)
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case map[string]interface{}:
		// PostgreSQL JSONB 数组有时以数字键对象的形式出现
		keys := make([]int, 0, len(v))
		for k := range v {
			n, err := strconv.Atoi(k)
			if err != nil {
				return []string{stringify(v)}
			}
			keys = append(keys, n)
		}
		sort.Ints(keys)
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := stringify(v[strconv.Itoa(k)]); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := stringify(v); s != "" {
			return []string{s}
		}
		return []string{}
	}
}

func stringify(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case nil:
		return ""
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return strings.Trim(string(b), `"`)
	}
}
