// Package conv 读取 YAML/JSON 解码得到的弱类型值（Node 配置、请求参数）。
// YAML 数字解码为 int，JSON 解码为 float64，这里统一两者。
package conv

import (
	"fmt"
	"math"
)

// Float 将数值型 any 转为 float64。
func Float(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// Int 将数值型 any 转为 int；带小数部分的浮点数不接受（8.5 不是合法的条数）。
func Int(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case int32:
		return int(val), true
	case uint64:
		return int(val), true
	}
	f, ok := Float(v)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// Section 是一段 Node 配置。取值方法在 key 缺失时返回默认值，类型不符时返回错误。
type Section map[string]any

// Int 读取整数。
func (s Section) Int(key string, def int) (int, error) {
	v, ok := s[key]
	if !ok || v == nil {
		return def, nil
	}
	n, ok := Int(v)
	if !ok {
		return 0, fmt.Errorf("%s: want integer, got %T(%v)", key, v, v)
	}
	return n, nil
}

// Float 读取浮点数。
func (s Section) Float(key string, def float64) (float64, error) {
	v, ok := s[key]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := Float(v)
	if !ok {
		return 0, fmt.Errorf("%s: want number, got %T(%v)", key, v, v)
	}
	return f, nil
}

// String 读取字符串。
func (s Section) String(key, def string) (string, error) {
	v, ok := s[key]
	if !ok || v == nil {
		return def, nil
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: want string, got %T", key, v)
	}
	return str, nil
}

// Strings 读取字符串列表。数字元素按整数格式化，菜品 id 写成裸数字时也能识别。
func (s Section) Strings(key string) ([]string, error) {
	v, ok := s[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for i, e := range list {
			if str, ok := e.(string); ok {
				out = append(out, str)
				continue
			}
			n, ok := Int(e)
			if !ok {
				return nil, fmt.Errorf("%s[%d]: want string, got %T", key, i, e)
			}
			out = append(out, fmt.Sprint(n))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: want list, got %T", key, v)
	}
}

// Sections 读取嵌套配置列表（例如 filter 的 filters）。
func (s Section) Sections(key string) ([]Section, error) {
	v, ok := s[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("%s: missing", key)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: want list, got %T", key, v)
	}
	out := make([]Section, 0, len(list))
	for i, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: want mapping, got %T", key, i, e)
		}
		out = append(out, Section(m))
	}
	return out, nil
}
