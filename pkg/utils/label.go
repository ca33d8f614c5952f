package utils

import (
	"slices"
	"strings"
)

// Label 记录一道菜在链路某一阶段得到的解释，例如召回来源、相关度、MMR 名次。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rank / rerank
}

// Labels 按 key 保存 Label。
type Labels map[string]Label

// Put 写入 Label。同一 key 再次写入时 Value 以 '|' 累积，Source 去重后以 ',' 累积；空 Value 不覆盖已有值。
func (ls Labels) Put(key string, l Label) {
	old, ok := ls[key]
	if !ok || old.Value == "" {
		ls[key] = l
		return
	}
	if l.Value == "" {
		return
	}
	merged := Label{Value: old.Value + "|" + l.Value, Source: old.Source}
	if l.Source != "" && !slices.Contains(strings.Split(old.Source, ","), l.Source) {
		if merged.Source == "" {
			merged.Source = l.Source
		} else {
			merged.Source += "," + l.Source
		}
	}
	ls[key] = merged
}

// Values 按累积顺序拆分 Value。
func (l Label) Values() []string {
	if l.Value == "" {
		return nil
	}
	return strings.Split(l.Value, "|")
}

// Explain 导出 key -> Value，供输出与日志使用。
func (ls Labels) Explain() map[string]string {
	if len(ls) == 0 {
		return nil
	}
	out := make(map[string]string, len(ls))
	for k, l := range ls {
		out[k] = l.Value
	}
	return out
}
