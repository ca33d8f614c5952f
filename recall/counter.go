package recall

import (
	"cmp"
	"slices"
)

// counter 是保持首次出现顺序的累加器，遍历顺序确定。
type counter[V int | float64] struct {
	keys []string
	vals map[string]V
}

func newCounter[V int | float64]() *counter[V] {
	return &counter[V]{vals: make(map[string]V)}
}

func (c *counter[V]) add(key string, v V) {
	if _, ok := c.vals[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.vals[key] += v
}

func (c *counter[V]) get(key string) V {
	return c.vals[key]
}

func (c *counter[V]) has(key string) bool {
	_, ok := c.vals[key]
	return ok
}

func (c *counter[V]) len() int {
	return len(c.keys)
}

func (c *counter[V]) total() V {
	var s V
	for _, k := range c.keys {
		s += c.vals[k]
	}
	return s
}

type entry[V int | float64] struct {
	key string
	val V
}

// ranked 按值降序返回，值相同保持首次出现顺序。
func (c *counter[V]) ranked() []entry[V] {
	out := make([]entry[V], 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, entry[V]{key: k, val: c.vals[k]})
	}
	slices.SortStableFunc(out, func(a, b entry[V]) int { return cmp.Compare(b.val, a.val) })
	return out
}
