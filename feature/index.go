package feature

import (
	"encoding/binary"
	"math"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// Index 是某一目录快照的只读特征索引。
//
// 构建后不可变，可在并发请求间共享；目录变化时构建新的 Index，而不是原地修改。
type Index struct {
	version uint64
	stats   CatalogStats
	dishes  []*core.Dish
	vectors []core.Vector
	pos     map[string]int
}

var _ core.VectorIndex = (*Index)(nil)

// BuildIndex 为目录构建特征索引。菜品按 ID 排序；重复 ID 只保留第一条。
func (e *Extractor) BuildIndex(dishes []core.Dish) *Index {
	sorted := uniqueSorted(dishes)
	stats := StatsOf(sorted)
	idx := &Index{
		version: fingerprint(sorted),
		stats:   stats,
		dishes:  make([]*core.Dish, len(sorted)),
		vectors: make([]core.Vector, len(sorted)),
		pos:     make(map[string]int, len(sorted)),
	}
	for i := range sorted {
		d := sorted[i]
		d.Tags = slices.Clone(d.Tags)
		idx.dishes[i] = &d
		idx.vectors[i] = e.Extract(&d, stats)
		idx.pos[d.ID] = i
	}
	return idx
}

// NewIndex 使用默认词表构建特征索引。
func NewIndex(dishes []core.Dish) *Index {
	return defaultExtractor.BuildIndex(dishes)
}

// NewIndexFromVectors 直接以给定向量构建索引（不经过抽取），用于离线向量或测试。
func NewIndexFromVectors(dishes []core.Dish, vectors map[string]core.Vector) *Index {
	sorted := uniqueSorted(dishes)
	idx := &Index{
		version: fingerprint(sorted),
		stats:   StatsOf(sorted),
		dishes:  make([]*core.Dish, 0, len(sorted)),
		vectors: make([]core.Vector, 0, len(sorted)),
		pos:     make(map[string]int, len(sorted)),
	}
	for i := range sorted {
		v, ok := vectors[sorted[i].ID]
		if !ok {
			continue
		}
		d := sorted[i]
		idx.pos[d.ID] = len(idx.dishes)
		idx.dishes = append(idx.dishes, &d)
		idx.vectors = append(idx.vectors, v)
	}
	return idx
}

func (x *Index) Version() uint64 { return x.version }

func (x *Index) Stats() CatalogStats { return x.stats }

func (x *Index) Len() int { return len(x.dishes) }

func (x *Index) Dishes() []*core.Dish { return x.dishes }

func (x *Index) Dish(id string) (*core.Dish, bool) {
	i, ok := x.pos[id]
	if !ok {
		return nil, false
	}
	return x.dishes[i], true
}

func (x *Index) Vector(id string) (core.Vector, bool) {
	i, ok := x.pos[id]
	if !ok {
		return core.Vector{}, false
	}
	return x.vectors[i], true
}

func uniqueSorted(dishes []core.Dish) []core.Dish {
	out := make([]core.Dish, 0, len(dishes))
	seen := make(map[string]struct{}, len(dishes))
	for _, d := range dishes {
		if _, ok := seen[d.ID]; ok {
			continue
		}
		seen[d.ID] = struct{}{}
		out = append(out, d)
	}
	slices.SortStableFunc(out, func(a, b core.Dish) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Fingerprint 计算目录快照的版本号：任何影响特征的字段变化都会改变结果。
func Fingerprint(dishes []core.Dish) uint64 {
	return fingerprint(uniqueSorted(dishes))
}

func fingerprint(sorted []core.Dish) uint64 {
	h := xxhash.New()
	var buf [8]byte
	writeStr := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}
	writeU64 := func(u uint64) {
		binary.LittleEndian.PutUint64(buf[:], u)
		_, _ = h.Write(buf[:])
	}
	for _, d := range sorted {
		writeStr(d.ID)
		writeStr(d.Name)
		writeStr(d.Category)
		writeU64(math.Float64bits(d.Price))
		writeU64(uint64(int64(d.Calories)))
		tags := slices.Clone(d.Tags)
		slices.Sort(tags)
		for _, t := range tags {
			writeStr(t)
		}
		writeStr("|")
		if d.Popularity != nil {
			writeU64(math.Float64bits(*d.Popularity))
		} else {
			writeStr("-")
		}
	}
	return h.Sum64()
}

// IndexCache 在并发请求间共享最新的 Index。
//
// 读路径无锁（atomic.Pointer）；目录指纹变化时在锁内重建并整体替换。
type IndexCache struct {
	extractor *Extractor
	current   atomic.Pointer[Index]
	mu        sync.Mutex
	onRebuild func(*Index)
}

// NewIndexCache 创建索引缓存；onRebuild 可为 nil，用于统计重建次数。
func NewIndexCache(extractor *Extractor, onRebuild func(*Index)) *IndexCache {
	if extractor == nil {
		extractor = defaultExtractor
	}
	return &IndexCache{extractor: extractor, onRebuild: onRebuild}
}

// Get 返回与目录快照一致的索引，必要时重建。
func (c *IndexCache) Get(dishes []core.Dish) *Index {
	sorted := uniqueSorted(dishes)
	version := fingerprint(sorted)
	if idx := c.current.Load(); idx != nil && idx.version == version {
		return idx
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.current.Load(); idx != nil && idx.version == version {
		return idx
	}
	idx := c.extractor.BuildIndex(sorted)
	c.current.Store(idx)
	if c.onRebuild != nil {
		c.onRebuild(idx)
	}
	return idx
}

// Current 返回当前缓存的索引，尚未构建时为 nil。
func (c *IndexCache) Current() *Index {
	return c.current.Load()
}
