package contrib

import (
	"math"

	"github.com/gogpu/resample/internal/cache"
	"github.com/gogpu/resample/internal/filter"
)

// quantum is the precision at which scale and support enter the cache key.
const quantum = 1e4

// key identifies one contribution table.
type key struct {
	dest, src int
	scale     int64
	support   int64
	filter    string
}

// Cache memoizes contribution tables. It never evicts on its own; the owner
// calls Clear to bound memory.
//
// A Clear that races with a lookup of the same key is benign: the table is
// recomputed.
type Cache struct {
	tables *cache.Cache[key, Table]
}

// NewCache returns an empty contribution cache.
func NewCache() *Cache {
	return &Cache{tables: cache.New[key, Table]()}
}

// Table returns the memoized table for the inputs, calculating it on first
// use. Tables are shared and must not be modified.
func (c *Cache) Table(destSize, srcSize int, scale, support float64, cfg filter.Config) Table {
	k := key{
		dest:    destSize,
		src:     srcSize,
		scale:   int64(math.Round(scale * quantum)),
		support: int64(math.Round(support * quantum)),
		filter:  cfg.Name,
	}
	return c.tables.GetOrCreate(k, func() Table {
		return Calculate(destSize, srcSize, scale, support, cfg)
	})
}

// Axis returns the table for resizing one axis from srcSize to destSize
// with cfg, deriving scale and support the way the resampler does.
func (c *Cache) Axis(srcSize, destSize int, cfg filter.Config) Table {
	scale := float64(destSize) / float64(srcSize)
	return c.Table(destSize, srcSize, scale, Support(cfg, scale), cfg)
}

// Clear drops every memoized table.
func (c *Cache) Clear() {
	c.tables.Clear()
}

// Len returns the number of memoized tables.
func (c *Cache) Len() int {
	return c.tables.Len()
}

// Stats reports hit and miss counts.
func (c *Cache) Stats() cache.Stats {
	return c.tables.Stats()
}
