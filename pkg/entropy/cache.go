package entropy

import "sync"

// ComputeFunc evaluates the expected entropy for a sample length.
type ComputeFunc func(n int) (float64, error)

// Cache memoizes expected entropy values by sample length. Entries are never
// evicted: callers see a small recurring set of buffer sizes.
//
// The lock is held while a missing value is computed, so concurrent callers
// asking for the same n never trigger a second evaluation.
type Cache struct {
	mu      sync.Mutex
	compute ComputeFunc
	values  map[int]float64
}

// NewCache returns an empty cache backed by compute. A nil compute uses the
// default model.
func NewCache(compute ComputeFunc) *Cache {
	if compute == nil {
		compute = DefaultModel().Expected
	}
	return &Cache{
		compute: compute,
		values:  make(map[int]float64),
	}
}

// GetOrCompute returns the cached value for n, computing and storing it on
// first use. Failed computations are not cached.
func (c *Cache) GetOrCompute(n int) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.values[n]; ok {
		return v, nil
	}
	v, err := c.compute(n)
	if err != nil {
		return 0, err
	}
	c.values[n] = v
	return v, nil
}

// Len returns the number of cached lengths.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}

var defaultCache = NewCache(nil)

// Expected returns the expected entropy of a random sample of n bytes using
// the default model and the process-wide cache.
func Expected(n int) (float64, error) {
	return defaultCache.GetOrCompute(n)
}
