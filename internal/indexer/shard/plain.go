package shard

// Plain is an Accumulator backed by a single ordinary map. It is not safe
// for concurrent use and serves sequential ranking passes.
type Plain[K Key, V Number] struct {
	values map[K]V
}

func NewPlain[K Key, V Number]() *Plain[K, V] {
	return &Plain[K, V]{values: make(map[K]V)}
}

func (p *Plain[K, V]) Add(key K, delta V) {
	p.values[key] += delta
}

func (p *Plain[K, V]) Erase(key K) {
	delete(p.values, key)
}

// Snapshot returns the underlying map without copying.
func (p *Plain[K, V]) Snapshot() map[K]V {
	return p.values
}

var (
	_ Accumulator[int, float64] = (*Map[int, float64])(nil)
	_ Accumulator[int, float64] = (*Plain[int, float64])(nil)
)
