// Package pool provides the per-thread object pool and lock-free task
// stack used by the scheduler. It is a Go port of the original solver's
// MultiPool/ObjectPool and ConcurrentStack: a single-owner object pool
// whose slots can be handed to, and received from, other pools, plus a
// Treiber stack of pointers built on top of it.
//
// Unlike a sync.Pool, objects here are never garbage collected mid-solve:
// a Pool grows geometrically and keeps every slab it has ever allocated,
// so a pointer handed out by Get remains valid for the pool's lifetime.
package pool

// Pool is a single-goroutine-owned object pool: only the owner calls
// Get/Put, and neither is safe for concurrent use. The owner may Put a
// pointer that originated from a different Pool (that is how a popping
// worker takes a stack node or finished task into its own pool).
type Pool[T any] struct {
	free  []*T // LIFO of available objects; slabs keep them alive
	slabs [][]T
}

// New returns a Pool with an initial slab of initialSize zero-valued T.
func New[T any](initialSize int) *Pool[T] {
	if initialSize < 1 {
		initialSize = 1
	}
	p := &Pool[T]{}
	p.addSlab(initialSize)
	return p
}

func (p *Pool[T]) addSlab(size int) {
	slab := make([]T, size)
	p.slabs = append(p.slabs, slab)
	for i := range slab {
		p.free = append(p.free, &slab[i])
	}
}

// Get returns a pointer to a T, doubling the pool's capacity with a fresh
// slab if exhausted. Objects from a fresh slab are zero-valued; an object
// that was Put back keeps whatever contents it had.
func (p *Pool[T]) Get() *T {
	if len(p.free) == 0 {
		capacity := 0
		for _, slab := range p.slabs {
			capacity += len(slab)
		}
		if capacity < 1 {
			capacity = 1
		}
		p.addSlab(capacity)
	}
	n := len(p.free) - 1
	v := p.free[n]
	p.free = p.free[:n]
	return v
}

// Put returns ptr to the pool. ptr need not have originated from this
// Pool instance.
func (p *Pool[T]) Put(ptr *T) {
	p.free = append(p.free, ptr)
}

// Len reports how many objects are currently available to Get.
func (p *Pool[T]) Len() int { return len(p.free) }
