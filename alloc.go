package stache

import "sync"

// Allocator provides the byte regions backing read buffers. Get returns a
// slice of exactly n bytes; Put hands a region back once its reference count
// reaches zero. Implementations may recycle regions, so callers must not
// touch a buffer after its final Release.
type Allocator interface {
	Get(n int) []byte
	Put(p []byte)
}

// heapAllocator is the default: plain make, freeing left to the GC.
type heapAllocator struct{}

func (heapAllocator) Get(n int) []byte { return make([]byte, n) }
func (heapAllocator) Put([]byte)       {}

type poolAllocator struct {
	pool sync.Pool
}

// NewPoolAllocator returns an Allocator that recycles released regions
// through a sync.Pool. Steady chunked reading with a fixed chunk size stops
// allocating once the pool is warm. Regions too small for a request are
// dropped and a fresh one is made.
func NewPoolAllocator() Allocator {
	return &poolAllocator{}
}

func (a *poolAllocator) Get(n int) []byte {
	if v := a.pool.Get(); v != nil {
		p := *v.(*[]byte)
		if cap(p) >= n {
			return p[:n]
		}
	}
	return make([]byte, n)
}

func (a *poolAllocator) Put(p []byte) {
	if cap(p) == 0 {
		return
	}
	p = p[:cap(p)]
	a.pool.Put(&p)
}
