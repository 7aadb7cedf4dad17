package stache

import "fmt"

// Buffer is a reference-counted handle over one contiguous byte region.
// A Buffer starts with a count of one, held by whoever received it from
// Reader.Read. Retain grants further handles; the region is returned to its
// allocator exactly when the last handle is released.
//
// The count is a plain integer, not an atomic one: retain and release are
// meant to be called from the single thread of control that lexes and parses
// the buffer. Cross-goroutine sharing would need an atomic count instead.
type Buffer struct {
	data     []byte
	refs     *int
	free     func()
	released bool
}

func newBuffer(data []byte, free func([]byte)) *Buffer {
	b := &Buffer{data: data, refs: new(int)}
	if free != nil {
		b.free = func() { free(data) }
	}
	*b.refs = 1
	return b
}

// Bytes returns the buffer's contents. The slice must not be modified and
// must not be used after the handle is released.
func (b *Buffer) Bytes() []byte {
	if b.released {
		panic("stache: bytes of released buffer")
	}
	return b.data
}

// Len returns the buffer's size. Len works on a nil Buffer so callers can
// check it before checking the error from Read.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Bytes())
}

// Retain increments the reference count and returns a new handle that shares
// the underlying region. Release the returned handle exactly once.
func (b *Buffer) Retain() *Buffer {
	if b.released {
		panic("stache: retain of released buffer")
	}
	*b.refs++
	return &Buffer{data: b.data, refs: b.refs, free: b.free}
}

// Release decrements the reference count, returning the region to its
// allocator if this was the last handle. Releasing a handle twice is a
// programming error and panics: the consuming lexer/parser must never
// release more than it retained.
func (b *Buffer) Release() {
	if b.released {
		panic("stache: release of released buffer")
	}
	b.released = true
	*b.refs--
	if *b.refs < 0 {
		panic("stache: buffer refcount below zero")
	}
	if *b.refs == 0 && b.free != nil {
		b.free()
	}
	b.data = nil
}

// Slice retains the buffer and returns a zero-copy view of [start, end).
// The view stays valid until its own Release, independent of when the
// producing handle is released. Out-of-range bounds panic.
func (b *Buffer) Slice(start, end int) Slice {
	if start < 0 || end < start || end > len(b.Bytes()) {
		panic(fmt.Sprintf("stache: slice bounds [%d:%d) out of range for buffer of %d bytes", start, end, len(b.data)))
	}
	h := b.Retain()
	return Slice{buf: h, data: h.data[start:end]}
}

// Slice is a zero-copy view into a Buffer, typically a token recognized by
// the lexer. Each Slice holds one reference against the buffer's count and
// must be released exactly once when the token is no longer needed.
type Slice struct {
	buf  *Buffer
	data []byte
}

// Bytes returns the viewed bytes. The slice must not be modified and must
// not be used after Release.
func (s Slice) Bytes() []byte {
	if s.buf == nil || s.buf.released {
		panic("stache: bytes of released slice")
	}
	return s.data
}

// Len returns the view's length.
func (s Slice) Len() int {
	return len(s.data)
}

// Release drops the view's reference to its buffer. Releasing twice panics.
func (s *Slice) Release() {
	if s.buf == nil {
		panic("stache: release of released slice")
	}
	s.buf.Release()
	s.buf = nil
	s.data = nil
}
