package stache

import (
	"fmt"
	"io"
	"os"
)

// Reader produces chunked input buffers for a lexer. Each Read assembles one
// buffer from caller-supplied carry-over bytes plus up to one chunk of fresh
// bytes from the source. The reader keeps no lexer state: a token that
// straddles a chunk boundary is reassembled by handing the unconsumed tail
// of the previous buffer back as the prepend argument of the next Read.
type Reader struct {
	src    io.Reader
	closer io.Closer
	chunk  int
	alloc  Allocator
	eof    bool
	closed bool
}

// ReaderOption configures a Reader.
type ReaderOption func(*readerConfig)

type readerConfig struct {
	alloc Allocator
}

// WithAllocator sets the allocator backing read buffers. The default
// allocates fresh regions and leaves freeing to the garbage collector.
func WithAllocator(a Allocator) ReaderOption {
	return func(cfg *readerConfig) {
		cfg.alloc = a
	}
}

// NewReader returns a Reader over src with the given chunk size. The caller
// remains responsible for closing src if it needs closing.
func NewReader(src io.Reader, chunkSize int, opts ...ReaderOption) (*Reader, error) {
	if src == nil {
		return nil, fmt.Errorf("new reader: source is nil")
	}
	return newReader(src, nil, chunkSize, opts)
}

// Open opens the file at path and returns a Reader over it. The file is
// closed by Reader.Close. On error no reader is created.
func Open(path string, chunkSize int, opts ...ReaderOption) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := newReader(f, f, chunkSize, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

func newReader(src io.Reader, closer io.Closer, chunkSize int, opts []ReaderOption) (*Reader, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("new reader: chunk size must be > 0")
	}
	cfg := readerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.alloc == nil {
		cfg.alloc = heapAllocator{}
	}
	return &Reader{src: src, closer: closer, chunk: chunkSize, alloc: cfg.alloc}, nil
}

// ChunkSize returns the fixed number of new bytes requested per Read.
func (r *Reader) ChunkSize() int {
	return r.chunk
}

// Read returns the next input buffer: prepend copied into the head, followed
// by up to one chunk of fresh bytes. A buffer shorter than
// len(prepend)+ChunkSize() means the source is exhausted; the shortfall is a
// logical shrink of the same allocation, never a copy. The returned buffer
// carries a reference count of one and must be released by the caller.
//
// Prepend is normally at most one chunk's worth of unconsumed tail; a longer
// prepend still works, the buffer simply grows to fit it.
//
// On a source error no buffer is returned and the attempted allocation is
// handed back to the allocator.
func (r *Reader) Read(prepend []byte) (*Buffer, error) {
	if r.closed {
		panic("stache: read on closed reader")
	}
	region := r.alloc.Get(len(prepend) + r.chunk)
	head := copy(region, prepend)
	n, err := io.ReadFull(r.src, region[head:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		r.alloc.Put(region)
		return nil, fmt.Errorf("read: %w", err)
	}
	r.eof = n < r.chunk
	alloc := r.alloc
	return newBuffer(region[:head+n], func([]byte) { alloc.Put(region) }), nil
}

// Finished reports whether the most recent Read hit the end of the source,
// which it signals by returning fewer new bytes than the chunk size. The
// value is re-evaluated on every Read, not latched: a source that grows
// between calls flips it back.
func (r *Reader) Finished() bool {
	if r.closed {
		panic("stache: finished on closed reader")
	}
	return r.eof
}

// Close releases the reader and closes its source when the reader owns it
// (Open, FileInput, HTTPInput). Close must be called exactly once; any
// reader operation afterwards panics.
func (r *Reader) Close() error {
	if r.closed {
		panic("stache: close of closed reader")
	}
	r.closed = true
	r.src = nil
	if r.closer == nil {
		return nil
	}
	if err := r.closer.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
