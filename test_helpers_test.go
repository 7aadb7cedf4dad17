package stache

import (
	"errors"
	"io"
)

// trackingAllocator counts regions handed out and back, so tests can assert
// deterministic frees.
type trackingAllocator struct {
	gets int
	puts int
}

func (a *trackingAllocator) Get(n int) []byte {
	a.gets++
	return make([]byte, n)
}

func (a *trackingAllocator) Put([]byte) {
	a.puts++
}

var errBoom = errors.New("boom")

// errReader fails after serving its payload.
type errReader struct {
	data []byte
}

func (r *errReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, errBoom
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

// shortReader serves at most max bytes per call without being exhausted,
// like a pipe under a low-data condition.
type shortReader struct {
	r   io.Reader
	max int
}

func (s *shortReader) Read(p []byte) (int, error) {
	if len(p) > s.max {
		p = p[:s.max]
	}
	return s.r.Read(p)
}

// countWriter records every write so tests can assert run coalescing.
type countWriter struct {
	writes []string
}

func (w *countWriter) Write(p []byte) (int, error) {
	w.writes = append(w.writes, string(p))
	return len(p), nil
}

func (w *countWriter) String() string {
	out := ""
	for _, s := range w.writes {
		out += s
	}
	return out
}

// failWriter accepts n writes, then fails.
type failWriter struct {
	okWrites int
	writes   []string
}

func (w *failWriter) Write(p []byte) (int, error) {
	if len(w.writes) >= w.okWrites {
		return 0, errBoom
	}
	w.writes = append(w.writes, string(p))
	return len(p), nil
}
