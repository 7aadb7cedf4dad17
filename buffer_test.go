package stache

import (
	"bytes"
	"testing"
)

func TestBufferRetainReleaseFreesOnce(t *testing.T) {
	for _, retains := range []int{0, 1, 2, 5} {
		freed := 0
		buf := newBuffer([]byte("{{name}}"), func([]byte) { freed++ })
		handles := []*Buffer{buf}
		for i := 0; i < retains; i++ {
			handles = append(handles, buf.Retain())
		}
		for i, h := range handles {
			if freed != 0 {
				t.Fatalf("retains=%d: freed after %d of %d releases", retains, i, len(handles))
			}
			h.Release()
		}
		if freed != 1 {
			t.Fatalf("retains=%d: freed %d times, want exactly once", retains, freed)
		}
	}
}

func TestBufferRetainedHandleOutlivesProducer(t *testing.T) {
	freed := false
	buf := newBuffer([]byte("Just static"), func([]byte) { freed = true })
	keep := buf.Retain()
	buf.Release()
	if freed {
		t.Fatalf("buffer freed while a retained handle is live")
	}
	if !bytes.Equal(keep.Bytes(), []byte("Just static")) {
		t.Fatalf("retained handle content changed: %q", keep.Bytes())
	}
	keep.Release()
	if !freed {
		t.Fatalf("buffer not freed after last release")
	}
}

func TestBufferDoubleReleasePanics(t *testing.T) {
	buf := newBuffer([]byte("x"), nil)
	buf.Release()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on double release")
		}
	}()
	buf.Release()
}

func TestBufferBytesAfterReleasePanics(t *testing.T) {
	buf := newBuffer([]byte("x"), nil)
	buf.Release()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on bytes of released buffer")
		}
	}()
	_ = buf.Bytes()
}

func TestBufferRetainAfterReleasePanics(t *testing.T) {
	buf := newBuffer([]byte("x"), nil)
	buf.Release()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on retain of released buffer")
		}
	}()
	_ = buf.Retain()
}

func TestBufferLenNil(t *testing.T) {
	var buf *Buffer
	if got := buf.Len(); got != 0 {
		t.Fatalf("nil buffer Len = %d, want 0", got)
	}
}

func TestSliceViewsBuffer(t *testing.T) {
	freed := false
	buf := newBuffer([]byte("{{name}}Ju"), func([]byte) { freed = true })
	tok := buf.Slice(2, 6)
	if got := string(tok.Bytes()); got != "name" {
		t.Fatalf("slice bytes = %q, want %q", got, "name")
	}
	if tok.Len() != 4 {
		t.Fatalf("slice len = %d, want 4", tok.Len())
	}
	buf.Release()
	if freed {
		t.Fatalf("buffer freed while a token slice is live")
	}
	if got := string(tok.Bytes()); got != "name" {
		t.Fatalf("slice bytes after producer release = %q, want %q", got, "name")
	}
	tok.Release()
	if !freed {
		t.Fatalf("buffer not freed after last slice release")
	}
}

func TestSliceBoundsPanic(t *testing.T) {
	buf := newBuffer([]byte("abc"), nil)
	defer buf.Release()
	for _, bounds := range [][2]int{{-1, 2}, {2, 1}, {0, 4}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic for bounds [%d:%d)", bounds[0], bounds[1])
				}
			}()
			_ = buf.Slice(bounds[0], bounds[1])
		}()
	}
}

func TestSliceDoubleReleasePanics(t *testing.T) {
	buf := newBuffer([]byte("abc"), nil)
	tok := buf.Slice(0, 1)
	buf.Release()
	tok.Release()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on double slice release")
		}
	}()
	tok.Release()
}
