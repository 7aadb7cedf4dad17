package main

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"pkt.systems/stache"
)

// inspect prints one line per chunked read: sequence number, carried bytes,
// fresh bytes, the finished flag, and a sanitized preview truncated to the
// line width. A trailing incomplete UTF-8 sequence is carried into the next
// read as prepend so previews never split a rune across chunk boundaries.
func inspect(w io.Writer, r *stache.Reader, width int) error {
	var carry []byte
	var carrySlice stache.Slice
	haveCarry := false
	seq := 0
	for {
		carried := len(carry)
		buf, err := r.Read(carry)
		if haveCarry {
			carrySlice.Release()
			haveCarry = false
		}
		carry = nil
		if err != nil {
			return err
		}
		data := buf.Bytes()
		done := r.Finished()
		keep := len(data)
		if !done {
			keep -= incompleteTailLen(data)
		}
		line := fmt.Sprintf("read %4d  carry %2d  new %5d  eof=%-5t  %s",
			seq, carried, len(data)-carried, done, preview(data[:keep]))
		if width > 0 && ansi.PrintableRuneWidth(line) > width {
			line = truncate.StringWithTail(line, uint(width), "…")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			buf.Release()
			return err
		}
		if done {
			buf.Release()
			return nil
		}
		if keep < len(data) {
			carrySlice = buf.Slice(keep, len(data))
			carry = carrySlice.Bytes()
			haveCarry = true
		}
		buf.Release()
		seq++
	}
}

// incompleteTailLen returns how many trailing bytes of p form the start of a
// UTF-8 sequence whose remaining bytes are still in the source.
func incompleteTailLen(p []byte) int {
	for i := 1; i <= utf8.UTFMax && i <= len(p); i++ {
		b := p[len(p)-i]
		if b < 0x80 {
			return 0
		}
		if b < 0xC0 {
			continue // continuation byte, keep scanning for the start
		}
		need := 2
		switch {
		case b >= 0xF0:
			need = 4
		case b >= 0xE0:
			need = 3
		}
		if need > i {
			return i
		}
		return 0
	}
	return 0
}

func preview(p []byte) string {
	out := make([]byte, 0, len(p))
	for _, b := range p {
		if b < 0x20 || b == 0x7F {
			out = append(out, '.')
			continue
		}
		out = append(out, b)
	}
	return string(out)
}
