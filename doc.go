// Package stache is the streaming input layer for a template lexer/renderer.
//
// This package is built for streaming: a Reader hands the lexer fixed-size
// chunks of a backing source (a file, potentially larger than memory) as
// reference-counted buffers, so the lexer can keep zero-copy token slices
// alive long after the read call that produced them. Unconsumed trailing
// bytes are carried forward by the caller between reads, which keeps the
// reader free of any lexer state.
//
// Core properties:
//   - Fixed-size chunked reads, never more than one chunk in flight per call
//   - Caller-driven carry-over so tokens may straddle chunk boundaries
//   - Shared buffer ownership with deterministic release at refcount zero
//   - Streaming HTML escape with no intermediate copy
//
// Example:
//
//	r, err := stache.Open("template.html", 4096)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer r.Close()
//	var carry []byte
//	var prev *stache.Buffer
//	for {
//		buf, err := r.Read(carry)
//		if err != nil {
//			log.Fatal(err)
//		}
//		if prev != nil {
//			prev.Release() // carry has been copied into buf by now
//		}
//		prev = buf
//		carry = lex(buf) // lexer returns the unconsumed tail
//		if r.Finished() {
//			prev.Release()
//			break
//		}
//	}
//
// Rendered output can be piped through EscapeWrite, which substitutes unsafe
// bytes inline while writing unmodified runs with single write calls.
package stache
