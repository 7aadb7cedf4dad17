package stache

import "io"

// EscapeMode selects whether EscapeWrite substitutes unsafe bytes.
type EscapeMode uint8

const (
	// Unescaped writes input verbatim.
	Unescaped EscapeMode = iota
	// Escaped substitutes HTML-unsafe bytes with entity sequences.
	Escaped
)

// escapeSeqs maps each byte to its replacement sequence, or nil for bytes
// written unmodified. The zero byte maps to U+FFFD so template output never
// contains embedded NULs.
var escapeSeqs = [256][]byte{
	'"':  []byte("&quot;"),
	'\'': []byte("&#39;"),
	'&':  []byte("&amp;"),
	'<':  []byte("&lt;"),
	'>':  []byte("&gt;"),
	0x00: []byte("�"),
}

// EscapeWrite writes p to w, substituting unsafe bytes when mode is Escaped.
// Unmodified runs between substitutions go out as single writes, so ordinary
// text costs one write call, not one per byte. It returns the total number
// of bytes written, which exceeds len(p) whenever a substitution occurred.
//
// EscapeWrite allocates nothing. A sink error propagates immediately; what
// was already written is a valid prefix of the fully escaped output.
func EscapeWrite(w io.Writer, p []byte, mode EscapeMode) (int, error) {
	if mode == Unescaped {
		return w.Write(p)
	}
	written := 0
	run := 0
	for i := 0; i < len(p); i++ {
		seq := escapeSeqs[p[i]]
		if seq == nil {
			continue
		}
		if run < i {
			n, err := w.Write(p[run:i])
			written += n
			if err != nil {
				return written, err
			}
		}
		n, err := w.Write(seq)
		written += n
		if err != nil {
			return written, err
		}
		run = i + 1
	}
	if run < len(p) {
		n, err := w.Write(p[run:])
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// NewEscapeWriter wraps w so that everything written through it is escaped.
// It adapts EscapeWrite to pipelines that expect a plain io.Writer: the
// returned counts are input bytes consumed, per the io.Writer contract, not
// the post-substitution sizes EscapeWrite reports.
func NewEscapeWriter(w io.Writer) io.Writer {
	return escapeWriter{w: w}
}

type escapeWriter struct {
	w io.Writer
}

func (e escapeWriter) Write(p []byte) (int, error) {
	if _, err := EscapeWrite(e.w, p, Escaped); err != nil {
		return 0, err
	}
	return len(p), nil
}
