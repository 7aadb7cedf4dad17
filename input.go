package stache

import (
	"fmt"
	"io"
)

// Input selects where template bytes come from. The choice between a fully
// resident text and a chunked streaming source is made once at construction;
// a resident Input never instantiates a Reader. The zero value is an empty
// resident input.
type Input struct {
	text   []byte
	reader *Reader
}

// TextInput returns an Input over bytes that are already fully in memory.
// The bytes are handed to the consumer directly, with no chunking and no
// reference counting.
func TextInput(b []byte) Input {
	return Input{text: b}
}

// StreamInput returns an Input that reads src in chunks of chunkSize bytes.
func StreamInput(src io.Reader, chunkSize int, opts ...ReaderOption) (Input, error) {
	r, err := NewReader(src, chunkSize, opts...)
	if err != nil {
		return Input{}, err
	}
	return Input{reader: r}, nil
}

// FileInput returns a streaming Input over the file at path. The file is
// closed by Input.Close.
func FileInput(path string, chunkSize int, opts ...ReaderOption) (Input, error) {
	r, err := Open(path, chunkSize, opts...)
	if err != nil {
		return Input{}, err
	}
	return Input{reader: r}, nil
}

// Resident returns the input bytes and true when the input is fully in
// memory.
func (in Input) Resident() ([]byte, bool) {
	if in.reader != nil {
		return nil, false
	}
	return in.text, true
}

// Stream returns the input's Reader and true when the input is streaming.
func (in Input) Stream() (*Reader, bool) {
	if in.reader == nil {
		return nil, false
	}
	return in.reader, true
}

// Close releases a streaming input's reader and source. Closing a resident
// input is a no-op.
func (in Input) Close() error {
	if in.reader == nil {
		return nil
	}
	return in.reader.Close()
}

// EscapeRequest configures Escape.
type EscapeRequest struct {
	Input  Input
	Writer io.Writer
	Mode   EscapeMode
}

// Escape pumps an Input through EscapeWrite to a sink and returns the total
// number of bytes written. Resident inputs are written in one pass;
// streaming inputs are read chunk by chunk, each buffer released as soon as
// its bytes are out. The caller keeps ownership of the Input and closes it.
func Escape(req EscapeRequest) (int64, error) {
	if req.Writer == nil {
		return 0, fmt.Errorf("escape: Writer is nil")
	}
	if text, ok := req.Input.Resident(); ok {
		n, err := EscapeWrite(req.Writer, text, req.Mode)
		if err != nil {
			return int64(n), fmt.Errorf("escape: write: %w", err)
		}
		return int64(n), nil
	}
	r, _ := req.Input.Stream()
	var total int64
	for {
		buf, err := r.Read(nil)
		if err != nil {
			return total, fmt.Errorf("escape: %w", err)
		}
		n, werr := EscapeWrite(req.Writer, buf.Bytes(), req.Mode)
		total += int64(n)
		done := r.Finished()
		buf.Release()
		if werr != nil {
			return total, fmt.Errorf("escape: write: %w", werr)
		}
		if done {
			return total, nil
		}
	}
}
