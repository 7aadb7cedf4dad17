package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/stache"
	"pkt.systems/version"
)

const (
	defaultChunkSize = 4096
	defaultWidth     = 80
)

func init() {
	version.SetDefaultModule("pkt.systems/stache")
}

func main() {
	var (
		rawMode     bool
		chunkSize   int
		usePool     bool
		inspectMode bool
		widthFlag   int
		outPath     string
		showVersion bool
	)

	flags := pflag.NewFlagSet("stache", pflag.ExitOnError)
	flags.BoolVarP(&rawMode, "raw", "r", false, "Pass input through without escaping")
	flags.IntVarP(&chunkSize, "chunk", "c", defaultChunkSize, "Read chunk size in bytes")
	flags.BoolVar(&usePool, "pool", false, "Recycle read buffers through a pool")
	flags.BoolVar(&inspectMode, "inspect", false, "Trace chunked reads instead of writing output")
	flags.IntVarP(&widthFlag, "width", "w", 0, "Inspect line width (0 uses terminal width if available)")
	flags.StringVarP(&outPath, "output", "o", "", "Output file instead of stdout")
	flags.BoolVarP(&showVersion, "version", "V", false, "Print version and exit")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, version.Module(), version.Current())
		fmt.Fprintf(os.Stderr, "Usage: stache [flags] [inputs...]\n")
		fmt.Fprintln(os.Stderr, "\nHTML-escapes template text to the output, streaming chunk by chunk.")
		fmt.Fprintln(os.Stderr, "Inputs may be file paths or http(s):// URLs; stdin is read when none are given.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if showVersion {
		fmt.Fprintln(os.Stdout, version.Module(), version.Current())
		return
	}

	if chunkSize <= 0 {
		fmt.Fprintf(os.Stderr, "invalid --chunk %d: must be > 0\n", chunkSize)
		os.Exit(2)
	}

	var opts []stache.ReaderOption
	if usePool {
		opts = append(opts, stache.WithAllocator(stache.NewPoolAllocator()))
	}

	input, err := openInput(flags.Args(), chunkSize, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = input.Close() }()

	writer, closeOut, err := resolveOutput(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open output: %v\n", err)
		os.Exit(1)
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}

	if inspectMode {
		reader, ok := input.Stream()
		if !ok {
			fmt.Fprintln(os.Stderr, "inspect: input is not streaming")
			os.Exit(2)
		}
		if err := inspect(writer, reader, resolveWidth(widthFlag)); err != nil {
			fmt.Fprintf(os.Stderr, "inspect: %v\n", err)
			os.Exit(1)
		}
		return
	}

	mode := stache.Escaped
	if rawMode {
		mode = stache.Unescaped
	}
	if _, err := stache.Escape(stache.EscapeRequest{
		Input:  input,
		Writer: writer,
		Mode:   mode,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "escape: %v\n", err)
		os.Exit(1)
	}
}

func openInput(args []string, chunkSize int, opts []stache.ReaderOption) (stache.Input, error) {
	if len(args) == 1 {
		if u, err := url.Parse(args[0]); err == nil {
			switch strings.ToLower(u.Scheme) {
			case "http", "https":
				return stache.HTTPInput(context.Background(), stache.HTTPInputRequest{
					URL:       args[0],
					ChunkSize: chunkSize,
					Options:   opts,
				})
			}
		}
	}
	reader, err := openInputs(args)
	if err != nil {
		return stache.Input{}, err
	}
	return stache.StreamInput(reader, chunkSize, opts...)
}

type inputSource struct {
	open func() (io.Reader, io.Closer, error)
}

type multiInputReader struct {
	sources   []inputSource
	idx       int
	cur       io.Reader
	curCloser io.Closer
	closed    bool
}

func (m *multiInputReader) Read(p []byte) (int, error) {
	for {
		if m.closed {
			return 0, io.EOF
		}
		if m.cur == nil {
			if m.idx >= len(m.sources) {
				m.closed = true
				return 0, io.EOF
			}
			reader, closer, err := m.sources[m.idx].open()
			if err != nil {
				return 0, err
			}
			m.cur = reader
			m.curCloser = closer
			m.idx++
		}
		n, err := m.cur.Read(p)
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			if m.curCloser != nil {
				_ = m.curCloser.Close()
			}
			m.cur = nil
			m.curCloser = nil
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}

func openInputs(args []string) (io.Reader, error) {
	if len(args) == 0 {
		return os.Stdin, nil
	}
	sources := make([]inputSource, 0, len(args))
	for _, raw := range args {
		src, err := makeInputSource(raw)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return &multiInputReader{sources: sources}, nil
}

func makeInputSource(raw string) (inputSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return inputSource{}, fmt.Errorf("empty input argument")
	}
	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				return openURL(raw)
			}}, nil
		case "file":
			path := u.Path
			if path == "" {
				path = u.Host
			}
			if unescaped, err := url.PathUnescape(path); err == nil {
				path = unescaped
			}
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				return openFile(path)
			}}, nil
		}
	}
	return inputSource{open: func() (io.Reader, io.Closer, error) {
		return openFile(raw)
	}}, nil
}

func openURL(raw string) (io.Reader, io.Closer, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, raw, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("http %s: %s", raw, resp.Status)
	}
	return resp.Body, resp.Body, nil
}

func openFile(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(normalizePath(path))
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func resolveOutput(path string) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return os.Stdout, nil, nil
	}
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}

func resolveWidth(width int) int {
	if width > 0 {
		return width
	}
	return terminalWidth(defaultWidth)
}

func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}
