package stache

import (
	"context"
	"fmt"
	"net/http"
)

// HTTPInputRequest configures HTTPInput.
type HTTPInputRequest struct {
	URL       string
	Client    *http.Client
	ChunkSize int
	Options   []ReaderOption
}

// HTTPInput fetches a template over HTTP(S) and returns a streaming Input
// over the response body. The body is closed by Input.Close.
func HTTPInput(ctx context.Context, req HTTPInputRequest) (Input, error) {
	if req.URL == "" {
		return Input{}, fmt.Errorf("http input: URL is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	client := req.Client
	if client == nil {
		client = http.DefaultClient
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return Input{}, fmt.Errorf("http input: build request: %w", err)
	}
	if httpReq.URL.Scheme != "http" && httpReq.URL.Scheme != "https" {
		return Input{}, fmt.Errorf("http input: unsupported scheme %q", httpReq.URL.Scheme)
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return Input{}, fmt.Errorf("http input: request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return Input{}, fmt.Errorf("http input: status %s", resp.Status)
	}
	r, err := newReader(resp.Body, resp.Body, req.ChunkSize, req.Options)
	if err != nil {
		_ = resp.Body.Close()
		return Input{}, err
	}
	return Input{reader: r}, nil
}
